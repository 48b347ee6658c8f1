package recommend

import (
	"math"
	"sort"
	"testing"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func highStressContext() Context {
	return NewContext(state.ScenarioHighStress, state.Metrics{Load: 84, Readiness: 54, Consistency: 62})
}

func balancedContext() Context {
	return NewContext(state.ScenarioBalanced, state.Metrics{Load: 46, Readiness: 79, Consistency: 74})
}

// #region primary-tests

func TestPrimaryRecommendation_HighStressPicksCalmNow(t *testing.T) {
	rec := PrimaryRecommendation(highStressContext(), Presets(), PresetFocusPrep)
	if rec.PresetID != PresetCalmNow {
		t.Fatalf("expected %s, got %s (rule %s)", PresetCalmNow, rec.PresetID, rec.RuleID)
	}
	if rec.RuleID != RuleElevatedLoad {
		t.Errorf("expected rule %s, got %s", RuleElevatedLoad, rec.RuleID)
	}
	if rec.Title != "Calm Now" {
		t.Errorf("expected title from catalog, got %q", rec.Title)
	}
	if rec.Rationale == "" {
		t.Error("expected non-empty rationale")
	}
	if rec.Fallback {
		t.Error("a matched rule should not be marked as fallback")
	}
}

func TestPrimaryRecommendation_BalancedPicksFocusPrep(t *testing.T) {
	rec := PrimaryRecommendation(balancedContext(), Presets(), PresetCalmNow)
	if rec.PresetID != PresetFocusPrep {
		t.Fatalf("expected %s, got %s (rule %s)", PresetFocusPrep, rec.PresetID, rec.RuleID)
	}
	if rec.RuleID != RuleFocusWindow {
		t.Errorf("expected rule %s, got %s", RuleFocusWindow, rec.RuleID)
	}
}

func TestPrimaryRecommendation_LowReadinessIsElevated(t *testing.T) {
	ctx := NewContext(state.ScenarioRecovery, state.Metrics{Load: 30, Readiness: 39, Consistency: 80})
	rec := PrimaryRecommendation(ctx, Presets(), PresetSleepDownshift)
	if rec.PresetID != PresetCalmNow {
		t.Errorf("readiness below 40 should pick calm_now, got %s", rec.PresetID)
	}
}

func TestPrimaryRecommendation_FallsBackToScenarioDefault(t *testing.T) {
	ctx := NewContext(state.ScenarioRecovery, state.Metrics{Load: 38, Readiness: 64, Consistency: 78})
	rec := PrimaryRecommendation(ctx, Presets(), PresetSleepDownshift)
	if rec.PresetID != PresetSleepDownshift {
		t.Fatalf("expected fallback %s, got %s", PresetSleepDownshift, rec.PresetID)
	}
	if rec.RuleID != RuleScenarioDefault || !rec.Fallback {
		t.Errorf("expected scenario default fallback, got rule=%s fallback=%v", rec.RuleID, rec.Fallback)
	}
}

func TestPrimaryRecommendation_FocusNeedsHeadroom(t *testing.T) {
	// Readiness and consistency clear their thresholds but load leaves only 10 points of headroom.
	ctx := NewContext(state.ScenarioBalanced, state.Metrics{Load: 65, Readiness: 75, Consistency: 70})
	rec := PrimaryRecommendation(ctx, Presets(), PresetSleepDownshift)
	if rec.PresetID != PresetSleepDownshift {
		t.Errorf("expected fallback without headroom, got %s via %s", rec.PresetID, rec.RuleID)
	}
}

func TestPrimaryRecommendation_Idempotent(t *testing.T) {
	for _, ctx := range []Context{highStressContext(), balancedContext()} {
		first := PrimaryRecommendation(ctx, Presets(), PresetSleepDownshift)
		for i := 0; i < 5; i++ {
			if diff := cmp.Diff(first, PrimaryRecommendation(ctx, Presets(), PresetSleepDownshift)); diff != "" {
				t.Fatalf("recommendation changed between calls (-first +again):\n%s", diff)
			}
		}
	}
}

func TestPrimaryRecommendation_ClampsContext(t *testing.T) {
	ctx := Context{
		Scenario:      state.ScenarioHighStress,
		Metrics:       state.Metrics{Load: 250, Readiness: -10, Consistency: 500},
		Confidence:    4,
		StressSignals: -3,
	}
	rec := PrimaryRecommendation(ctx, Presets(), PresetFocusPrep)
	if rec.PresetID != PresetCalmNow {
		t.Errorf("expected calm_now for clamped extreme load, got %s", rec.PresetID)
	}
	if rec.Confidence != 1 {
		t.Errorf("expected confidence clamped to 1, got %v", rec.Confidence)
	}
}

func TestPrimaryRecommendation_MissingPresetUsesFallback(t *testing.T) {
	presets := []Preset{mustPreset(t, PresetSleepDownshift), mustPreset(t, PresetFocusPrep)}
	rec := PrimaryRecommendation(highStressContext(), presets, PresetFocusPrep)
	if rec.PresetID != PresetFocusPrep {
		t.Errorf("calm_now is absent; expected fallback focus_prep, got %s", rec.PresetID)
	}
	if !rec.Fallback {
		t.Error("expected Fallback flag when the rule preset is missing")
	}
}

func TestPrimaryRecommendation_MissingFallbackUsesFirstPreset(t *testing.T) {
	presets := []Preset{mustPreset(t, PresetSleepDownshift)}
	rec := PrimaryRecommendation(highStressContext(), presets, "does_not_exist")
	if rec.PresetID != PresetSleepDownshift {
		t.Errorf("expected first preset, got %s", rec.PresetID)
	}
}

func TestPrimaryRecommendation_EmptyCatalog(t *testing.T) {
	rec := PrimaryRecommendation(highStressContext(), nil, PresetCalmNow)
	if rec.PresetID != PresetCalmNow {
		t.Errorf("expected fallback id echoed with no catalog, got %q", rec.PresetID)
	}
	if rec.Title != "" || rec.ProjectedLoadDelta != 0 {
		t.Errorf("expected no title or projection without a preset, got %+v", rec)
	}
}

func TestPrimaryRecommendation_CarriesProjection(t *testing.T) {
	ctx := highStressContext()
	rec := PrimaryRecommendation(ctx, Presets(), PresetFocusPrep)
	want := ProjectedLoadDeltaInTwoHours(mustPreset(t, PresetCalmNow), ctx)
	if rec.ProjectedLoadDelta != want {
		t.Errorf("projection %v, want %v", rec.ProjectedLoadDelta, want)
	}
}

// #endregion primary-tests

// #region rule-order-tests

func TestRules_DefaultOrder(t *testing.T) {
	var ids []string
	for _, r := range NewEngine(DefaultConfig()).Rules() {
		ids = append(ids, r.ID)
	}
	want := []string{RuleElevatedLoad, RuleFocusWindow, RuleScenarioDefault}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("rule order (-want +got):\n%s", diff)
	}
}

func TestWithRule_InsertsByPriority(t *testing.T) {
	base := NewEngine(DefaultConfig())
	sleepy := Rule{
		ID:       "late_evening",
		Priority: 15,
		PresetID: PresetSleepDownshift,
		Match:    func(c Context) bool { return c.Metrics.Consistency >= 70 },
	}
	e := base.WithRule(sleepy)

	rules := e.Rules()
	if rules[1].ID != "late_evening" {
		t.Fatalf("expected inserted rule at index 1, got %s", rules[1].ID)
	}

	// Elevated load still wins ahead of the new rule.
	if got := e.PrimaryRecommendation(highStressContext(), Presets(), PresetFocusPrep); got.PresetID != PresetCalmNow {
		t.Errorf("expected calm_now, got %s", got.PresetID)
	}
	// The new rule now preempts focus_window.
	if got := e.PrimaryRecommendation(balancedContext(), Presets(), PresetCalmNow); got.RuleID != "late_evening" {
		t.Errorf("expected late_evening to win, got %s", got.RuleID)
	}
	// The receiver is unchanged.
	if len(base.Rules()) != 3 {
		t.Errorf("WithRule must not mutate the receiver")
	}
}

func TestWithRule_EqualPriorityKeepsInsertionOrder(t *testing.T) {
	e := NewEngine(DefaultConfig()).WithRule(Rule{ID: "same", Priority: 10, Match: func(Context) bool { return false }})
	rules := e.Rules()
	if rules[0].ID != RuleElevatedLoad || rules[1].ID != "same" {
		t.Errorf("expected existing rule first on equal priority, got %s, %s", rules[0].ID, rules[1].ID)
	}
}

// #endregion rule-order-tests

// #region projection-tests

func TestProjectedLoadDelta_MonotonicInStress(t *testing.T) {
	for _, p := range append(Presets(), Preset{ID: "raise", LoadBias: 4, DurationMinutes: 1}) {
		ctx := highStressContext()
		ctx.CaffeineSignals = 0
		prev := math.Inf(-1)
		for stress := 0; stress <= 20; stress++ {
			ctx.StressSignals = stress
			got := ProjectedLoadDeltaInTwoHours(p, ctx)
			if got < prev {
				t.Fatalf("%s: projection decreased at stress=%d: %v < %v", p.ID, stress, got, prev)
			}
			prev = got
		}
	}
}

func TestProjectedLoadDelta_CalmingHelpsLessUnderStress(t *testing.T) {
	calm := mustPreset(t, PresetCalmNow)
	quiet := Context{Scenario: state.ScenarioBalanced, RecoverySignals: 1}
	busy := quiet
	busy.StressSignals = 10

	q := ProjectedLoadDeltaInTwoHours(calm, quiet)
	b := ProjectedLoadDeltaInTwoHours(calm, busy)
	if q != calm.LoadBias {
		t.Errorf("no stress should project the raw bias %v, got %v", calm.LoadBias, q)
	}
	if !(b < 0 && b > q) {
		t.Errorf("busy projection %v should be a smaller reduction than quiet %v", b, q)
	}
}

func TestProjectedLoadDelta_RecoveryOffsetsStress(t *testing.T) {
	calm := mustPreset(t, PresetCalmNow)
	ctx := Context{StressSignals: 6}
	low := ProjectedLoadDeltaInTwoHours(calm, ctx)
	ctx.RecoverySignals = 5
	high := ProjectedLoadDeltaInTwoHours(calm, ctx)
	if high >= low {
		t.Errorf("more recovery should restore the calming benefit: %v vs %v", high, low)
	}
}

func TestProjectedLoadDelta_CaffeineAddsLoad(t *testing.T) {
	calm := mustPreset(t, PresetCalmNow)
	ctx := Context{}
	base := ProjectedLoadDeltaInTwoHours(calm, ctx)
	ctx.CaffeineSignals = 2
	if got := ProjectedLoadDeltaInTwoHours(calm, ctx); got != base+1 {
		t.Errorf("two caffeine signals should add 1.0, got %v from %v", got, base)
	}
}

func TestProjectedLoadDelta_RoundedToOneDecimal(t *testing.T) {
	got := ProjectedLoadDeltaInTwoHours(Preset{LoadBias: -8}, Context{StressSignals: 1, RecoverySignals: 2})
	if got != math.Round(got*10)/10 {
		t.Errorf("expected one-decimal rounding, got %v", got)
	}
}

func TestProjectedLoadDelta_NonFiniteBias(t *testing.T) {
	if got := ProjectedLoadDeltaInTwoHours(Preset{LoadBias: math.NaN()}, Context{}); got != 0 {
		t.Errorf("NaN bias should project 0, got %v", got)
	}
}

// #endregion projection-tests

// #region rank-tests

func sampleDrivers() []DriverImpact {
	return []DriverImpact{
		{ID: "sleep", Name: "Sleep debt", Impact: 3},
		{ID: DriverStress, Name: "Stress load", Impact: 2},
		{ID: "hydration", Name: "Hydration", Impact: 3},
		{ID: DriverCaffeine, Name: "Caffeine", Impact: 1},
		{ID: DriverRecovery, Name: "Recovery", Impact: 0.5},
	}
}

func TestRankDrivers_SortedAndSameMembership(t *testing.T) {
	ctx := highStressContext()
	base := sampleDrivers()
	perms := [][]int{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}, {2, 0, 4, 1, 3}, {1, 3, 0, 4, 2}}
	for _, perm := range perms {
		in := make([]DriverImpact, len(base))
		for i, j := range perm {
			in[i] = base[j]
		}
		got := RankDrivers(in, ctx)

		if len(got) != len(in) {
			t.Fatalf("cardinality changed: %d -> %d", len(in), len(got))
		}
		if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Impact > got[j].Impact }) {
			t.Errorf("perm %v: not sorted by descending impact: %+v", perm, got)
		}
		ids := func(ds []DriverImpact) []string {
			out := make([]string, len(ds))
			for i, d := range ds {
				out[i] = d.ID
			}
			return out
		}
		if diff := cmp.Diff(ids(in), ids(got), cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
			t.Errorf("perm %v: membership changed (-in +out):\n%s", perm, diff)
		}
	}
}

func TestRankDrivers_StableTies(t *testing.T) {
	got := RankDrivers(sampleDrivers(), Context{})
	// sleep and hydration tie at 3 with no signals; input order wins.
	if got[0].ID != "sleep" || got[1].ID != "hydration" {
		t.Errorf("expected stable tie order sleep, hydration; got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestRankDrivers_SignalsReweight(t *testing.T) {
	got := RankDrivers(sampleDrivers(), Context{StressSignals: 6})
	if got[0].ID != DriverStress {
		t.Errorf("six stress signals should push stress to the top, got %s", got[0].ID)
	}
}

func TestRankDrivers_DoesNotMutateInput(t *testing.T) {
	in := sampleDrivers()
	snapshot := sampleDrivers()
	_ = RankDrivers(in, highStressContext())
	if diff := cmp.Diff(snapshot, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestRankDrivers_Empty(t *testing.T) {
	if got := RankDrivers(nil, Context{}); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestDefaultDrivers_RankedForHighStress(t *testing.T) {
	ctx := highStressContext()
	got := RankDrivers(DefaultDrivers(ctx), ctx)
	if len(got) != 4 {
		t.Fatalf("expected 4 default drivers, got %d", len(got))
	}
	if got[0].ID != DriverStress {
		t.Errorf("expected stress driver first on a high-stress day, got %s", got[0].ID)
	}
}

// #endregion rank-tests

// #region catalog-tests

func TestPresets_CatalogShape(t *testing.T) {
	ids := map[string]bool{}
	for _, p := range Presets() {
		ids[p.ID] = true
		if p.Title == "" || p.DurationMinutes <= 0 {
			t.Errorf("incomplete preset %+v", p)
		}
	}
	for _, id := range []string{PresetCalmNow, PresetFocusPrep, PresetSleepDownshift} {
		if !ids[id] {
			t.Errorf("catalog missing %s", id)
		}
	}
	for _, def := range state.Scenarios() {
		if !ids[def.DefaultPreset] {
			t.Errorf("scenario %s default preset %s not in catalog", def.ID, def.DefaultPreset)
		}
	}
}

func TestPresets_ReturnsCopy(t *testing.T) {
	p := Presets()
	p[0].ID = "mutated"
	if Presets()[0].ID == "mutated" {
		t.Error("Presets must return a copy")
	}
}

func TestParsePresets_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":     "presets: []",
		"no id":     "presets:\n  - title: x\n    duration_minutes: 1",
		"duplicate": "presets:\n  - id: a\n    duration_minutes: 1\n  - id: a\n    duration_minutes: 1",
		"duration":  "presets:\n  - id: a",
		"yaml":      "presets: [",
	}
	for name, data := range cases {
		if _, err := parsePresets([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

// #endregion catalog-tests

func mustPreset(t *testing.T, id string) Preset {
	t.Helper()
	p, ok := LookupPreset(id)
	if !ok {
		t.Fatalf("preset %s not in catalog", id)
	}
	return p
}
