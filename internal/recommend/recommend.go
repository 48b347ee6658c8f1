package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// Rule ids, in default evaluation order.
const (
	RuleElevatedLoad    = "elevated_load"
	RuleFocusWindow     = "focus_window"
	RuleScenarioDefault = "scenario_default"
)

// #region rules

// Rule is one entry in the ordered decision list. An empty PresetID means the caller's fallback.
type Rule struct {
	ID        string
	Priority  int // lower runs first
	PresetID  string
	Match     func(Context) bool
	Rationale func(Context) string
}

func defaultRules(c Config) []Rule {
	return []Rule{
		{
			ID:       RuleElevatedLoad,
			Priority: 10,
			PresetID: PresetCalmNow,
			Match: func(ctx Context) bool {
				return ctx.Metrics.Load >= c.HighLoad || ctx.Metrics.Readiness < c.LowReadiness
			},
			Rationale: func(ctx Context) string {
				return fmt.Sprintf("Load is %d against readiness %d. Bring physiological load down before anything demanding.",
					ctx.Metrics.Load, ctx.Metrics.Readiness)
			},
		},
		{
			ID:       RuleFocusWindow,
			Priority: 20,
			PresetID: PresetFocusPrep,
			Match: func(ctx Context) bool {
				m := ctx.Metrics
				return m.Readiness >= c.FocusReadiness &&
					m.Consistency >= c.FocusConsistency &&
					m.Readiness-m.Load >= c.FocusHeadroom
			},
			Rationale: func(ctx Context) string {
				m := ctx.Metrics
				return fmt.Sprintf("Readiness %d sits %d points above load with consistency at %d. This is a good window for focused work.",
					m.Readiness, m.Readiness-m.Load, m.Consistency)
			},
		},
		{
			ID:       RuleScenarioDefault,
			Priority: 1000,
			Match:    func(Context) bool { return true },
			Rationale: func(ctx Context) string {
				return fmt.Sprintf("No strong signal right now. Sticking with the %s default.", state.Definition(ctx.Scenario).Title)
			},
		},
	}
}

// #endregion rules

// #region engine

// Engine evaluates an ordered rule list. It is immutable and safe for concurrent use.
type Engine struct {
	config Config
	rules  []Rule
}

// NewEngine creates an Engine with the default rule list built from config.
func NewEngine(config Config) *Engine {
	return &Engine{config: config, rules: defaultRules(config)}
}

var defaultEngine = NewEngine(DefaultConfig())

// Rules returns the evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// WithRule returns a copy of e with r inserted by priority. Equal priorities keep insertion order.
func (e *Engine) WithRule(r Rule) *Engine {
	rules := append(e.Rules(), r)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Priority < rules[j].Priority })
	return &Engine{config: e.config, rules: rules}
}

// PrimaryRecommendation uses the default engine.
func PrimaryRecommendation(ctx Context, presets []Preset, fallback string) Recommendation {
	return defaultEngine.PrimaryRecommendation(ctx, presets, fallback)
}

// ProjectedLoadDeltaInTwoHours uses the default engine.
func ProjectedLoadDeltaInTwoHours(preset Preset, ctx Context) float64 {
	return defaultEngine.ProjectedLoadDeltaInTwoHours(preset, ctx)
}

// RankDrivers uses the default engine.
func RankDrivers(base []DriverImpact, ctx Context) []DriverImpact {
	return defaultEngine.RankDrivers(base, ctx)
}

// #endregion engine

// #region primary

// PrimaryRecommendation picks the first matching rule on the clamped context. A rule whose
// preset is absent from presets resolves to fallback, then to the first preset.
func (e *Engine) PrimaryRecommendation(ctx Context, presets []Preset, fallback string) Recommendation {
	c := ctx.normalized()
	for _, r := range e.rules {
		if r.Match == nil || !r.Match(c) {
			continue
		}
		return e.resolve(r, c, presets, fallback)
	}
	// Only reachable with a custom rule list that has no catch-all.
	return e.resolve(Rule{ID: RuleScenarioDefault}, c, presets, fallback)
}

func (e *Engine) resolve(r Rule, c Context, presets []Preset, fallback string) Recommendation {
	id := r.PresetID
	usedFallback := id == ""
	if usedFallback {
		id = fallback
	}

	p, ok := findPreset(presets, id)
	if !ok {
		p, ok = findPreset(presets, fallback)
		usedFallback = true
	}
	if !ok && len(presets) > 0 {
		p, ok = presets[0], true
	}

	rec := Recommendation{
		PresetID:   fallback,
		RuleID:     r.ID,
		Confidence: c.Confidence,
		Fallback:   usedFallback,
	}
	if r.Rationale != nil {
		rec.Rationale = r.Rationale(c)
	}
	if ok {
		rec.PresetID = p.ID
		rec.Title = p.Title
		rec.ProjectedLoadDelta = e.ProjectedLoadDeltaInTwoHours(p, c)
	}
	return rec
}

// #endregion primary

// #region projection

// ProjectedLoadDeltaInTwoHours estimates the load change from running preset now. Stress pressure
// (stress / (1 + recovery)) weakens load-reducing presets and amplifies load-raising ones, and
// each caffeine signal adds a fixed amount. Rounded to one decimal.
func (e *Engine) ProjectedLoadDeltaInTwoHours(preset Preset, ctx Context) float64 {
	c := ctx.normalized()
	pressure := float64(c.StressSignals) / float64(1+c.RecoverySignals)
	amp := 1 + e.config.StressAttenuation*pressure

	bias := preset.LoadBias
	if math.IsNaN(bias) || math.IsInf(bias, 0) {
		bias = 0
	}
	v := bias * amp
	if bias < 0 {
		v = bias / amp
	}
	v += e.config.CaffeineLoadPerSignal * float64(c.CaffeineSignals)
	return math.Round(v*10) / 10
}

// #endregion projection

// #region drivers

// RankDrivers returns a reordered copy of base, with stress, recovery and caffeine drivers
// boosted by their signal counters and sorted by impact descending. Ties keep input order.
func (e *Engine) RankDrivers(base []DriverImpact, ctx Context) []DriverImpact {
	c := ctx.normalized()
	out := make([]DriverImpact, len(base))
	copy(out, base)
	for i := range out {
		out[i].Impact = e.adjustedImpact(out[i], c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Impact > out[j].Impact })
	return out
}

func (e *Engine) adjustedImpact(d DriverImpact, c Context) float64 {
	impact := d.Impact
	if math.IsNaN(impact) {
		impact = 0
	}
	w := e.config.DriverSignalWeight
	switch d.ID {
	case DriverStress:
		impact += w * float64(c.StressSignals)
	case DriverRecovery:
		impact += w * float64(c.RecoverySignals)
	case DriverCaffeine:
		impact += w * float64(c.CaffeineSignals)
	}
	return impact
}

// DefaultDrivers derives the base driver list for ctx before ranking.
func DefaultDrivers(ctx Context) []DriverImpact {
	c := ctx.normalized()
	m, b := c.Metrics, c.Baseline
	return []DriverImpact{
		{
			ID:     DriverStress,
			Name:   "Stress load",
			Detail: fmt.Sprintf("Load %d vs baseline %d, %d stress signals today.", m.Load, b.Load, c.StressSignals),
			Impact: float64(m.Load) / 10,
		},
		{
			ID:     DriverRecovery,
			Name:   "Recovery",
			Detail: fmt.Sprintf("Readiness %d vs baseline %d, %d recovery signals today.", m.Readiness, b.Readiness, c.RecoverySignals),
			Impact: float64(state.MaxMetric-m.Readiness) / 10,
		},
		{
			ID:     DriverCaffeine,
			Name:   "Caffeine",
			Detail: fmt.Sprintf("%d caffeine signals today.", c.CaffeineSignals),
			Impact: 1,
		},
		{
			ID:     DriverRoutine,
			Name:   "Routine consistency",
			Detail: fmt.Sprintf("Consistency %d vs baseline %d.", m.Consistency, b.Consistency),
			Impact: float64(state.MaxMetric-m.Consistency) / 20,
		},
	}
}

// #endregion drivers
