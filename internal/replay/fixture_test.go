package replay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// #region fixture-tests

// runFixture loads a fixture, replays it, and reports every divergence from the expected
// action and preset. These are the regression baselines for threshold and drift changes.
func runFixture(t *testing.T, name string) []StepResult {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results := Replay(f.ToStart(), f.ToSteps(), f.Config.ToReplayConfig())
	if len(results) != len(f.Steps) {
		t.Fatalf("expected %d results, got %d", len(f.Steps), len(results))
	}
	for _, d := range Compare(f, results) {
		t.Errorf("step %s: expected %s=%s, got %s", d.StepID, d.Field, d.Expected, d.Actual)
	}
	return results
}

func TestFixture_HighStressWeek(t *testing.T) {
	results := runFixture(t, "high_stress_week.json")

	last := results[len(results)-1]
	if last.After.Load != 100 {
		t.Errorf("expected load clamped to 100 after ten days of drift, got %d", last.After.Load)
	}
	if last.Day != 15 {
		t.Errorf("expected day 15, got %d", last.Day)
	}
}

func TestFixture_RecoveryWeek(t *testing.T) {
	results := runFixture(t, "recovery_week.json")

	if results[1].Recommendation.RuleID != "focus_window" {
		t.Errorf("r2: expected focus_window, got %s", results[1].Recommendation.RuleID)
	}
	if results[5].Recommendation.RuleID != "elevated_load" {
		t.Errorf("r6: expected elevated_load, got %s", results[5].Recommendation.RuleID)
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestLoadFixture_Invalid(t *testing.T) {
	cases := map[string]string{
		"scenario":  `{"scenario":"lazy_sunday","clock":"2026-03-09T07:30:00Z"}`,
		"clock":     `{"scenario":"balanced_day"}`,
		"kind":      `{"scenario":"balanced_day","clock":"2026-03-09T07:30:00Z","steps":[{"id":"a","kind":"nap"}]}`,
		"direction": `{"scenario":"balanced_day","clock":"2026-03-09T07:30:00Z","steps":[{"id":"a","kind":"session_outcome","direction":"up"}]}`,
		"focus":     `{"scenario":"balanced_day","clock":"2026-03-09T07:30:00Z","steps":[{"id":"a","kind":"check_in"}]}`,
		"duplicate": `{"scenario":"balanced_day","clock":"2026-03-09T07:30:00Z","steps":[{"id":"a","kind":"refresh"},{"id":"a","kind":"refresh"}]}`,
		"no id":     `{"scenario":"balanced_day","clock":"2026-03-09T07:30:00Z","steps":[{"kind":"refresh"}]}`,
	}
	dir := t.TempDir()
	for name, body := range cases {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
		_, err := LoadFixture(path)
		if err == nil {
			t.Errorf("%s: expected validation error", name)
			continue
		}
		if name == "scenario" && !errors.Is(err, state.ErrUnknownScenario) {
			t.Errorf("expected ErrUnknownScenario, got %v", err)
		}
	}
}

func TestFixtureConfig_Overrides(t *testing.T) {
	fc := FixtureConfig{HighLoad: 70, QualityBaseline: 0.9}
	config := fc.ToReplayConfig()
	if config.RecommendConfig.HighLoad != 70 {
		t.Errorf("expected high load override, got %d", config.RecommendConfig.HighLoad)
	}
	if config.RecommendConfig.FocusReadiness != DefaultReplayConfig().RecommendConfig.FocusReadiness {
		t.Error("unset override should keep default")
	}
	if config.EvalConfig.QualityBaseline != 0.9 {
		t.Errorf("expected quality baseline override, got %v", config.EvalConfig.QualityBaseline)
	}
}

// #endregion fixture-tests
