package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/delta"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description  string         `json:"description"`
	Scenario     state.Scenario `json:"scenario"`
	Day          *int           `json:"day,omitempty"` // nil means the scenario default
	Clock        time.Time      `json:"clock"`
	StartMetrics *state.Metrics `json:"start_metrics,omitempty"` // nil means the scenario baseline
	Config       FixtureConfig  `json:"config"`
	Steps        []FixtureStep  `json:"steps"`
}

// FixtureStep mirrors replay.Step with JSON tags and the expected outcome.
type FixtureStep struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Direction string  `json:"direction,omitempty"`
	Intensity int     `json:"intensity,omitempty"`
	Focus     string  `json:"focus,omitempty"`
	Change    float64 `json:"change,omitempty"`
	Adherence int     `json:"adherence,omitempty"`
	Days      int     `json:"days,omitempty"`

	ExpectAction string `json:"expect_action,omitempty"` // default "commit"
	ExpectPreset string `json:"expect_preset,omitempty"` // empty skips the check
}

// FixtureConfig overrides selected thresholds. Zero values keep the defaults.
type FixtureConfig struct {
	HighLoad        int     `json:"high_load,omitempty"`
	FocusReadiness  int     `json:"focus_readiness,omitempty"`
	QualityBaseline float64 `json:"quality_baseline,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads, parses and validates a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return &f, nil
}

// Validate checks the scenario, clock and step kinds.
func (f *Fixture) Validate() error {
	if !f.Scenario.Valid() {
		return fmt.Errorf("%w: %q", state.ErrUnknownScenario, f.Scenario)
	}
	if f.Clock.IsZero() {
		return fmt.Errorf("clock is required")
	}
	seen := make(map[string]bool, len(f.Steps))
	for i, s := range f.Steps {
		if s.ID == "" {
			return fmt.Errorf("step %d: missing id", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("step %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
		switch StepKind(s.Kind) {
		case KindSessionOutcome:
			switch delta.Direction(s.Direction) {
			case delta.Better, delta.Worse, delta.Neutral:
			default:
				return fmt.Errorf("step %s: unknown direction %q", s.ID, s.Direction)
			}
		case KindCheckIn, KindCompletedExperiment:
			switch delta.Focus(s.Focus) {
			case delta.FocusLoad, delta.FocusReadiness, delta.FocusConsistency:
			default:
				return fmt.Errorf("step %s: unknown focus %q", s.ID, s.Focus)
			}
		case KindFastForward, KindClearDerived, KindRefresh:
		default:
			return fmt.Errorf("step %s: unknown kind %q", s.ID, s.Kind)
		}
	}
	return nil
}

// ToStart resolves the start position, filling scenario defaults.
func (f *Fixture) ToStart() Start {
	def := state.Definition(f.Scenario)
	start := Start{
		Scenario: f.Scenario,
		Day:      def.DefaultDay,
		Metrics:  def.Baseline,
		Clock:    f.Clock,
	}
	if f.Day != nil {
		start.Day = *f.Day
	}
	if f.StartMetrics != nil {
		start.Metrics = *f.StartMetrics
	}
	return start
}

// ToStep converts a FixtureStep to a domain Step.
func (fs *FixtureStep) ToStep() Step {
	return Step{
		ID:        fs.ID,
		Kind:      StepKind(fs.Kind),
		Direction: delta.Direction(fs.Direction),
		Intensity: fs.Intensity,
		Focus:     delta.Focus(fs.Focus),
		Change:    fs.Change,
		Adherence: fs.Adherence,
		Days:      fs.Days,
	}
}

// ToSteps converts every fixture step.
func (f *Fixture) ToSteps() []Step {
	steps := make([]Step, len(f.Steps))
	for i := range f.Steps {
		steps[i] = f.Steps[i].ToStep()
	}
	return steps
}

// ToReplayConfig applies the fixture overrides to the defaults.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	config := DefaultReplayConfig()
	if fc.HighLoad > 0 {
		config.RecommendConfig.HighLoad = fc.HighLoad
	}
	if fc.FocusReadiness > 0 {
		config.RecommendConfig.FocusReadiness = fc.FocusReadiness
	}
	if fc.QualityBaseline > 0 {
		config.EvalConfig.QualityBaseline = fc.QualityBaseline
	}
	return config
}

// #endregion fixture-loader

// #region divergence

// Divergence is one step whose replayed outcome differs from the fixture's expectation.
type Divergence struct {
	StepID   string
	Field    string // "action" | "preset"
	Expected string
	Actual   string
}

// Compare checks results against the fixture's expected actions and presets.
func Compare(f *Fixture, results []StepResult) []Divergence {
	var out []Divergence
	for i, fs := range f.Steps {
		if i >= len(results) {
			out = append(out, Divergence{StepID: fs.ID, Field: "action", Expected: fs.expectedAction(), Actual: "missing"})
			continue
		}
		r := results[i]
		if want := fs.expectedAction(); r.Action != want {
			out = append(out, Divergence{StepID: fs.ID, Field: "action", Expected: want, Actual: r.Action})
		}
		if fs.ExpectPreset != "" && r.Recommendation.PresetID != fs.ExpectPreset {
			out = append(out, Divergence{StepID: fs.ID, Field: "preset", Expected: fs.ExpectPreset, Actual: r.Recommendation.PresetID})
		}
	}
	return out
}

func (fs *FixtureStep) expectedAction() string {
	if fs.ExpectAction == "" {
		return ActionCommit
	}
	return fs.ExpectAction
}

// #endregion divergence
