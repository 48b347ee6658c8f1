package replay

import (
	"time"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/delta"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/eval"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/gate"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/recommend"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/signals"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// #region types

// StepKind names one recorded user action.
type StepKind string

const (
	KindSessionOutcome      StepKind = "session_outcome"
	KindCheckIn             StepKind = "check_in"
	KindCompletedExperiment StepKind = "completed_experiment"
	KindFastForward         StepKind = "fast_forward"
	KindClearDerived        StepKind = "clear_derived"
	KindRefresh             StepKind = "refresh"
)

// Actions recorded per step.
const (
	ActionCommit     = "commit"
	ActionGateReject = "gate_reject"
	ActionEvalReject = "eval_reject"
)

// Step is a single recorded action for replay.
type Step struct {
	ID        string
	Kind      StepKind
	Direction delta.Direction // session_outcome
	Intensity int             // session_outcome
	Focus     delta.Focus     // check_in, completed_experiment
	Change    float64         // completed_experiment perceived change
	Adherence int             // check_in running adherence, 0-100
	Days      int             // fast_forward
}

// Start is the initial position of a replay run.
type Start struct {
	Scenario state.Scenario
	Day      int
	Metrics  state.Metrics
	Clock    time.Time
}

// ReplayConfig bundles the engine configs for a replay run.
type ReplayConfig struct {
	DeltaConfig     delta.Config
	QualityConfig   signals.QualityConfig
	RecommendConfig recommend.Config
	GateConfig      gate.GateConfig
	EvalConfig      eval.Config
	Presets         []recommend.Preset
}

// DefaultReplayConfig returns the shipped configs and preset catalog.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		DeltaConfig:     delta.DefaultConfig(),
		QualityConfig:   signals.DefaultQualityConfig(),
		RecommendConfig: recommend.DefaultConfig(),
		GateConfig:      gate.DefaultGateConfig(),
		EvalConfig:      eval.DefaultConfig(),
		Presets:         recommend.Presets(),
	}
}

// StepResult captures the outcome of replaying one step.
type StepResult struct {
	StepID string
	Kind   StepKind
	Action string // "commit" | "gate_reject" | "eval_reject"
	Reason string

	Day    int
	Clock  time.Time
	Delta  delta.MetricDelta
	Before state.Metrics
	After  state.Metrics // equals Before when rejected

	Profile        signals.Profile
	Recommendation recommend.Recommendation
	GateDecision   gate.GateDecision
	EvalResult     eval.Result // zero when the gate rejected
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps   int
	Commits      int
	GateRejects  int
	EvalRejects  int
	PresetCounts map[string]int
	FinalMetrics state.Metrics
	FinalDay     int
}

// #endregion types

// #region replay

// Replay applies each step in order: delta → clamp → profile refresh → gate → eval → recommend.
// A step rejected by the gate or eval leaves metrics and profile untouched. Operates entirely in-memory.
func Replay(start Start, steps []Step, config ReplayConfig) []StepResult {
	deltas := delta.NewEngine(config.DeltaConfig)
	profiles := signals.NewEngine(config.QualityConfig)
	recommender := recommend.NewEngine(config.RecommendConfig)
	g := gate.NewGate(config.GateConfig)
	harness := eval.NewHarness(config.EvalConfig)
	fallback := state.Definition(start.Scenario).DefaultPreset

	current := state.ClampMetrics(start.Metrics)
	day := max(start.Day, 0)
	clock := start.Clock
	profile := profiles.Seed(start.Scenario, day, clock)
	sessions := 0
	adherence := -1

	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		nextDay, nextClock := day, clock
		nextSessions, nextAdherence := sessions, adherence

		// 1. Delta
		var d delta.MetricDelta
		switch step.Kind {
		case KindSessionOutcome:
			d = deltas.SessionOutcome(step.Direction, step.Intensity)
			nextSessions++
		case KindCheckIn:
			d = deltas.ExperimentCheckIn(step.Focus)
			nextAdherence = min(max(step.Adherence, 0), 100)
		case KindCompletedExperiment:
			d = deltas.CompletedExperiment(step.Focus, step.Change)
			nextAdherence = -1
		case KindFastForward:
			days := max(step.Days, 0)
			d = deltas.FastForwardedDays(days, start.Scenario)
			nextDay += days
			nextClock = nextClock.AddDate(0, 0, days)
		}
		after := d.ApplyTo(current)

		// 2. Profile
		var candidate signals.Profile
		if step.Kind == KindClearDerived {
			candidate = profiles.ClearDerived(profile, nextClock)
		} else {
			candidate = profiles.Refresh(profile, signals.RefreshInput{
				Scenario:                  start.Scenario,
				Metrics:                   after,
				Day:                       nextDay,
				CompletedSessionCount:     nextSessions,
				ActiveExperimentAdherence: nextAdherence,
				Now:                       nextClock,
				UpdateSyncTimestamp:       step.Kind == KindRefresh || step.Kind == KindFastForward,
			})
		}

		res := StepResult{
			StepID: step.ID,
			Kind:   step.Kind,
			Delta:  d,
			Before: current,
		}

		// 3. Gate
		res.GateDecision = g.Evaluate(current, after, profile, candidate)

		// 4. Eval, only when the gate passed
		if !res.GateDecision.Vetoed {
			res.EvalResult = harness.Run(after, candidate)
		}

		switch {
		case res.GateDecision.Vetoed:
			res.Action = ActionGateReject
			res.Reason = res.GateDecision.Reason
			res.After = current
		case !res.EvalResult.Passed:
			res.Action = ActionEvalReject
			res.Reason = res.EvalResult.Reason
			res.After = current
		default:
			current, profile = after, candidate
			day, clock = nextDay, nextClock
			sessions, adherence = nextSessions, nextAdherence
			res.Action = ActionCommit
			res.After = after
		}

		// 5. Recommend on whatever is now current
		ctx := recommend.NewContext(start.Scenario, current)
		res.Recommendation = recommender.PrimaryRecommendation(ctx, config.Presets, fallback)
		if res.Action == ActionCommit {
			res.Reason = res.Recommendation.RuleID
		}
		res.Day, res.Clock, res.Profile = day, clock, profile
		results = append(results, res)
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []StepResult, start Start) Summary {
	s := Summary{
		TotalSteps:   len(results),
		PresetCounts: map[string]int{},
		FinalMetrics: state.ClampMetrics(start.Metrics),
		FinalDay:     max(start.Day, 0),
	}
	for _, r := range results {
		switch r.Action {
		case ActionCommit:
			s.Commits++
		case ActionGateReject:
			s.GateRejects++
		case ActionEvalReject:
			s.EvalRejects++
		}
		s.PresetCounts[r.Recommendation.PresetID]++
		s.FinalMetrics = r.After
		s.FinalDay = r.Day
	}
	return s
}

// #endregion replay
