package delta

import (
	"math"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// #region engine
// Engine maps user events to metric deltas. It holds only its config and is safe for concurrent use.
type Engine struct {
	config Config
}

// NewEngine creates an Engine with the given configuration.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

var defaultEngine = NewEngine(DefaultConfig())

// #endregion engine

// #region session-outcome

// SessionOutcome scales load and readiness linearly with intensity (clamped to the configured
// range). Better lowers load and raises readiness, worse does the inverse, neutral moves neither.
// Consistency always gains the adherence step.
func (e *Engine) SessionOutcome(direction Direction, intensity int) MetricDelta {
	i := clampInt(intensity, e.config.MinIntensity, e.config.MaxIntensity)
	magnitude := i * e.config.IntensityFactor

	d := MetricDelta{Consistency: e.config.ConsistencyStep}
	switch direction {
	case Better:
		d.Load = -magnitude
		d.Readiness = magnitude
	case Worse:
		d.Load = magnitude
		d.Readiness = -magnitude
	}
	return d
}

// #endregion session-outcome

// #region check-in

// ExperimentCheckIn returns the fixed per-check-in delta. The focused dimension moves most;
// every dimension moves in its improving direction (load down, the others up).
func (e *Engine) ExperimentCheckIn(focus Focus) MetricDelta {
	step := func(f Focus) int {
		if f == focus {
			return e.config.CheckInFocusStep
		}
		return e.config.CheckInOtherStep
	}
	return MetricDelta{
		Load:        -step(FocusLoad),
		Readiness:   step(FocusReadiness),
		Consistency: step(FocusConsistency),
	}
}

// #endregion check-in

// #region completed-experiment

// CompletedExperiment maps an unbounded perceived change onto the focused dimension.
// The value is rounded and saturated to ±CompletedRange; a positive perception lowers load
// and raises readiness or consistency. NaN counts as no change.
func (e *Engine) CompletedExperiment(focus Focus, perceivedChange float64) MetricDelta {
	v := 0
	if !math.IsNaN(perceivedChange) {
		r := float64(e.config.CompletedRange)
		v = int(math.Round(math.Max(-r, math.Min(r, perceivedChange))))
	}

	switch focus {
	case FocusLoad:
		return MetricDelta{Load: -v}
	case FocusReadiness:
		return MetricDelta{Readiness: v}
	case FocusConsistency:
		return MetricDelta{Consistency: v}
	default:
		return MetricDelta{}
	}
}

// #endregion completed-experiment

// #region fast-forward

const maxFastForwardDays = state.MaxMetric - state.MinMetric

// FastForwardedDays accumulates the scenario's per-day drift over days (negative counts as 0).
// Unknown scenarios drift like the balanced day. Days saturate at maxFastForwardDays, past which
// any nonzero drift already spans the whole metric range.
func (e *Engine) FastForwardedDays(days int, scenario state.Scenario) MetricDelta {
	days = clampInt(days, 0, maxFastForwardDays)
	drift := state.Definition(scenario).DriftPerDay
	return MetricDelta{
		Load:        drift.Load * days,
		Readiness:   drift.Readiness * days,
		Consistency: drift.Consistency * days,
	}
}

// #endregion fast-forward

// #region package-funcs

// SessionOutcome uses the default engine.
func SessionOutcome(direction Direction, intensity int) MetricDelta {
	return defaultEngine.SessionOutcome(direction, intensity)
}

// ExperimentCheckIn uses the default engine.
func ExperimentCheckIn(focus Focus) MetricDelta {
	return defaultEngine.ExperimentCheckIn(focus)
}

// CompletedExperiment uses the default engine.
func CompletedExperiment(focus Focus, perceivedChange float64) MetricDelta {
	return defaultEngine.CompletedExperiment(focus, perceivedChange)
}

// FastForwardedDays uses the default engine.
func FastForwardedDays(days int, scenario state.Scenario) MetricDelta {
	return defaultEngine.FastForwardedDays(days, scenario)
}

// #endregion package-funcs

// #region helpers
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
