package recommend

import "github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"

// #region preset-ids

// Built-in preset identifiers.
const (
	PresetCalmNow        = "calm_now"
	PresetFocusPrep      = "focus_prep"
	PresetSleepDownshift = "sleep_downshift"
)

// #endregion preset-ids

// #region context

// Context is the per-request input to the engine.
type Context struct {
	Scenario        state.Scenario `json:"scenario"`
	Metrics         state.Metrics  `json:"metrics"`
	Baseline        state.Metrics  `json:"baseline"`
	Confidence      float64        `json:"confidence"` // 0-1
	StressSignals   int            `json:"stress_signals"`
	RecoverySignals int            `json:"recovery_signals"`
	CaffeineSignals int            `json:"caffeine_signals"`
}

// NewContext fills baseline, confidence and signal counters from the scenario table.
func NewContext(scenario state.Scenario, m state.Metrics) Context {
	def := state.Definition(scenario)
	return Context{
		Scenario:        scenario,
		Metrics:         m,
		Baseline:        def.Baseline,
		Confidence:      def.Confidence,
		StressSignals:   def.Signals.Stress,
		RecoverySignals: def.Signals.Recovery,
		CaffeineSignals: def.Signals.Caffeine,
	}
}

// normalized clamps metrics, confidence and counters into their domains.
func (c Context) normalized() Context {
	c.Metrics = state.ClampMetrics(c.Metrics)
	c.Baseline = state.ClampMetrics(c.Baseline)
	switch {
	case c.Confidence != c.Confidence || c.Confidence < 0:
		c.Confidence = 0
	case c.Confidence > 1:
		c.Confidence = 1
	}
	c.StressSignals = max(c.StressSignals, 0)
	c.RecoverySignals = max(c.RecoverySignals, 0)
	c.CaffeineSignals = max(c.CaffeineSignals, 0)
	return c
}

// #endregion context

// #region preset

// Preset is one guided protocol in the catalog.
type Preset struct {
	ID              string  `json:"id" yaml:"id"`
	Title           string  `json:"title" yaml:"title"`
	Summary         string  `json:"summary" yaml:"summary"`
	Target          string  `json:"target" yaml:"target"` // metric the preset mainly moves
	LoadBias        float64 `json:"load_bias" yaml:"load_bias"`
	ReadinessBias   float64 `json:"readiness_bias" yaml:"readiness_bias"`
	ConsistencyBias float64 `json:"consistency_bias" yaml:"consistency_bias"`
	DurationMinutes int     `json:"duration_minutes" yaml:"duration_minutes"`
}

// #endregion preset

// #region recommendation

// Recommendation is the single next action shown to the user.
type Recommendation struct {
	PresetID           string  `json:"preset_id"`
	Title              string  `json:"title"`
	RuleID             string  `json:"rule_id"`
	Rationale          string  `json:"rationale"`
	Confidence         float64 `json:"confidence"`
	ProjectedLoadDelta float64 `json:"projected_load_delta"`
	Fallback           bool    `json:"fallback"` // the scenario default was used
}

// DriverImpact is a named contributing factor behind the metrics.
type DriverImpact struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Detail string  `json:"detail"`
	Impact float64 `json:"impact"`
}

// Driver ids adjusted by the signal counters in RankDrivers.
const (
	DriverStress   = "stress"
	DriverRecovery = "recovery"
	DriverCaffeine = "caffeine"
	DriverRoutine  = "routine"
)

// #endregion recommendation

// #region config

// Config holds the rule thresholds and projection constants.
type Config struct {
	HighLoad              int     // load at or above this asks for down-regulation
	LowReadiness          int     // readiness below this asks for down-regulation
	FocusReadiness        int     // minimum readiness for a focus window
	FocusConsistency      int     // minimum consistency for a focus window
	FocusHeadroom         int     // minimum readiness - load for a focus window
	StressAttenuation     float64 // per unit of stress/(1+recovery) pressure
	CaffeineLoadPerSignal float64 // projected load added per caffeine signal
	DriverSignalWeight    float64 // impact added per matching signal count
}

// DefaultConfig returns the shipped thresholds.
func DefaultConfig() Config {
	return Config{
		HighLoad:              80,
		LowReadiness:          40,
		FocusReadiness:        70,
		FocusConsistency:      65,
		FocusHeadroom:         20,
		StressAttenuation:     0.2,
		CaffeineLoadPerSignal: 0.5,
		DriverSignalWeight:    1.5,
	}
}

// #endregion config
