package state

import (
	"fmt"
	"time"
)

// #region metrics

const (
	MinMetric = 0
	MaxMetric = 100
)

// Metrics holds the three composite daily scores, each in [0, 100].
type Metrics struct {
	Load        int `json:"load" yaml:"load"`               // physiological/cognitive strain
	Readiness   int `json:"readiness" yaml:"readiness"`     // recovery capacity
	Consistency int `json:"consistency" yaml:"consistency"` // behavioral regularity
}

// ClampMetric restricts v to [MinMetric, MaxMetric].
func ClampMetric(v int) int {
	if v < MinMetric {
		return MinMetric
	}
	if v > MaxMetric {
		return MaxMetric
	}
	return v
}

// ClampMetrics restricts every field of m to [MinMetric, MaxMetric].
func ClampMetrics(m Metrics) Metrics {
	return Metrics{
		Load:        ClampMetric(m.Load),
		Readiness:   ClampMetric(m.Readiness),
		Consistency: ClampMetric(m.Consistency),
	}
}

// InRange reports whether every field is already within bounds.
func (m Metrics) InRange() bool {
	return m == ClampMetrics(m)
}

func (m Metrics) String() string {
	return fmt.Sprintf("load=%d readiness=%d consistency=%d", m.Load, m.Readiness, m.Consistency)
}

// #endregion metrics

// #region scenario

// Scenario is a fixed archetype of simulated daily signal pattern.
type Scenario string

const (
	ScenarioHighStress Scenario = "high_stress_day"
	ScenarioBalanced   Scenario = "balanced_day"
	ScenarioRecovery   Scenario = "recovery_week"
)

// Drift is a signed per-day metric change.
type Drift struct {
	Load        int `json:"load" yaml:"load"`
	Readiness   int `json:"readiness" yaml:"readiness"`
	Consistency int `json:"consistency" yaml:"consistency"`
}

// SignalCounts are the contextual signal counters observed for a scenario.
type SignalCounts struct {
	Stress   int `json:"stress" yaml:"stress"`
	Recovery int `json:"recovery" yaml:"recovery"`
	Caffeine int `json:"caffeine" yaml:"caffeine"`
}

// ScenarioDefinition is one immutable row of the scenario table.
type ScenarioDefinition struct {
	ID            Scenario     `json:"id" yaml:"id"`
	Title         string       `json:"title" yaml:"title"`
	Baseline      Metrics      `json:"baseline" yaml:"baseline"`
	DefaultDay    int          `json:"default_day" yaml:"default_day"`
	DefaultPreset string       `json:"default_preset" yaml:"default_preset"`
	DriftPerDay   Drift        `json:"drift_per_day" yaml:"drift_per_day"`
	Confidence    float64      `json:"confidence" yaml:"confidence"`
	Signals       SignalCounts `json:"signals" yaml:"signals"`
}

// #endregion scenario

// #region metrics-record

// MetricsRecord is a versioned snapshot of the metrics after an applied delta.
type MetricsRecord struct {
	VersionID string
	ParentID  string
	Scenario  Scenario
	Metrics   Metrics
	Reason    string // event that produced this version, e.g. "session_outcome"
	CreatedAt time.Time
}

// VersionWithProvenance pairs a metrics version with the recommendation logged against it.
type VersionWithProvenance struct {
	MetricsRecord
	Decision    string
	RuleID      string
	ContextJSON string
}

// #endregion metrics-record
