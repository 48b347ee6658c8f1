package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoMetricShift VetoType = "metric_shift"
	VetoQualityDrop VetoType = "quality_drop"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds thresholds for gate decisions.
type GateConfig struct {
	MaxDimensionShift int     // max absolute change of any metric in one step
	MaxQualityDrop    float64 // max fall of the profile quality score in one step
	ShiftWeight       float64 // soft: weight of step stability
	QualityWeight     float64 // soft: weight of resulting profile quality
}

// DefaultGateConfig returns the shipped thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxDimensionShift: 35,
		MaxQualityDrop:    0.75,
		ShiftWeight:       0.5,
		QualityWeight:     0.5,
	}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "commit" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
	SoftScore   float64      // 0-1 composite of soft signals (for logging)
}

// #endregion gate-decision
