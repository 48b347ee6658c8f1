package logging

import "time"

// #region provenance-entry
// ProvenanceEntry is a single row in the provenance_log table.
type ProvenanceEntry struct {
	VersionID   string
	TriggerType string // step kind that produced the version, e.g. "session_outcome"
	ContextJSON string
	Decision    string // "commit" | "gate_reject" | "eval_reject" | "rollback"
	RuleID      string
	Reason      string
	CreatedAt   time.Time
}
// #endregion provenance-entry

// #region decision-record
// DecisionRecord captures the complete recommendation inputs for a single step.
// Serialized as JSON into provenance_log.context_json for deterministic replay.
type DecisionRecord struct {
	Scenario string `json:"scenario"`
	Day      int    `json:"day"`

	// Metrics before and after the applied delta
	Before DecisionMetrics `json:"before"`
	After  DecisionMetrics `json:"after"`
	Delta  string          `json:"delta"`

	// Signal counters that fed the recommendation
	StressSignals   int     `json:"stress_signals"`
	RecoverySignals int     `json:"recovery_signals"`
	CaffeineSignals int     `json:"caffeine_signals"`
	Confidence      float64 `json:"confidence"`

	QualityScore float64 `json:"quality_score"`

	// Recommendation output
	PresetID           string  `json:"preset_id"`
	RuleID             string  `json:"rule_id"`
	ProjectedLoadDelta float64 `json:"projected_load_delta"`
	Fallback           bool    `json:"fallback,omitempty"`

	// Gate output
	GateVetoed    bool    `json:"gate_vetoed,omitempty"`
	GateSoftScore float64 `json:"gate_soft_score"`

	// Eval output
	EvalPassed bool   `json:"eval_passed"`
	EvalReason string `json:"eval_reason,omitempty"`
}

// DecisionMetrics mirrors state.Metrics without importing it.
type DecisionMetrics struct {
	Load        int `json:"load"`
	Readiness   int `json:"readiness"`
	Consistency int `json:"consistency"`
}
// #endregion decision-record
