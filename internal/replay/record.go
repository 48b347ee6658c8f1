package replay

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/logging"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/recommend"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// Record persists a replay run: a root version for start, one version per committed step,
// and a provenance row per step. Rejected steps are logged against the version they left active.
// Returns the final active version.
func Record(store *state.Store, start Start, results []StepResult) (state.MetricsRecord, error) {
	current, err := store.CreateInitial(start.Scenario, start.Metrics, start.Clock)
	if err != nil {
		return state.MetricsRecord{}, fmt.Errorf("record start: %w", err)
	}

	for _, r := range results {
		if r.Action == ActionCommit {
			next := state.NewRecord(current, r.After, string(r.Kind), r.Clock)
			if err := store.Commit(next); err != nil {
				return current, fmt.Errorf("record step %s: %w", r.StepID, err)
			}
			current = next
		}

		ctxJSON, err := logging.EncodeRecord(decisionRecord(start, r))
		if err != nil {
			return current, fmt.Errorf("record step %s: %w", r.StepID, err)
		}
		err = logging.LogDecision(store.DB(), logging.ProvenanceEntry{
			VersionID:   current.VersionID,
			TriggerType: string(r.Kind),
			ContextJSON: ctxJSON,
			Decision:    r.Action,
			RuleID:      r.Recommendation.RuleID,
			Reason:      r.Reason,
			CreatedAt:   r.Clock,
		})
		if err != nil {
			return current, fmt.Errorf("record step %s: %w", r.StepID, err)
		}
	}
	return current, nil
}

func decisionRecord(start Start, r StepResult) logging.DecisionRecord {
	ctx := recommend.NewContext(start.Scenario, r.After)
	return logging.DecisionRecord{
		Scenario:           string(start.Scenario),
		Day:                r.Day,
		Before:             decisionMetrics(r.Before),
		After:              decisionMetrics(r.After),
		Delta:              r.Delta.String(),
		StressSignals:      ctx.StressSignals,
		RecoverySignals:    ctx.RecoverySignals,
		CaffeineSignals:    ctx.CaffeineSignals,
		Confidence:         ctx.Confidence,
		QualityScore:       r.Profile.Quality.Score,
		PresetID:           r.Recommendation.PresetID,
		RuleID:             r.Recommendation.RuleID,
		ProjectedLoadDelta: r.Recommendation.ProjectedLoadDelta,
		Fallback:           r.Recommendation.Fallback,
		GateVetoed:         r.GateDecision.Vetoed,
		GateSoftScore:      r.GateDecision.SoftScore,
		EvalPassed:         r.EvalResult.Passed,
		EvalReason:         r.EvalResult.Reason,
	}
}

func decisionMetrics(m state.Metrics) logging.DecisionMetrics {
	return logging.DecisionMetrics{Load: m.Load, Readiness: m.Readiness, Consistency: m.Consistency}
}
