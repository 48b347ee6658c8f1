package gate

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/signals"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// #region gate
// Gate evaluates whether a replayed step should be committed or rejected.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then scores soft signals.
// Takes the metrics and profile before the step and the proposed ones after it.
func (g *Gate) Evaluate(
	before, after state.Metrics,
	prev, proposed signals.Profile,
) GateDecision {
	var vetoes []VetoSignal

	// --- Hard veto pass ---

	// 1. Any single metric moved further than a plausible step
	shift := maxShift(before, after)
	if shift > g.config.MaxDimensionShift {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoMetricShift,
			Reason: fmt.Sprintf("metric shift %d exceeds cap %d", shift, g.config.MaxDimensionShift),
		})
	}

	// 2. Profile quality collapsed
	drop := prev.Quality.Score - proposed.Quality.Score
	if drop > g.config.MaxQualityDrop {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoQualityDrop,
			Reason: fmt.Sprintf("quality drop %.3f exceeds cap %.3f", drop, g.config.MaxQualityDrop),
		})
	}

	// If any hard vetoes, reject immediately
	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
			SoftScore:   0,
		}
	}

	// --- Soft scoring ---
	softScore := g.softScore(shift, proposed.Quality.Score)

	return GateDecision{
		Action:      "commit",
		Reason:      fmt.Sprintf("passed gate: soft_score=%.4f", softScore),
		Vetoed:      false,
		VetoSignals: nil,
		SoftScore:   softScore,
	}
}

// #endregion gate

// #region helpers
// maxShift is the largest absolute per-dimension change.
func maxShift(before, after state.Metrics) int {
	return max(
		abs(after.Load-before.Load),
		abs(after.Readiness-before.Readiness),
		abs(after.Consistency-before.Consistency),
	)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// softScore produces a 0-1 composite from step stability and resulting profile quality.
// Logged but never blocks.
func (g *Gate) softScore(shift int, quality float64) float64 {
	var score float64

	// Stability component: smaller steps are more stable
	if g.config.MaxDimensionShift > 0 {
		score += g.config.ShiftWeight * (1 - float64(shift)/float64(g.config.MaxDimensionShift))
	} else if shift == 0 {
		score += g.config.ShiftWeight
	}

	// Quality component
	score += g.config.QualityWeight * quality

	return min(1, max(0, score))
}

// #endregion helpers
