package eval

import (
	"fmt"
	"strings"
	"time"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/signals"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

// #region eval-harness
// Harness validates metrics and the derived profile after every applied step.
type Harness struct {
	config Config
}

// NewHarness creates a harness with the given configuration.
func NewHarness(config Config) *Harness {
	return &Harness{config: config}
}

// Run checks metric ranges and the profile's ordering, coverage and quality invariants.
func (h *Harness) Run(m state.Metrics, p signals.Profile) Result {
	var checks []Check
	var failReasons []string
	add := func(c Check, reason string) {
		checks = append(checks, c)
		if !c.Pass && !c.Informational {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. Metric bounds
	for _, mv := range []struct {
		name  string
		value int
	}{
		{"load", m.Load},
		{"readiness", m.Readiness},
		{"consistency", m.Consistency},
	} {
		ok := mv.value >= h.config.MinMetric && mv.value <= h.config.MaxMetric
		add(Check{Name: "metric_" + mv.name, Value: float64(mv.value), Pass: ok},
			fmt.Sprintf("%s %d outside [%d, %d]", mv.name, mv.value, h.config.MinMetric, h.config.MaxMetric))
	}

	// 2. Episodes ordered, non-overlapping, peaks in range
	overlaps := 0
	for i := 1; i < len(p.Episodes); i++ {
		if p.Episodes[i].StartAt.Before(p.Episodes[i-1].EndAt()) {
			overlaps++
		}
	}
	add(Check{Name: "episode_overlap", Value: float64(overlaps), Pass: overlaps == 0},
		fmt.Sprintf("%d overlapping episodes", overlaps))

	badPeaks := 0
	for _, e := range p.Episodes {
		if e.PeakIntensity < 0 || e.PeakIntensity > 1 || e.DurationMinutes <= 0 {
			badPeaks++
		}
	}
	add(Check{Name: "episode_shape", Value: float64(badPeaks), Pass: badPeaks == 0},
		fmt.Sprintf("%d episodes with bad peak or duration", badPeaks))

	// 3. Timeline contiguous and covering the day
	gaps := 0
	var covered time.Duration
	for i, s := range p.Timeline {
		if !s.EndAt.After(s.StartAt) || (i > 0 && !s.StartAt.Equal(p.Timeline[i-1].EndAt)) {
			gaps++
		}
		covered += s.EndAt.Sub(s.StartAt)
	}
	add(Check{Name: "timeline_gaps", Value: float64(gaps), Pass: gaps == 0},
		fmt.Sprintf("%d timeline gaps", gaps))

	// The calendar day is 23 or 25 hours on DST transitions.
	minutes, dayMinutes := int(covered/time.Minute), 0
	coverageOK := true
	if len(p.Timeline) > 0 {
		start, end := signals.DayBounds(p.Timeline[0].StartAt)
		dayMinutes = int(end.Sub(start) / time.Minute)
		coverageOK = p.Timeline[0].StartAt.Equal(start) &&
			p.Timeline[len(p.Timeline)-1].EndAt.Equal(end) &&
			minutes == dayMinutes
	}
	add(Check{Name: "timeline_coverage", Value: float64(minutes), Pass: coverageOK},
		fmt.Sprintf("timeline covers %d of %d minutes", minutes, dayMinutes))

	// 4. Quality score and hint
	score := p.Quality.Score
	add(Check{Name: "quality_range", Value: score, Pass: score >= 0 && score <= 1},
		fmt.Sprintf("quality score %.3f outside [0, 1]", score))

	hintOK := strings.TrimSpace(p.Quality.ActionHint) != ""
	add(Check{Name: "action_hint", Value: boolValue(hintOK), Pass: hintOK}, "empty action hint")

	// 5. Quality baseline: informational only
	add(Check{Name: "quality_baseline", Value: score, Pass: score >= h.config.QualityBaseline, Informational: true}, "")

	reason := "all checks passed"
	if len(failReasons) > 0 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return Result{
		Passed: len(failReasons) == 0,
		Checks: checks,
		Reason: reason,
	}
}

// #endregion eval-harness

// #region helpers
func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
