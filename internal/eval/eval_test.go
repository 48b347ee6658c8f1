package eval

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/signals"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
)

var morning = time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)

func seeded() signals.Profile {
	return signals.Seed(state.ScenarioHighStress, 3, morning)
}

func findCheck(t *testing.T, r Result, name string) Check {
	t.Helper()
	for _, c := range r.Checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %s not found", name)
	return Check{}
}

func TestEvalPassesOnSeededProfile(t *testing.T) {
	h := NewHarness(DefaultConfig())
	for _, def := range state.Scenarios() {
		p := signals.Seed(def.ID, def.DefaultDay, morning)
		result := h.Run(def.Baseline, p)
		if !result.Passed {
			t.Fatalf("%s: expected pass, got fail: %s", def.ID, result.Reason)
		}
	}
}

func TestEvalFailsOnMetricOutOfRange(t *testing.T) {
	h := NewHarness(DefaultConfig())
	result := h.Run(state.Metrics{Load: 104, Readiness: 50, Consistency: -1}, seeded())

	if result.Passed {
		t.Fatal("expected fail on out-of-range metrics")
	}
	if findCheck(t, result, "metric_load").Pass || findCheck(t, result, "metric_consistency").Pass {
		t.Error("expected load and consistency checks to fail")
	}
	if !findCheck(t, result, "metric_readiness").Pass {
		t.Error("readiness 50 should pass")
	}
	if !strings.Contains(result.Reason, "2 checks") {
		t.Errorf("expected reason to count failures, got %q", result.Reason)
	}
	if len(result.Failed()) != 2 {
		t.Errorf("expected 2 failed checks, got %d", len(result.Failed()))
	}
}

func TestEvalFailsOnEpisodeOverlap(t *testing.T) {
	p := seeded()
	p.Episodes[1].StartAt = p.Episodes[0].StartAt.Add(time.Minute)

	result := NewHarness(DefaultConfig()).Run(state.Metrics{}, p)
	if result.Passed {
		t.Fatal("expected fail on overlapping episodes")
	}
	if findCheck(t, result, "episode_overlap").Pass {
		t.Fatal("expected episode_overlap to fail")
	}
}

func TestEvalCoverageFollowsCalendarDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	h := NewHarness(DefaultConfig())
	for _, now := range []time.Time{
		time.Date(2026, 3, 8, 12, 0, 0, 0, ny),
		time.Date(2026, 11, 1, 12, 0, 0, 0, ny),
	} {
		p := signals.Seed(state.ScenarioBalanced, 5, now)
		result := h.Run(state.Definition(state.ScenarioBalanced).Baseline, p)
		if !result.Passed {
			t.Fatalf("%s: expected pass on a DST day, got %s", now.Format("2006-01-02"), result.Reason)
		}
	}

	// A 24h timeline laid from local midnight overruns a 23h day.
	p := signals.Seed(state.ScenarioBalanced, 5, time.Date(2026, 3, 8, 12, 0, 0, 0, ny))
	last := len(p.Timeline) - 1
	p.Timeline[last].EndAt = p.Timeline[last].EndAt.Add(time.Hour)
	if findCheck(t, h.Run(state.Definition(state.ScenarioBalanced).Baseline, p), "timeline_coverage").Pass {
		t.Error("expected timeline_coverage to fail when the timeline spills past midnight")
	}
}

func TestEvalFailsOnTimelineGap(t *testing.T) {
	p := seeded()
	p.Timeline[1].StartAt = p.Timeline[1].StartAt.Add(10 * time.Minute)

	result := NewHarness(DefaultConfig()).Run(state.Metrics{}, p)
	if findCheck(t, result, "timeline_gaps").Pass {
		t.Error("expected timeline_gaps to fail")
	}
	if findCheck(t, result, "timeline_coverage").Pass {
		t.Error("expected timeline_coverage to fail with 10 minutes missing")
	}
}

func TestEvalClearedProfilePasses(t *testing.T) {
	p := signals.ClearDerived(seeded(), morning)
	result := NewHarness(DefaultConfig()).Run(state.Metrics{Load: 50}, p)
	if !result.Passed {
		t.Fatalf("an empty timeline is allowed: %s", result.Reason)
	}
}

func TestEvalFailsOnEmptyHint(t *testing.T) {
	p := seeded()
	p.Quality.ActionHint = "  "
	result := NewHarness(DefaultConfig()).Run(state.Metrics{}, p)
	if result.Passed || findCheck(t, result, "action_hint").Pass {
		t.Fatal("expected fail on empty action hint")
	}
}

func TestEvalQualityBaselineInformationalOnly(t *testing.T) {
	config := DefaultConfig()
	config.QualityBaseline = 0.99
	p := seeded()
	p.Quality.Score = 0.4

	result := NewHarness(config).Run(state.Metrics{}, p)
	if !result.Passed {
		t.Fatalf("quality baseline should be informational, not blocking: %s", result.Reason)
	}
	c := findCheck(t, result, "quality_baseline")
	if c.Pass || !c.Informational {
		t.Fatalf("expected informational failing check, got %+v", c)
	}
}

func TestEvalCheckCount(t *testing.T) {
	result := NewHarness(DefaultConfig()).Run(state.Metrics{}, seeded())

	// 3 metrics + overlap + shape + gaps + coverage + range + hint + baseline
	if len(result.Checks) != 10 {
		t.Fatalf("expected 10 checks, got %d", len(result.Checks))
	}
}
