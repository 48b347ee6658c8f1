package delta

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// #region trend

// Trend terms used in experiment summaries.
const (
	TrendImprovement = "improvement"
	TrendDecline     = "decline"
	TrendNoChange    = "no clear change"
)

// TrendTerm picks the trend wording from the sign of perceivedChange.
func TrendTerm(perceivedChange float64) string {
	switch {
	case math.IsNaN(perceivedChange) || perceivedChange == 0:
		return TrendNoChange
	case perceivedChange > 0:
		return TrendImprovement
	default:
		return TrendDecline
	}
}

// #endregion trend

// #region summary

var printer = message.NewPrinter(language.English)

// ExperimentCompletionSummary renders the one-line wrap-up shown when an experiment ends.
// Adherence is clamped to [0, 100] and always appears as "<n>% adherence".
func ExperimentCompletionSummary(scenarioTitle, focusTitle string, adherence int, perceivedChange float64) string {
	a := clampInt(adherence, 0, 100)
	focus := strings.ToLower(strings.TrimSpace(focusTitle))
	if focus == "" {
		focus = "current"
	}

	var outcome string
	switch trend := TrendTerm(perceivedChange); trend {
	case TrendNoChange:
		outcome = "no clear change"
	default:
		outcome = "a reported " + trend
	}

	if strings.TrimSpace(scenarioTitle) == "" {
		return printer.Sprintf("Your %s experiment finished at %d%% adherence with %s.", focus, a, outcome)
	}
	return printer.Sprintf("%s: your %s experiment finished at %d%% adherence with %s.", scenarioTitle, focus, a, outcome)
}

// #endregion summary
