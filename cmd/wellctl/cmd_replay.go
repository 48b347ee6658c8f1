package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/delta"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/replay"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixturePath string
	recordRun   bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a fixture and compare actions and presets against expectations",
	Long: `Replays every step of a JSON fixture through delta, profile refresh, eval and
recommendation, then prints expected vs replayed. Exits 1 on any divergence.`,
	Args: cobra.NoArgs,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&fixturePath, "fixture", "", "Path to fixture JSON (required)")
	replayCmd.Flags().BoolVar(&recordRun, "record", false, "Persist versions and provenance to --db")
	replayCmd.MarkFlagRequired("fixture")
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	start := f.ToStart()
	results := replay.Replay(start, f.ToSteps(), f.Config.ToReplayConfig())
	divergences := replay.Compare(f, results)

	if recordRun {
		store, err := state.NewStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		final, err := replay.Record(store, start, results)
		if err != nil {
			return err
		}
		logger.Info("replay recorded", zap.String("version_id", final.VersionID), zap.Int("steps", len(results)))
	}

	out := cmd.OutOrStdout()
	printComparison(out, f, results)
	printSummary(out, replay.Summarize(results, start), len(divergences))

	if len(divergences) > 0 {
		for _, d := range divergences {
			logger.Warn("divergence",
				zap.String("step", d.StepID),
				zap.String("field", d.Field),
				zap.String("expected", d.Expected),
				zap.String("actual", d.Actual))
		}
		return errDivergence
	}
	return nil
}

func printComparison(out io.Writer, f *replay.Fixture, results []replay.StepResult) {
	title := state.Definition(f.Scenario).Title
	fmt.Fprintf(out, "%-6s  %-20s  %-14s  %-11s  %-16s  %-16s  %s\n",
		"Step", "Kind", "Metrics", "Action", "Expected", "Preset", "Match")
	fmt.Fprintf(out, "%-6s+-%-20s+-%-14s+-%-11s+-%-16s+-%-16s+-%s\n",
		"------", strings.Repeat("-", 20), strings.Repeat("-", 14), strings.Repeat("-", 11),
		strings.Repeat("-", 16), strings.Repeat("-", 16), "-----")

	for i, r := range results {
		fs := f.Steps[i]
		expected := fs.ExpectPreset
		match := "yes"
		if expected == "" {
			expected = "-"
			match = "-"
		} else if expected != r.Recommendation.PresetID {
			match = "NO"
		}
		m := r.After
		fmt.Fprintf(out, "%-6s  %-20s  %3d/%3d/%3d    %-11s  %-16s  %-16s  %s\n",
			r.StepID, r.Kind, m.Load, m.Readiness, m.Consistency, r.Action, expected, r.Recommendation.PresetID, match)

		switch r.Action {
		case replay.ActionGateReject:
			fmt.Fprintf(out, "        %s\n", r.Reason)
		case replay.ActionEvalReject:
			names := make([]string, 0, len(r.EvalResult.Failed()))
			for _, c := range r.EvalResult.Failed() {
				names = append(names, c.Name)
			}
			fmt.Fprintf(out, "        failed checks: %s\n", strings.Join(names, ", "))
		}
		if r.Kind == replay.KindCompletedExperiment {
			focus := delta.Focus(fs.Focus)
			fmt.Fprintf(out, "        %s\n", delta.ExperimentCompletionSummary(title, focus.Title(), fs.Adherence, fs.Change))
		}
	}
}

func printSummary(out io.Writer, s replay.Summary, divergences int) {
	fmt.Fprintf(out, "\nSteps: %d  Commits: %d  Gate rejects: %d  Eval rejects: %d  Divergences: %d\n",
		s.TotalSteps, s.Commits, s.GateRejects, s.EvalRejects, divergences)
	fmt.Fprintf(out, "Final: day %d  %s\n", s.FinalDay, s.FinalMetrics)
}
