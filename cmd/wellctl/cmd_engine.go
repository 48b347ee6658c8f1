package main

import (
	"fmt"
	"io"
	"time"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/logging"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/present"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/recommend"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/signals"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	loadFlag, readinessFlag, consistencyFlag int
	clearFlag                                bool
)

// #region commands

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Seed the scenario, record it, and show profile plus recommendation",
	Args:  cobra.NoArgs,
	RunE:  runDemo,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Pick the next preset for the given metrics",
	Args:  cobra.NoArgs,
	RunE:  runRecommend,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Generate the synthetic signal profile for the scenario day",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the demo scenarios",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-16s  %-16s  %-20s  %3s  %s\n", "ID", "Title", "Baseline", "Day", "Default")
		for _, def := range state.Scenarios() {
			fmt.Fprintf(out, "%-16s  %-16s  %-20s  %3d  %s\n", def.ID, def.Title, def.Baseline, def.DefaultDay, def.DefaultPreset)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().IntVar(&loadFlag, "load", -1, "Load 0-100 (default scenario baseline)")
	recommendCmd.Flags().IntVar(&readinessFlag, "readiness", -1, "Readiness 0-100 (default scenario baseline)")
	recommendCmd.Flags().IntVar(&consistencyFlag, "consistency", -1, "Consistency 0-100 (default scenario baseline)")
	profileCmd.Flags().BoolVar(&clearFlag, "clear", false, "Show the profile after clearing derived data")
}

// #endregion commands

// #region run

func runDemo(cmd *cobra.Command, args []string) error {
	def := scenarioDefinition()
	now := time.Now()

	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.CreateInitial(def.ID, def.Baseline, now)
	if err != nil {
		return err
	}

	profile := signals.Seed(def.ID, cfg.EffectiveDay(), now)
	ctx := recommend.NewContext(def.ID, rec.Metrics)
	choice := recommend.PrimaryRecommendation(ctx, recommend.Presets(), def.DefaultPreset)
	drivers := recommend.RankDrivers(recommend.DefaultDrivers(ctx), ctx)

	ctxJSON, err := logging.EncodeRecord(logging.DecisionRecord{
		Scenario:           string(def.ID),
		Day:                profile.Day,
		After:              logging.DecisionMetrics{Load: rec.Metrics.Load, Readiness: rec.Metrics.Readiness, Consistency: rec.Metrics.Consistency},
		StressSignals:      ctx.StressSignals,
		RecoverySignals:    ctx.RecoverySignals,
		CaffeineSignals:    ctx.CaffeineSignals,
		Confidence:         ctx.Confidence,
		QualityScore:       profile.Quality.Score,
		PresetID:           choice.PresetID,
		RuleID:             choice.RuleID,
		ProjectedLoadDelta: choice.ProjectedLoadDelta,
		Fallback:           choice.Fallback,
		EvalPassed:         true,
	})
	if err != nil {
		return err
	}
	err = logging.LogDecision(store.DB(), logging.ProvenanceEntry{
		VersionID:   rec.VersionID,
		TriggerType: "demo",
		ContextJSON: ctxJSON,
		Decision:    "commit",
		RuleID:      choice.RuleID,
		Reason:      choice.Rationale,
		CreatedAt:   now,
	})
	if err != nil {
		return err
	}
	logger.Info("demo seeded",
		zap.String("scenario", string(def.ID)),
		zap.String("version_id", rec.VersionID),
		zap.String("preset", choice.PresetID),
		zap.String("rule", choice.RuleID))

	if jsonOut {
		p, err := present.Profile(profile)
		if err != nil {
			return err
		}
		return printProto(cmd.OutOrStdout(), &structpb.Struct{Fields: map[string]*structpb.Value{
			"version_id":     structpb.NewStringValue(rec.VersionID),
			"metrics":        structpb.NewStructValue(present.Metrics(rec.Metrics)),
			"profile":        structpb.NewStructValue(p),
			"recommendation": structpb.NewStructValue(present.Recommendation(choice, drivers)),
		}})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (day %d)\n", def.Title, profile.Day)
	fmt.Fprintf(out, "Version:  %s\n", rec.VersionID)
	fmt.Fprintf(out, "Metrics:  %s\n\n", rec.Metrics)
	printProfile(out, profile)
	fmt.Fprintln(out)
	printRecommendation(out, choice, drivers)
	return nil
}

func runRecommend(cmd *cobra.Command, args []string) error {
	def := scenarioDefinition()
	m := def.Baseline
	if loadFlag >= 0 {
		m.Load = loadFlag
	}
	if readinessFlag >= 0 {
		m.Readiness = readinessFlag
	}
	if consistencyFlag >= 0 {
		m.Consistency = consistencyFlag
	}

	ctx := recommend.NewContext(def.ID, m)
	choice := recommend.PrimaryRecommendation(ctx, recommend.Presets(), def.DefaultPreset)
	drivers := recommend.RankDrivers(recommend.DefaultDrivers(ctx), ctx)
	logger.Debug("recommendation",
		zap.String("scenario", string(def.ID)),
		zap.Stringer("metrics", state.ClampMetrics(m)),
		zap.String("preset", choice.PresetID),
		zap.String("rule", choice.RuleID))

	if jsonOut {
		return printProto(cmd.OutOrStdout(), present.Recommendation(choice, drivers))
	}
	printRecommendation(cmd.OutOrStdout(), choice, drivers)
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	def := scenarioDefinition()
	now := time.Now()
	profile := signals.Seed(def.ID, cfg.EffectiveDay(), now)
	if clearFlag {
		profile = signals.ClearDerived(profile, now)
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	if jsonOut {
		p, err := present.Profile(profile)
		if err != nil {
			return err
		}
		return printProto(cmd.OutOrStdout(), p)
	}
	printProfile(cmd.OutOrStdout(), profile)
	return nil
}

// #endregion run

// #region print

func printProfile(out io.Writer, p signals.Profile) {
	fmt.Fprintf(out, "Profile quality %.2f (%d/%d signals granted)\n", p.Quality.Score, p.GrantedCount(), len(signals.KnownSignalTypes()))
	fmt.Fprintf(out, "Hint: %s\n", p.Quality.ActionHint)
	if len(p.Episodes) > 0 {
		fmt.Fprintf(out, "\n%-22s  %-5s  %8s  %s\n", "Episode", "Start", "Minutes", "Peak")
		for _, e := range p.Episodes {
			fmt.Fprintf(out, "%-22s  %-5s  %8d  %.2f\n", e.Label, e.StartAt.Format("15:04"), e.DurationMinutes, e.PeakIntensity)
		}
	}
	if len(p.Timeline) > 0 {
		fmt.Fprintf(out, "\n%-14s  %-5s  %s\n", "Segment", "Start", "End")
		for _, s := range p.Timeline {
			fmt.Fprintf(out, "%-14s  %-5s  %s\n", s.Label, s.StartAt.Format("15:04"), s.EndAt.Format("15:04"))
		}
	}
}

func printRecommendation(out io.Writer, r recommend.Recommendation, drivers []recommend.DriverImpact) {
	fmt.Fprintf(out, "Next: %s (%s)\n", r.Title, r.PresetID)
	fmt.Fprintf(out, "Rule: %s  confidence %.2f  projected load %+.1f in 2h\n", r.RuleID, r.Confidence, r.ProjectedLoadDelta)
	fmt.Fprintf(out, "Why:  %s\n", r.Rationale)
	if len(drivers) > 0 {
		fmt.Fprintf(out, "\n%-20s  %6s  %s\n", "Driver", "Impact", "Detail")
		for _, d := range drivers {
			fmt.Fprintf(out, "%-20s  %6.1f  %s\n", d.Name, d.Impact, d.Detail)
		}
	}
}

// #endregion print
