// Command wellctl drives the wellness core from the shell: scenario demos,
// recommendations, signal profiles, the launch state machine, fixture replay
// and version inspection.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/config"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/logging"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose      bool
	jsonOut      bool
	dbPath       string
	scenarioFlag string
	dayFlag      int

	// Resolved in PersistentPreRunE
	cfg    config.Config
	logger *zap.Logger
)

// errDivergence makes replay exit 1 without printing a second error line.
var errDivergence = errors.New("replay diverged from fixture")

// #region root

var rootCmd = &cobra.Command{
	Use:   "wellctl",
	Short: "Wellness state-estimation and recommendation core",
	Long: `wellctl runs the wellness core against demo scenarios.

Settings come from WELLNESS_* environment variables; flags override them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Parse()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			loaded.DBPath = dbPath
		}
		if cmd.Flags().Changed("scenario") {
			loaded.Scenario = scenarioFlag
		}
		if cmd.Flags().Changed("day") {
			loaded.Day = dayFlag
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.NewLogger(level, cfg.LogJSON)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger.Debug("config loaded",
			zap.String("db", cfg.DBPath),
			zap.String("scenario", cfg.Scenario),
			zap.Int("day", cfg.EffectiveDay()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print protojson instead of tables")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default $WELLNESS_DB or wellness.db)")
	rootCmd.PersistentFlags().StringVarP(&scenarioFlag, "scenario", "s", "", "Scenario id (default $WELLNESS_SCENARIO or balanced_day)")
	rootCmd.PersistentFlags().IntVar(&dayFlag, "day", 0, "Scenario day (0 = scenario default)")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(scenariosCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDivergence) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// #endregion root

// #region helpers

func scenarioDefinition() state.ScenarioDefinition {
	return state.Definition(cfg.ScenarioID())
}

// #endregion helpers
