package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/logging"
	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/state"
	"github.com/spf13/cobra"
)

var (
	lastN     int
	versionID string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List metric versions with their provenance",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&lastN, "last", 20, "Show N most recent versions")
	inspectCmd.Flags().StringVar(&versionID, "version", "", "Show a single version in detail")
}

// #region list-mode

type listRow struct {
	VersionID string                  `json:"version_id"`
	ParentID  string                  `json:"parent_id,omitempty"`
	Scenario  string                  `json:"scenario"`
	Metrics   state.Metrics           `json:"metrics"`
	Reason    string                  `json:"reason"`
	Decision  string                  `json:"decision,omitempty"`
	RuleID    string                  `json:"rule_id,omitempty"`
	Preset    string                  `json:"preset,omitempty"`
	Record    *logging.DecisionRecord `json:"record,omitempty"`
	CreatedAt string                  `json:"created_at"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	store, err := state.NewStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if versionID != "" {
		return runDetailMode(out, store, versionID)
	}

	versions, err := store.ListVersionsWithProvenance(lastN)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		fmt.Fprintln(out, "no versions found")
		return nil
	}

	// Store returns DESC, reverse for chronological
	rows := make([]listRow, len(versions))
	for i, vp := range versions {
		rows[len(versions)-1-i] = toRow(vp)
	}

	if jsonOut {
		return printJSON(out, rows)
	}
	fmt.Fprintf(out, "%-12s  %-14s  %-20s  %-11s  %-16s  %-16s  %s\n",
		"Version", "Metrics", "Reason", "Decision", "Rule", "Preset", "Time")
	for _, r := range rows {
		fmt.Fprintf(out, "%-12s  %3d/%3d/%3d    %-20s  %-11s  %-16s  %-16s  %s\n",
			shortID(r.VersionID), r.Metrics.Load, r.Metrics.Readiness, r.Metrics.Consistency,
			r.Reason, dash(r.Decision), dash(r.RuleID), dash(r.Preset), r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(out io.Writer, store *state.Store, id string) error {
	rec, err := store.GetVersion(id)
	if err != nil {
		return err
	}
	versions, err := store.ListVersionsWithProvenance(-1)
	if err != nil {
		return err
	}
	row := listRow{
		VersionID: rec.VersionID,
		ParentID:  rec.ParentID,
		Scenario:  string(rec.Scenario),
		Metrics:   rec.Metrics,
		Reason:    rec.Reason,
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	for _, vp := range versions {
		if vp.VersionID == id {
			row = toRow(vp)
			break
		}
	}

	if jsonOut {
		return printJSON(out, row)
	}
	fmt.Fprintf(out, "Version:   %s\n", row.VersionID)
	fmt.Fprintf(out, "Parent:    %s\n", dash(row.ParentID))
	fmt.Fprintf(out, "Scenario:  %s\n", row.Scenario)
	fmt.Fprintf(out, "Metrics:   %s\n", row.Metrics)
	fmt.Fprintf(out, "Reason:    %s\n", row.Reason)
	fmt.Fprintf(out, "Decision:  %s\n", dash(row.Decision))
	fmt.Fprintf(out, "Rule:      %s\n", dash(row.RuleID))
	fmt.Fprintf(out, "Created:   %s\n", row.CreatedAt)
	if row.Record != nil {
		fmt.Fprintf(out, "Preset:    %s (projected load %+.1f)\n", row.Record.PresetID, row.Record.ProjectedLoadDelta)
		fmt.Fprintf(out, "Quality:   %.2f\n", row.Record.QualityScore)
	}
	return nil
}

// #endregion detail-mode

// #region helpers

func toRow(vp state.VersionWithProvenance) listRow {
	r := listRow{
		VersionID: vp.VersionID,
		ParentID:  vp.ParentID,
		Scenario:  string(vp.Scenario),
		Metrics:   vp.Metrics,
		Reason:    vp.Reason,
		Decision:  vp.Decision,
		RuleID:    vp.RuleID,
		CreatedAt: vp.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if rec := parseDecisionRecord(vp.ContextJSON); rec != nil {
		r.Record = rec
		r.Preset = rec.PresetID
	}
	return r
}

func parseDecisionRecord(s string) *logging.DecisionRecord {
	if s == "" {
		return nil
	}
	var rec logging.DecisionRecord
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return nil
	}
	return &rec
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// #endregion helpers
