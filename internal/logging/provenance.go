package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// #region log-decision
// LogDecision writes a provenance entry to the provenance_log table.
func LogDecision(db *sql.DB, entry ProvenanceEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (version_id, trigger_type, context_json, decision, rule_id, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.VersionID,
		entry.TriggerType,
		nullIfEmpty(entry.ContextJSON),
		entry.Decision,
		nullIfEmpty(entry.RuleID),
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// EncodeRecord serializes a DecisionRecord for ProvenanceEntry.ContextJSON.
func EncodeRecord(rec DecisionRecord) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode decision record: %w", err)
	}
	return string(data), nil
}
// #endregion log-decision

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
