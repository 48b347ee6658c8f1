package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrOutOfRange is returned when a record with unclamped metrics is committed.
var ErrOutOfRange = errors.New("metrics out of range")

// timestampLayout is fixed width so created_at sorts chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS metric_versions (
	version_id   TEXT PRIMARY KEY,
	parent_id    TEXT,
	scenario     TEXT NOT NULL,
	load         INTEGER NOT NULL,
	readiness    INTEGER NOT NULL,
	consistency  INTEGER NOT NULL,
	reason       TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES metric_versions(version_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id    TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	context_json  TEXT,
	decision      TEXT NOT NULL,
	rule_id       TEXT,
	reason        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES metric_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_metrics (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES metric_versions(version_id)
);
`

// #endregion schema

// #region store-struct
// Store keeps versioned metric snapshots in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging, session).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region new-record
// NewRecord builds the child version of parent holding m. Metrics are clamped.
func NewRecord(parent MetricsRecord, m Metrics, reason string, now time.Time) MetricsRecord {
	return MetricsRecord{
		VersionID: uuid.New().String(),
		ParentID:  parent.VersionID,
		Scenario:  parent.Scenario,
		Metrics:   ClampMetrics(m),
		Reason:    reason,
		CreatedAt: now.UTC(),
	}
}

// #endregion new-record

// #region create-initial
// CreateInitial inserts a root version for scenario and makes it active.
func (s *Store) CreateInitial(scenario Scenario, m Metrics, now time.Time) (MetricsRecord, error) {
	rec := MetricsRecord{
		VersionID: uuid.New().String(),
		Scenario:  scenario,
		Metrics:   ClampMetrics(m),
		Reason:    "initial",
		CreatedAt: now.UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return MetricsRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertVersion(tx, rec); err != nil {
		return MetricsRecord{}, err
	}
	_, err = tx.Exec(
		`INSERT INTO active_metrics (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		rec.VersionID,
	)
	if err != nil {
		return MetricsRecord{}, fmt.Errorf("set active: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return MetricsRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// #endregion create-initial

// #region get-current
// GetCurrent reads the active metrics version.
func (s *Store) GetCurrent() (MetricsRecord, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_metrics WHERE id = 1`).Scan(&versionID)
	if err != nil {
		return MetricsRecord{}, fmt.Errorf("get active: %w", err)
	}
	return s.GetVersion(versionID)
}

// #endregion get-current

// #region get-version
// GetVersion retrieves a specific metrics version by ID.
func (s *Store) GetVersion(id string) (MetricsRecord, error) {
	row := s.db.QueryRow(
		`SELECT version_id, parent_id, scenario, load, readiness, consistency, reason, created_at
		 FROM metric_versions WHERE version_id = ?`, id,
	)
	rec, err := scanRecord(row)
	if err != nil {
		return MetricsRecord{}, fmt.Errorf("get version %s: %w", id, err)
	}
	return rec, nil
}

// #endregion get-version

// #region commit
// Commit inserts a new version and moves the active pointer to it atomically.
func (s *Store) Commit(rec MetricsRecord) error {
	if !rec.Metrics.InRange() {
		return fmt.Errorf("commit %s: %w: %s", rec.VersionID, ErrOutOfRange, rec.Metrics)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertVersion(tx, rec); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE active_metrics SET version_id = ? WHERE id = 1`, rec.VersionID); err != nil {
		return fmt.Errorf("update active: %w", err)
	}
	return tx.Commit()
}

// #endregion commit

// #region rollback
// Rollback sets the active pointer to a previous version.
func (s *Store) Rollback(targetVersionID string) error {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM metric_versions WHERE version_id = ?`, targetVersionID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("version %s not found", targetVersionID)
	}

	if _, err := s.db.Exec(`UPDATE active_metrics SET version_id = ? WHERE id = 1`, targetVersionID); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// #endregion rollback

// #region list-versions
// ListVersions returns the most recent metrics versions, newest first.
func (s *Store) ListVersions(limit int) ([]MetricsRecord, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, scenario, load, readiness, consistency, reason, created_at
		 FROM metric_versions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var records []MetricsRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListVersionsWithProvenance returns recent versions joined with their latest logged decision.
func (s *Store) ListVersionsWithProvenance(limit int) ([]VersionWithProvenance, error) {
	rows, err := s.db.Query(
		`SELECT v.version_id, v.parent_id, v.scenario, v.load, v.readiness, v.consistency, v.reason, v.created_at,
		        p.decision, p.rule_id, p.context_json
		 FROM metric_versions v
		 LEFT JOIN provenance_log p ON p.id = (
			SELECT MAX(id) FROM provenance_log WHERE version_id = v.version_id
		 )
		 ORDER BY v.created_at DESC, v.rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions with provenance: %w", err)
	}
	defer rows.Close()

	var out []VersionWithProvenance
	for rows.Next() {
		var vp VersionWithProvenance
		var parentID, reason, decision, ruleID, contextJSON sql.NullString
		var scenario, createdStr string
		err := rows.Scan(
			&vp.VersionID, &parentID, &scenario,
			&vp.Metrics.Load, &vp.Metrics.Readiness, &vp.Metrics.Consistency,
			&reason, &createdStr, &decision, &ruleID, &contextJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		vp.ParentID = parentID.String
		vp.Scenario = Scenario(scenario)
		vp.Reason = reason.String
		vp.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		vp.Decision = decision.String
		vp.RuleID = ruleID.String
		vp.ContextJSON = contextJSON.String
		out = append(out, vp)
	}
	return out, rows.Err()
}

// #endregion list-versions

// #region helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (MetricsRecord, error) {
	var rec MetricsRecord
	var parentID, reason sql.NullString
	var scenario, createdStr string
	err := row.Scan(
		&rec.VersionID, &parentID, &scenario,
		&rec.Metrics.Load, &rec.Metrics.Readiness, &rec.Metrics.Consistency,
		&reason, &createdStr,
	)
	if err != nil {
		return MetricsRecord{}, err
	}
	rec.ParentID = parentID.String
	rec.Scenario = Scenario(scenario)
	rec.Reason = reason.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func insertVersion(tx *sql.Tx, rec MetricsRecord) error {
	_, err := tx.Exec(
		`INSERT INTO metric_versions (version_id, parent_id, scenario, load, readiness, consistency, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.VersionID, nullIfEmpty(rec.ParentID), string(rec.Scenario),
		rec.Metrics.Load, rec.Metrics.Readiness, rec.Metrics.Consistency,
		nullIfEmpty(rec.Reason), rec.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
