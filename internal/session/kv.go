package session

// #region imports
import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #endregion imports

// ErrNotFound is returned by Load for a missing key.
var ErrNotFound = errors.New("session: key not found")

// #region kv

// KV is the narrow load/save contract the app persists through.
type KV interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

// SQLiteKV is a KV backed by a single SQLite table.
type SQLiteKV struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) a SQLite database at path and returns a KV over it.
func Open(path string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	kv, err := NewSQLiteKV(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return kv, nil
}

// NewSQLiteKV creates the kv_entries table if needed.
func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	s := &SQLiteKV{db: db, now: time.Now}
	if err := s.init(); err != nil {
		return nil, fmt.Errorf("init kv: %w", err)
	}
	return s, nil
}

func (s *SQLiteKV) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS kv_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// Close closes the underlying database.
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// DB exposes the connection for stores sharing the same file.
func (s *SQLiteKV) DB() *sql.DB {
	return s.db
}

// Load returns the value for key, or ErrNotFound.
func (s *SQLiteKV) Load(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("load %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return value, nil
}

// Save upserts value under key.
func (s *SQLiteKV) Save(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.Exec(
		`INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLiteKV) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// #endregion kv
