// internal/db/store.go
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a history entry does not exist
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

// HistoryEntry is one successful processing run
type HistoryEntry struct {
	ID             string
	CreatedAt      time.Time
	Mode           string
	Provider       string
	Model          string
	CaseStyle      string
	TargetLanguage string
	OriginalText   string
	ProcessedText  string
	Duration       time.Duration
}

// Open opens the database at path, or at the default location when path is empty
func Open(path string) (*Store, error) {
	if path == "" {
		dir, err := DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "writon.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return store, nil
}

// DataDir is where writon keeps its database and log file
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "writon"), nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		mode TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT,
		case_style TEXT,
		target_language TEXT,
		original_text TEXT NOT NULL,
		processed_text TEXT NOT NULL,
		duration_ms INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_history_created ON history(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

// AddHistory records a processing run and returns its ID
func (s *Store) AddHistory(e HistoryEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO history (id, created_at, mode, provider, model, case_style, target_language,
		 original_text, processed_text, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.UTC(), e.Mode, e.Provider, e.Model, e.CaseStyle, e.TargetLanguage,
		e.OriginalText, e.ProcessedText, e.Duration.Milliseconds(),
	)
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// ListHistory returns the most recent runs first. limit <= 0 returns everything.
func (s *Store) ListHistory(limit int) ([]HistoryEntry, error) {
	query := `SELECT id, created_at, mode, provider, model, case_style, target_language,
		 original_text, processed_text, duration_ms
		 FROM history ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetHistory retrieves a single run by ID
func (s *Store) GetHistory(id string) (*HistoryEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, created_at, mode, provider, model, case_style, target_language,
		 original_text, processed_text, duration_ms
		 FROM history WHERE id = ?`, id,
	)
	e, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ClearHistory removes every recorded run
func (s *Store) ClearHistory() error {
	_, err := s.db.Exec(`DELETE FROM history`)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(row scanner) (HistoryEntry, error) {
	var e HistoryEntry
	var model, caseStyle, lang sql.NullString
	var durationMs int64
	err := row.Scan(&e.ID, &e.CreatedAt, &e.Mode, &e.Provider, &model, &caseStyle, &lang,
		&e.OriginalText, &e.ProcessedText, &durationMs)
	if err != nil {
		return e, err
	}
	e.Model = model.String
	e.CaseStyle = caseStyle.String
	e.TargetLanguage = lang.String
	e.Duration = time.Duration(durationMs) * time.Millisecond
	return e, nil
}
