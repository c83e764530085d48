package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	sperrors "github.com/msto63/sparo/pkg/core/errors"
)

// ErrCorruptRecord is returned (wrapped) by Recent when stored rows could
// not be decoded. The records that could be decoded are still returned.
var ErrCorruptRecord = errors.New("corrupt telemetry record")

// Store persists telemetry records
type Store interface {
	Save(ctx context.Context, records []Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/telemetry.db",
	}
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// NewSQLiteStore opens (and creates if needed) the telemetry database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, sperrors.Wrap(err, "failed to create telemetry directory").
			WithCode(sperrors.CodeDatabaseError).
			WithOperation("telemetry.NewSQLiteStore").
			WithDetail("path", dir)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, sperrors.Wrap(err, "failed to open telemetry database").
			WithCode(sperrors.CodeDatabaseError).
			WithOperation("telemetry.NewSQLiteStore").
			WithDetail("path", cfg.Path)
	}

	store := &SQLiteStore{db: db, now: time.Now}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, sperrors.Wrap(err, "failed to initialize telemetry schema").
			WithCode(sperrors.CodeDatabaseError).
			WithOperation("telemetry.NewSQLiteStore").
			WithDetail("path", cfg.Path)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS telemetry (
		id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		args TEXT NOT NULL,
		duration_seconds REAL NOT NULL,
		start_ms INTEGER NOT NULL,
		end_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_telemetry_start ON telemetry(start_ms DESC);
	CREATE INDEX IF NOT EXISTS idx_telemetry_command ON telemetry(command);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores records in a single transaction
func (s *SQLiteStore) Save(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO telemetry (id, command, args, duration_seconds, start_ms, end_ms)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		args := r.Args
		if args == nil {
			args = []string{}
		}
		argsJSON, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("failed to encode args of %s: %w", r.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, r.ID, r.CommandName, string(argsJSON),
			r.DurationInSeconds, r.StartTimestampMs, r.EndTimestampMs); err != nil {
			return fmt.Errorf("failed to insert telemetry record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Recent returns up to limit records, newest first
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, args, duration_seconds, start_ms, end_ms
		FROM telemetry
		ORDER BY start_ms DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, sperrors.Wrap(err, "failed to query telemetry").
			WithCode(sperrors.CodeDatabaseError).
			WithOperation("telemetry.Recent")
	}
	defer rows.Close()

	var records []Record
	corrupt := 0
	for rows.Next() {
		var r Record
		var argsJSON string
		if err := rows.Scan(&r.ID, &r.CommandName, &argsJSON, &r.DurationInSeconds,
			&r.StartTimestampMs, &r.EndTimestampMs); err != nil {
			corrupt++
			continue
		}
		if err := json.Unmarshal([]byte(argsJSON), &r.Args); err != nil {
			corrupt++
			continue
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return records, sperrors.Wrap(err, "failed to read telemetry").
			WithCode(sperrors.CodeDatabaseError).
			WithOperation("telemetry.Recent")
	}

	if corrupt > 0 {
		return records, fmt.Errorf("%w: %d row(s) skipped", ErrCorruptRecord, corrupt)
	}
	return records, nil
}

// Prune deletes records that ended more than olderThan ago
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan).UnixMilli()
	result, err := s.db.ExecContext(ctx, `DELETE FROM telemetry WHERE end_ms < ?`, cutoff)
	if err != nil {
		return 0, sperrors.Wrap(err, "failed to prune telemetry").
			WithCode(sperrors.CodeDatabaseError).
			WithOperation("telemetry.Prune")
	}

	return result.RowsAffected()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
