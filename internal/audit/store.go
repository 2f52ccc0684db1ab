// Package audit provides the persistent audit-log sink backed by SQLite.
// Records are append-only; the gateway never reads them back.
package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/tkrause/textgen-gateway/internal/logging"
)

// Store writes log entries to a local SQLite database.
type Store struct {
	db *sql.DB
}

var _ logging.AuditSink = (*Store)(nil)

// Open opens (or creates) the audit database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sys_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			log_text TEXT NOT NULL,
			log_level INTEGER NOT NULL,
			log_category TEXT,
			context TEXT,
			request_id TEXT,
			error TEXT,
			url TEXT,
			method TEXT,
			duration_ms INTEGER,
			operation TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sys_log_level ON sys_log(log_level)`,
		`CREATE INDEX IF NOT EXISTS idx_sys_log_created ON sys_log(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write appends a single log entry. Callers treat failures as non-fatal.
func (s *Store) Write(ctx context.Context, e logging.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sys_log (log_text, log_level, log_category, context, request_id, error, url, method, duration_ms, operation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Text, int(e.Level), nullable(e.Category), nullable(e.Context), nullable(e.RequestID),
		nullable(e.Error), nullable(e.URL), nullable(e.Method), e.DurationMS, nullable(e.Operation),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log entry: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
