package formstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/etouchhq/insure-chat/internal/domain"
)

// storeNamespace keys the single persisted record. Kept for compatibility
// with state written by earlier releases.
const storeNamespace = "etouch-insurance-store"

// SQLitePersister keeps the form session record in a local SQLite file so
// it survives process restarts.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (creating if needed) the persistence database.
func NewSQLitePersister(dbPath string) (*SQLitePersister, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode: the chat loop and background reconciliation may touch the
	// store concurrently.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	p := &SQLitePersister{db: db}
	if err := p.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return p, nil
}

func (p *SQLitePersister) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS form_sessions (
		namespace TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := p.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load reads the persisted record, returning nil when none exists.
func (p *SQLitePersister) Load(ctx context.Context) (*domain.FormSessionState, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT payload FROM form_sessions WHERE namespace = ?`, storeNamespace)

	var payload string
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan form session row: %w", err)
	}

	var state domain.FormSessionState
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("decode form session payload: %w", err)
	}
	return &state, nil
}

// Save upserts the persisted record, retrying briefly on SQLite
// concurrency errors.
func (p *SQLitePersister) Save(ctx context.Context, state *domain.FormSessionState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode form session payload: %w", err)
	}

	query := `
	INSERT INTO form_sessions (namespace, payload, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(namespace) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at`

	return p.withRetry(func() error {
		_, err := p.db.ExecContext(ctx, query, storeNamespace, string(payload), time.Now().Unix())
		if err != nil {
			return fmt.Errorf("upsert form session: %w", err)
		}
		return nil
	})
}

// Clear removes the persisted record.
func (p *SQLitePersister) Clear(ctx context.Context) error {
	return p.withRetry(func() error {
		_, err := p.db.ExecContext(ctx,
			`DELETE FROM form_sessions WHERE namespace = ?`, storeNamespace)
		if err != nil {
			return fmt.Errorf("delete form session: %w", err)
		}
		return nil
	})
}

// Close closes the database.
func (p *SQLitePersister) Close() error {
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// withRetry retries an operation with exponential backoff when SQLite
// reports a concurrency conflict.
func (p *SQLitePersister) withRetry(op func() error) error {
	const maxRetries = 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = op()
		if err == nil {
			return nil
		}
		if !isSQLiteConflict(err) || i == maxRetries-1 {
			return err
		}
		time.Sleep(baseDelay * time.Duration(1<<i))
	}
	return err
}

// isSQLiteConflict checks for SQLITE_BUSY / "database is locked" errors,
// which warrant a retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
