package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/conneqt/leavebot-go/internal/config"
	apperrors "github.com/conneqt/leavebot-go/internal/errors"
)

// SQLiteStore persists sessions in a single SQLite table, one JSON
// document per session. WAL mode keeps concurrent sessions from
// blocking each other.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions(updated_at);
`

// NewSQLiteStore opens (and if needed creates) the session database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists (skip for in-memory database)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Busy timeout handles write contention between concurrent sessions
	busyMs := config.DatabaseBusyTimeout.Milliseconds()
	if _, err := conn.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d", busyMs)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Set synchronous mode to NORMAL for better performance
	if _, err := conn.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{conn: conn, path: dbPath}, nil
}

// Load returns the session, or errors.ErrNotFound when absent.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	var data string
	err := s.conn.QueryRowContext(ctx,
		`SELECT data FROM sessions WHERE id = ?`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound(sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &sess, nil
}

// Save upserts the whole session document.
func (s *SQLiteStore) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID, err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		sess.ID, sess.UserID, string(data), sess.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// DeleteStale removes sessions untouched for longer than maxIdle.
// Returns the number of sessions removed.
func (s *SQLiteStore) DeleteStale(ctx context.Context, maxIdle time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxIdle).Unix()
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Count returns the number of stored sessions (for metrics).
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func errNotFound(sessionID string) error {
	return fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
}
