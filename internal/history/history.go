// Package history persists playback sessions so interrupted files can be
// resumed and past playback can be listed.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store records playback sessions in SQLite.
type Store struct {
	db *sql.DB
}

// Session is one recorded playback of a file.
type Session struct {
	ID        int64
	Path      string
	StartedAt time.Time
	EndedAt   time.Time // zero while the session is live
	Position  time.Duration
	Duration  time.Duration
	Completed bool
}

// Open creates or opens a session store at dbPath. Use ":memory:" in tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; also keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			ended_at INTEGER,
			position_ms INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_path ON sessions(path, started_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Start records the beginning of a session and returns its id.
func (s *Store) Start(ctx context.Context, path string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (path, started_at) VALUES (?, ?)`,
		path, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}
	return id, nil
}

// Checkpoint updates the position and duration of a live session.
func (s *Store) Checkpoint(ctx context.Context, id int64, position, duration time.Duration) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET position_ms = ?, duration_ms = ? WHERE id = ?`,
		position.Milliseconds(), duration.Milliseconds(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to checkpoint session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session with id %d not found", id)
	}
	return nil
}

// Finish closes a session. A completed session no longer offers a resume
// point for its file.
func (s *Store) Finish(ctx context.Context, id int64, completed bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET ended_at = ?, completed = ? WHERE id = ?`,
		time.Now().Unix(), completed, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session with id %d not found", id)
	}
	return nil
}

// ResumePoint returns the checkpointed position of the most recent
// uncompleted session for path, or ok=false when there is nothing to resume.
func (s *Store) ResumePoint(ctx context.Context, path string) (time.Duration, bool, error) {
	var positionMs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT position_ms FROM sessions
		 WHERE path = ? AND completed = 0 AND position_ms > 0
		 ORDER BY started_at DESC LIMIT 1`,
		path,
	).Scan(&positionMs)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query resume point: %w", err)
	}
	return time.Duration(positionMs) * time.Millisecond, true, nil
}

// Recent returns the most recent sessions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	query := `
		SELECT id, path, started_at, COALESCE(ended_at, 0), position_ms, duration_ms, completed
		FROM sessions
		ORDER BY started_at DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var startedUnix, endedUnix, positionMs, durationMs int64

		if err := rows.Scan(&sess.ID, &sess.Path, &startedUnix, &endedUnix, &positionMs, &durationMs, &sess.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		sess.StartedAt = time.Unix(startedUnix, 0)
		if endedUnix > 0 {
			sess.EndedAt = time.Unix(endedUnix, 0)
		}
		sess.Position = time.Duration(positionMs) * time.Millisecond
		sess.Duration = time.Duration(durationMs) * time.Millisecond

		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

// Clear deletes all recorded sessions and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear sessions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
