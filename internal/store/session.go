package store

import (
	"database/sql"
	"errors"
	"time"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Session is one period of cursor mode, from entry to exit.
type Session struct {
	ID         string     `json:"id"`
	EnteredBy  string     `json:"entered_by"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	ExitReason string     `json:"exit_reason,omitempty"`
	Clicks     int        `json:"clicks"`
	Scrolls    int        `json:"scrolls"`
}

// Open reports whether the session has not ended yet.
func (s *Session) Open() bool {
	return s.EndedAt == nil
}

// SessionRepository provides access to cursor sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new, open session.
func (r *SessionRepository) Create(sess *Session) error {
	_, err := r.db.Exec(
		`INSERT INTO cursor_sessions (id, entered_by, started_at, clicks, scrolls)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.EnteredBy, sess.StartedAt.UTC(), sess.Clicks, sess.Scrolls,
	)
	return err
}

// Finish closes a session with its exit reason and final activity counts.
func (r *SessionRepository) Finish(id string, endedAt time.Time, reason string, clicks, scrolls int) error {
	result, err := r.db.Exec(
		`UPDATE cursor_sessions
		 SET ended_at = ?, exit_reason = ?, clicks = ?, scrolls = ?
		 WHERE id = ? AND ended_at IS NULL`,
		endedAt.UTC(), reason, clicks, scrolls, id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, entered_by, started_at, ended_at, exit_reason, clicks, scrolls
		 FROM cursor_sessions WHERE id = ?`,
		id,
	)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions, newest first. limit is clamped to
// [1, MaxListLimit]; zero or negative means DefaultListLimit.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, entered_by, started_at, ended_at, exit_reason, clicks, scrolls
		 FROM cursor_sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// CloseDangling ends every session left open, e.g. by a crash, and reports
// how many were closed.
func (r *SessionRepository) CloseDangling(at time.Time, reason string) (int64, error) {
	result, err := r.db.Exec(
		`UPDATE cursor_sessions SET ended_at = ?, exit_reason = ? WHERE ended_at IS NULL`,
		at.UTC(), reason,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	var endedAt sql.NullTime
	var reason sql.NullString

	if err := row.Scan(&sess.ID, &sess.EnteredBy, &sess.StartedAt, &endedAt, &reason, &sess.Clicks, &sess.Scrolls); err != nil {
		return nil, err
	}

	if endedAt.Valid {
		t := endedAt.Time
		sess.EndedAt = &t
	}
	sess.ExitReason = reason.String
	return sess, nil
}
