package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/store"
)

// SessionStore is the part of *store.SessionRepository the journal writes to.
type SessionStore interface {
	Create(sess *store.Session) error
	Finish(id string, endedAt time.Time, reason string, clicks, scrolls int) error
	CloseDangling(at time.Time, reason string) (int64, error)
}

// Journal records each period of cursor mode as a store.Session. It is a
// cursor.Controller observer; storage failures are logged and otherwise
// ignored.
type Journal struct {
	sessions SessionStore
	clock    clockwork.Clock

	mu      sync.Mutex
	current *store.Session
}

func NewJournal(sessions SessionStore, clock clockwork.Clock) *Journal {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Journal{sessions: sessions, clock: clock}
}

// Recover ends sessions left open by a previous run.
func (j *Journal) Recover() error {
	n, err := j.sessions.CloseDangling(j.clock.Now(), string(cursor.ReasonManual))
	if err == nil && n > 0 {
		slog.Info("closed dangling cursor sessions", "count", n)
	}
	return err
}

// Current returns a copy of the open session, or nil.
func (j *Journal) Current() *store.Session {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.current == nil {
		return nil
	}
	cp := *j.current
	return &cp
}

// Observe updates the journal for one controller effect.
func (j *Journal) Observe(e cursor.Effect) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch e := e.(type) {
	case cursor.ModeChanged:
		if e.Mode == cursor.Active {
			j.open(e.Reason)
		} else {
			j.close(e.Reason)
		}
	case cursor.Click:
		if j.current != nil {
			j.current.Clicks++
		}
	case cursor.Scroll:
		if j.current != nil {
			j.current.Scrolls++
		}
	}
}

func (j *Journal) open(reason cursor.Reason) {
	sess := &store.Session{
		ID:        uuid.NewString(),
		EnteredBy: string(reason),
		StartedAt: j.clock.Now(),
	}
	if err := j.sessions.Create(sess); err != nil {
		slog.Warn("failed to record cursor session", "error", err)
		return
	}
	j.current = sess
}

func (j *Journal) close(reason cursor.Reason) {
	sess := j.current
	if sess == nil {
		return
	}
	j.current = nil

	if err := j.sessions.Finish(sess.ID, j.clock.Now(), string(reason), sess.Clicks, sess.Scrolls); err != nil {
		slog.Warn("failed to finish cursor session", "id", sess.ID, "error", err)
	}
}
