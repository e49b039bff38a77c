// Package archive keeps snapshots of finished conversations, most recent first.
package archive

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Desarso/companion/models"
	"github.com/google/uuid"
)

const (
	UntitledSession = "Obrolan Tanpa Judul"
	titleLimit      = 35
)

var ErrNotFound = errors.New("session not found")

type Archive struct {
	mu       sync.RWMutex
	sessions []models.ChatSession
	now      func() time.Time
}

// New returns an archive seeded with persisted sessions, assumed most recent first.
func New(sessions []models.ChatSession) *Archive {
	return &Archive{sessions: slices.Clone(sessions), now: time.Now}
}

// Title derives a session title from the first root message in store order.
func Title(messages []models.Message) string {
	for _, m := range messages {
		if !m.IsRoot() {
			continue
		}
		if m.Text == "" {
			return UntitledSession
		}
		r := []rune(m.Text)
		if len(r) > titleLimit {
			return string(r[:titleLimit]) + "..."
		}
		return m.Text
	}
	return UntitledSession
}

// Archive snapshots a message store. An empty store is not archived.
func (a *Archive) Archive(messages []models.Message, activeID string) (models.ChatSession, bool) {
	if len(messages) == 0 {
		return models.ChatSession{}, false
	}
	session := models.ChatSession{
		ID:              uuid.Must(uuid.NewV7()).String(),
		Title:           Title(messages),
		Messages:        slices.Clone(messages),
		ActiveMessageID: activeID,
		Timestamp:       a.now().UnixMilli(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions = append([]models.ChatSession{session}, a.sessions...)
	return session, true
}

// Restore archives the current store, then removes and returns the session id.
// The current store is only archived when id exists.
func (a *Archive) Restore(id string, current []models.Message, currentActive string) (models.ChatSession, error) {
	a.mu.Lock()
	i := a.indexLocked(id)
	a.mu.Unlock()
	if i < 0 {
		return models.ChatSession{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	a.Archive(current, currentActive)

	a.mu.Lock()
	defer a.mu.Unlock()
	i = a.indexLocked(id)
	if i < 0 {
		return models.ChatSession{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	session := a.sessions[i]
	a.sessions = slices.Delete(a.sessions, i, i+1)
	return session, nil
}

func (a *Archive) Remove(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	a.sessions = slices.Delete(a.sessions, i, i+1)
	return nil
}

func (a *Archive) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions = nil
}

// List returns a copy of all sessions, most recent first.
func (a *Archive) List() []models.ChatSession {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.sessions)
}

func (a *Archive) Summaries() []models.SessionSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]models.SessionSummary, 0, len(a.sessions))
	for _, s := range a.sessions {
		out = append(out, models.SessionSummary{
			ID:           s.ID,
			Title:        s.Title,
			MessageCount: len(s.Messages),
			Timestamp:    s.Timestamp,
		})
	}
	return out
}

func (a *Archive) Get(id string) (models.ChatSession, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	i := a.indexLocked(id)
	if i < 0 {
		return models.ChatSession{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a.sessions[i], nil
}

func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.sessions)
}

// Prune drops sessions archived before now-maxAge and returns how many went.
func (a *Archive) Prune(maxAge time.Duration, now time.Time) int {
	cutoff := now.Add(-maxAge).UnixMilli()
	a.mu.Lock()
	defer a.mu.Unlock()
	before := len(a.sessions)
	a.sessions = slices.DeleteFunc(a.sessions, func(s models.ChatSession) bool {
		return s.Timestamp < cutoff
	})
	return before - len(a.sessions)
}

func (a *Archive) indexLocked(id string) int {
	return slices.IndexFunc(a.sessions, func(s models.ChatSession) bool { return s.ID == id })
}
