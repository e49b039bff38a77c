// Package calls times call-mode sessions and keeps their history.
package calls

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Desarso/companion/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("call not found")
	ErrNoCall     = errors.New("no call in progress")
	ErrCallActive = errors.New("a call is already in progress")
)

// FormatDuration renders d as m:ss, truncating to whole seconds.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

type Tracker struct {
	mu      sync.Mutex
	history []models.CallHistory
	started time.Time
	active  bool
	now     func() time.Time
}

func NewTracker(history []models.CallHistory) *Tracker {
	return &Tracker{history: slices.Clone(history), now: time.Now}
}

func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		return ErrCallActive
	}
	t.active = true
	t.started = t.now()
	return nil
}

func (t *Tracker) InProgress() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// End stops the running call and records it. A duration of "0:00" is dropped
// and reported with ok=false.
func (t *Tracker) End() (models.CallHistory, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return models.CallHistory{}, false, ErrNoCall
	}
	return t.finishLocked(FormatDuration(t.now().Sub(t.started)))
}

// EndWithDuration is End for clients that time the call themselves.
func (t *Tracker) EndWithDuration(duration string) (models.CallHistory, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return models.CallHistory{}, false, ErrNoCall
	}
	return t.finishLocked(duration)
}

func (t *Tracker) finishLocked(duration string) (models.CallHistory, bool, error) {
	t.active = false
	if duration == "0:00" || duration == "" {
		return models.CallHistory{}, false, nil
	}
	call := models.CallHistory{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Timestamp: t.now().UnixMilli(),
		Duration:  duration,
		Status:    models.CallStatusCompleted,
	}
	t.history = append([]models.CallHistory{call}, t.history...)
	return call, true, nil
}

// History returns recorded calls, most recent first.
func (t *Tracker) History() []models.CallHistory {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.history)
}

func (t *Tracker) Delete(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := slices.IndexFunc(t.history, func(c models.CallHistory) bool { return c.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.history = slices.Delete(t.history, i, i+1)
	return nil
}

func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = nil
}
