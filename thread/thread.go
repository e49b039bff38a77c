// Package thread keeps the branching message store of one conversation and
// the pointer to its active tip.
package thread

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Desarso/companion/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("message not found")
	ErrDuplicateID   = errors.New("message id already exists")
	ErrUnknownParent = errors.New("parent message not found")
	ErrEmptyID       = errors.New("message id is empty")
)

// NewID returns a time ordered message id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Thread is safe for concurrent use. Messages are never removed or rewritten
// except for the late audio attachment.
type Thread struct {
	mu       sync.RWMutex
	messages []models.Message
	index    map[string]int
	active   string
}

func New() *Thread {
	return &Thread{index: make(map[string]int)}
}

// Load builds a thread from persisted state. See Replace.
func Load(msgs []models.Message, activeID string) *Thread {
	t := New()
	t.Replace(msgs, activeID)
	return t
}

// Append inserts msg in store order. The active pointer does not move.
func (t *Thread) Append(msg models.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.appendLocked(msg)
}

func (t *Thread) appendLocked(msg models.Message) error {
	if msg.ID == "" {
		return ErrEmptyID
	}
	if _, exists := t.index[msg.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, msg.ID)
	}
	if msg.ParentID != "" {
		if _, ok := t.index[msg.ParentID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownParent, msg.ParentID)
		}
	}
	t.index[msg.ID] = len(t.messages)
	t.messages = append(t.messages, msg)
	return nil
}

// Fork attaches msg under parentID, next to whatever already descends from it.
// An empty parentID forks a new root. Missing id and timestamp are filled in.
func (t *Thread) Fork(parentID string, msg models.Message) (models.Message, error) {
	msg.ParentID = parentID
	if msg.ID == "" {
		msg.ID = NewID()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.appendLocked(msg); err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

// SetActive repoints the active tip. An empty id clears it.
func (t *Thread) SetActive(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id != "" {
		if _, ok := t.index[id]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
	t.active = id
	return nil
}

func (t *Thread) ActiveID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// ActivePath returns the root-to-tip path ending at the active message.
// A dangling parent or a revisited id ends the walk early.
func (t *Thread) ActivePath() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pathLocked(t.active)
}

// PathTo is ActivePath for an arbitrary tip.
func (t *Thread) PathTo(id string) []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pathLocked(id)
}

func (t *Thread) pathLocked(tip string) []models.Message {
	var path []models.Message
	seen := make(map[string]bool)
	for id := tip; id != "" && !seen[id]; {
		i, ok := t.index[id]
		if !ok {
			break
		}
		seen[id] = true
		msg := t.messages[i]
		path = append(path, msg)
		id = msg.ParentID
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IndexInPath returns the position of id on the active path, or -1.
func (t *Thread) IndexInPath(id string) int {
	for i, m := range t.ActivePath() {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// SiblingsOf returns the messages sharing id's parent and role, in store order.
// The result always contains the message itself.
func (t *Thread) SiblingsOf(id string) ([]models.Message, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	target := t.messages[i]
	var siblings []models.Message
	for _, m := range t.messages {
		if m.ParentID == target.ParentID && m.Role == target.Role {
			siblings = append(siblings, m)
		}
	}
	return siblings, nil
}

// DeepestDescendant follows the first child in store order until a leaf.
func (t *Thread) DeepestDescendant(id string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.index[id]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	seen := map[string]bool{id: true}
	current := id
	for {
		next := ""
		for _, m := range t.messages {
			if m.ParentID == current {
				next = m.ID
				break
			}
		}
		if next == "" || seen[next] {
			return current, nil
		}
		seen[next] = true
		current = next
	}
}

// AttachAudio sets the audio payload of an existing message.
func (t *Thread) AttachAudio(id, audio string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.messages[i].Audio = audio
	return nil
}

func (t *Thread) Get(id string) (models.Message, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[id]
	if !ok {
		return models.Message{}, false
	}
	return t.messages[i], true
}

// Messages returns a copy of the store in insertion order.
func (t *Thread) Messages() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Replace swaps the whole store, typically with persisted or archived state.
// Parents are not validated; a later duplicate id is dropped. An active id
// missing from msgs clears the pointer.
func (t *Thread) Replace(msgs []models.Message, activeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = make([]models.Message, 0, len(msgs))
	t.index = make(map[string]int, len(msgs))
	for _, m := range msgs {
		if m.ID == "" {
			continue
		}
		if _, dup := t.index[m.ID]; dup {
			continue
		}
		t.index[m.ID] = len(t.messages)
		t.messages = append(t.messages, m)
	}
	t.active = ""
	if _, ok := t.index[activeID]; ok {
		t.active = activeID
	}
}

// Reset empties the store and clears the pointer.
func (t *Thread) Reset() {
	t.Replace(nil, "")
}
