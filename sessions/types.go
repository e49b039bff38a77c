package sessions

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/Desarso/companion/models"
	"github.com/gorilla/websocket"
)

// Mode selects how a turn finds its parent and history.
type Mode string

const (
	// ModeNormal continues from the active message with the whole active path as history.
	ModeNormal Mode = "normal"
	// ModeRegenerate replays the user message behind the trailing agent reply.
	ModeRegenerate Mode = "regenerate"
	// ModeForkFromEdit starts a sibling branch under an explicit parent.
	ModeForkFromEdit Mode = "fork_from_edit"
)

// State is the loading state of the chat as the UI sees it.
type State string

const (
	StateIdle            State = "IDLE"
	StateGeneratingText  State = "GENERATING_TEXT"
	StateGeneratingImage State = "GENERATING_IMAGE"
	StateDone            State = "DONE"
	StateFailed          State = "FAILED"
)

const fallbackPrompt = "Lanjut"

var (
	ErrTurnInProgress      = errors.New("a turn is already in progress")
	ErrNothingToRegenerate = errors.New("active path does not end in a regenerable reply")
	ErrEmptyTurn           = errors.New("turn needs a prompt or an image")
	ErrEmptyEdit           = errors.New("edited text is empty")
	ErrInvalidMode         = errors.New("unknown turn mode")
	ErrInvalidImage        = errors.New("image attachment must be a base64 data URI")
	ErrInvalidConfig       = errors.New("agent config needs a name")
	ErrNoMedia             = errors.New("message has no downloadable media")
)

type TurnRequest struct {
	Prompt string
	// Image is an optional data URI attachment.
	Image string
	Mode  Mode
	// ParentID is only read in ModeForkFromEdit. Empty forks a new root.
	ParentID string
}

// TurnResult describes how a turn ended. Err carries the swallowed backend
// error of a FAILED turn; it is never returned as the call's error.
type TurnResult struct {
	State        State
	UserMessage  *models.Message
	AgentMessage *models.Message
	Err          error
}

// EventPublisher receives chat changes for live UIs.
type EventPublisher interface {
	Publish(event models.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(models.Event) {}

// writeWait bounds a single write to a UI connection.
const writeWait = 10 * time.Second

// WebSocketWriter serializes writes to one UI connection.
type WebSocketWriter struct {
	Conn   *websocket.Conn
	Logger *log.Logger
	mu     sync.Mutex
}

func (w *WebSocketWriter) WriteEvent(event models.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.Conn.WriteJSON(event)
}

func (w *WebSocketWriter) WriteError(message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.Conn.WriteJSON(map[string]string{"error": message})
}
