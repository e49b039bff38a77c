package models

// Role identifies who authored a message in a thread.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Message is a node in the forest of conversation turns.
// ParentID is empty for a thread root. Timestamp is unix milliseconds.
type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Text      string `json:"text"`
	Image     string `json:"image,omitempty"` // data URI
	Audio     string `json:"audio,omitempty"` // base64 PCM, attached after creation
	ParentID  string `json:"parentId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// IsRoot reports whether the message starts a thread.
func (m Message) IsRoot() bool {
	return m.ParentID == ""
}

// ChatSession is an archived snapshot of a whole message store.
type ChatSession struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Messages        []Message `json:"messages"`
	ActiveMessageID string    `json:"activeMessageId"`
	Timestamp       int64     `json:"timestamp"`
}

type CallStatus string

const (
	CallStatusCompleted CallStatus = "completed"
	// CallStatusMissed is part of the stored format but no flow records it:
	// zero-length calls are dropped instead.
	CallStatusMissed CallStatus = "missed"
)

// CallHistory is one finished call-mode session.
type CallHistory struct {
	ID        string     `json:"id"`
	Timestamp int64      `json:"timestamp"`
	Duration  string     `json:"duration"`
	Status    CallStatus `json:"status"`
}

// HistoryTurn is the text-only form of a message sent as conversation context.
// Role is "user" or "model".
type HistoryTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// ToHistory maps a thread path to generation history.
func ToHistory(msgs []Message) []HistoryTurn {
	history := make([]HistoryTurn, 0, len(msgs))
	for _, m := range msgs {
		role := "model"
		if m.Role == RoleUser {
			role = "user"
		}
		history = append(history, HistoryTurn{Role: role, Text: m.Text})
	}
	return history
}
