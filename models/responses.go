package models

// MessageView is a message on the active path plus what the UI may do with it.
type MessageView struct {
	Message
	SiblingIndex  int    `json:"siblingIndex"`
	SiblingCount  int    `json:"siblingCount"`
	PrevSiblingID string `json:"prevSiblingId,omitempty"`
	NextSiblingID string `json:"nextSiblingId,omitempty"`
	CanEdit       bool   `json:"canEdit"`
	CanRegenerate bool   `json:"canRegenerate"`
	HasImage      bool   `json:"hasImage"`
	HasAudio      bool   `json:"hasAudio"`
}

// ThreadView is the whole contract the presentation layer needs.
type ThreadView struct {
	ActiveMessageID string        `json:"activeMessageId,omitempty"`
	Messages        []MessageView `json:"messages"`
	State           string        `json:"state"`
	Typing          bool          `json:"typing"`
}

type Turn_Response struct {
	State        string   `json:"state"`
	UserMessage  *Message `json:"user_message,omitempty"`
	AgentMessage *Message `json:"agent_message,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// SessionSummary lists an archived session without its message store.
type SessionSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	MessageCount int    `json:"messageCount"`
	Timestamp    int64  `json:"timestamp"`
}

// Event is pushed to live UI connections.
type Event struct {
	Type      string   `json:"type"`
	State     string   `json:"state,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	Message   *Message `json:"message,omitempty"`
	Audio     string   `json:"audio,omitempty"`
}

const (
	EventMessageAppended = "message_appended"
	EventActiveChanged   = "active_changed"
	EventStateChanged    = "state_changed"
	EventAudioReady      = "audio_ready"
	EventThreadReplaced  = "thread_replaced"
)
