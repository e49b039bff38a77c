package sessions

import (
	"strings"
	"time"

	"github.com/Desarso/companion/models"
)

// NewConversation archives the current thread and starts an empty one.
func (c *Chat) NewConversation() (models.ChatSession, bool, error) {
	if err := c.beginTurn(); err != nil {
		return models.ChatSession{}, false, err
	}
	defer c.endTurn()

	session, archived := c.archive.Archive(c.thread.Messages(), c.thread.ActiveID())
	c.thread.Reset()
	c.persistThread()
	if archived {
		c.persistSessions()
		c.logger.Printf("archived session %s (%q)", session.ID, session.Title)
	}
	c.events.Publish(models.Event{Type: models.EventThreadReplaced})
	return session, archived, nil
}

// LoadSession swaps the current thread for an archived one. The current
// thread is archived first.
func (c *Chat) LoadSession(id string) (models.ChatSession, error) {
	if err := c.beginTurn(); err != nil {
		return models.ChatSession{}, err
	}
	defer c.endTurn()

	session, err := c.archive.Restore(id, c.thread.Messages(), c.thread.ActiveID())
	if err != nil {
		return models.ChatSession{}, err
	}
	c.thread.Replace(session.Messages, session.ActiveMessageID)
	c.persistThread()
	c.persistSessions()
	c.events.Publish(models.Event{Type: models.EventThreadReplaced, MessageID: c.thread.ActiveID()})
	return session, nil
}

func (c *Chat) DeleteSession(id string) error {
	if err := c.archive.Remove(id); err != nil {
		return err
	}
	c.persistSessions()
	return nil
}

func (c *Chat) Sessions() []models.SessionSummary {
	return c.archive.Summaries()
}

func (c *Chat) Session(id string) (models.ChatSession, error) {
	return c.archive.Get(id)
}

// ClearAll drops the live thread and every archived session without archiving.
func (c *Chat) ClearAll() error {
	if err := c.beginTurn(); err != nil {
		return err
	}
	defer c.endTurn()

	c.thread.Reset()
	c.archive.Clear()
	c.persistMu.Lock()
	err := c.state.ClearConversations()
	c.persistMu.Unlock()
	c.events.Publish(models.Event{Type: models.EventThreadReplaced})
	return err
}

// PruneSessions drops archived sessions older than maxAge.
func (c *Chat) PruneSessions(maxAge time.Duration) int {
	n := c.archive.Prune(maxAge, time.Now())
	if n > 0 {
		c.persistSessions()
		c.logger.Printf("[RETENTION] pruned %d archived sessions", n)
	}
	return n
}

func (c *Chat) Config() models.AgentConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

func (c *Chat) UpdateConfig(cfg models.AgentConfig) (models.AgentConfig, error) {
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		return models.AgentConfig{}, ErrInvalidConfig
	}
	if cfg.Voice == "" {
		cfg.Voice = models.DefaultAgentConfig().Voice
	}
	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()
	c.persistConfig(cfg)
	return cfg, nil
}

func (c *Chat) StartCall() error {
	return c.calls.Start()
}

// EndCall stops the running call. duration overrides the measured one when
// set. ok is false when the call was too short to record.
func (c *Chat) EndCall(duration string) (models.CallHistory, bool, error) {
	var (
		call models.CallHistory
		ok   bool
		err  error
	)
	if duration != "" {
		call, ok, err = c.calls.EndWithDuration(duration)
	} else {
		call, ok, err = c.calls.End()
	}
	if err != nil {
		return models.CallHistory{}, false, err
	}
	if ok {
		c.persistCalls()
	}
	return call, ok, nil
}

func (c *Chat) CallHistory() []models.CallHistory {
	return c.calls.History()
}

func (c *Chat) DeleteCall(id string) error {
	if err := c.calls.Delete(id); err != nil {
		return err
	}
	c.persistCalls()
	return nil
}

func (c *Chat) ClearCalls() error {
	c.calls.Clear()
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	return c.state.ClearCallHistory()
}

// Reset wipes the persisted store and returns to the default persona.
func (c *Chat) Reset() error {
	if err := c.beginTurn(); err != nil {
		return err
	}
	defer c.endTurn()

	c.persistMu.Lock()
	err := c.state.Reset()
	c.persistMu.Unlock()
	if err != nil {
		return err
	}
	c.thread.Reset()
	c.archive.Clear()
	c.calls.Clear()
	c.mu.Lock()
	c.config = models.DefaultAgentConfig()
	c.turnState = StateIdle
	c.mu.Unlock()
	c.events.Publish(models.Event{Type: models.EventThreadReplaced})
	return nil
}
