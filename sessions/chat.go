// Package sessions drives one companion chat: the branching thread, its
// archive, call history, and the response pipeline that fills the thread.
package sessions

import (
	"log"
	"sync"

	"github.com/Desarso/companion/archive"
	"github.com/Desarso/companion/calls"
	"github.com/Desarso/companion/gateway"
	"github.com/Desarso/companion/models"
	"github.com/Desarso/companion/phrases"
	"github.com/Desarso/companion/stores"
	"github.com/Desarso/companion/thread"
)

// Chat is safe for concurrent use. Only one turn runs at a time.
type Chat struct {
	backend gateway.Backend
	state   *stores.State
	thread  *thread.Thread
	archive *archive.Archive
	calls   *calls.Tracker

	imageFailures *phrases.Pool
	quotaFailures *phrases.Pool
	events        EventPublisher
	logger        *log.Logger

	mu        sync.Mutex // guards config, turnState, busy
	config    models.AgentConfig
	turnState State
	busy      bool

	persistMu sync.Mutex
	speech    sync.WaitGroup
}

func (c *Chat) Thread() *thread.Thread {
	return c.thread
}

func (c *Chat) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turnState
}

func (c *Chat) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Wait blocks until every detached speech request has finished.
func (c *Chat) Wait() {
	c.speech.Wait()
}

func (c *Chat) beginTurn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrTurnInProgress
	}
	c.busy = true
	return nil
}

func (c *Chat) endTurn() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	c.publishState()
}

func (c *Chat) setState(s State) {
	c.mu.Lock()
	c.turnState = s
	c.mu.Unlock()
	c.publishState()
}

func (c *Chat) publishState() {
	c.events.Publish(models.Event{Type: models.EventStateChanged, State: string(c.State())})
}

// persistThread writes the message store and active pointer as one snapshot.
func (c *Chat) persistThread() {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if err := c.state.SaveMessages(c.thread.Messages()); err != nil {
		c.logger.Printf("[STORE] %v", err)
	}
	if err := c.state.SaveActiveID(c.thread.ActiveID()); err != nil {
		c.logger.Printf("[STORE] %v", err)
	}
}

func (c *Chat) persistSessions() {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if err := c.state.SaveSessions(c.archive.List()); err != nil {
		c.logger.Printf("[STORE] %v", err)
	}
}

func (c *Chat) persistCalls() {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if err := c.state.SaveCallHistory(c.calls.History()); err != nil {
		c.logger.Printf("[STORE] %v", err)
	}
}

func (c *Chat) persistConfig(cfg models.AgentConfig) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if err := c.state.SaveConfig(cfg); err != nil {
		c.logger.Printf("[STORE] %v", err)
	}
}
