package sessions

import (
	"fmt"
	"log"
	"os"

	"github.com/Desarso/companion/archive"
	"github.com/Desarso/companion/calls"
	"github.com/Desarso/companion/gateway"
	"github.com/Desarso/companion/models"
	"github.com/Desarso/companion/phrases"
	"github.com/Desarso/companion/stores"
	"github.com/Desarso/companion/thread"
)

// NewChat restores a chat from persisted state. A missing config falls back
// to the default persona.
func NewChat(backend gateway.Backend, state *stores.State) (*Chat, error) {
	snap, err := state.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load chat state: %w", err)
	}
	cfg := snap.Config
	if !snap.HasConfig {
		cfg = models.DefaultAgentConfig()
	}
	return &Chat{
		backend:       backend,
		state:         state,
		thread:        thread.Load(snap.Messages, snap.ActiveID),
		archive:       archive.New(snap.Sessions),
		calls:         calls.NewTracker(snap.CallHistory),
		config:        cfg,
		turnState:     StateIdle,
		imageFailures: phrases.ImageFailure(),
		quotaFailures: phrases.QuotaFailure(),
		events:        noopPublisher{},
		logger:        log.New(os.Stdout, "[CHAT] ", log.LstdFlags),
	}, nil
}

// NewMemoryChat is NewChat over a throwaway in-memory store.
func NewMemoryChat(backend gateway.Backend) *Chat {
	c, err := NewChat(backend, stores.NewState(stores.NewMemoryStore()))
	if err != nil {
		// an empty memory store always loads
		panic(err)
	}
	return c
}

func (c *Chat) WithPhrases(imageFailures, quotaFailures *phrases.Pool) *Chat {
	c.imageFailures = imageFailures
	c.quotaFailures = quotaFailures
	return c
}

func (c *Chat) WithPublisher(p EventPublisher) *Chat {
	if p == nil {
		p = noopPublisher{}
	}
	c.events = p
	return c
}

func (c *Chat) WithLogger(l *log.Logger) *Chat {
	c.logger = l
	return c
}
