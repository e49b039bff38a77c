package stores

import (
	"encoding/json"
	"fmt"

	"github.com/Desarso/companion/models"
)

// Keys kept compatible with the browser application's local storage.
const (
	KeyConfig   = "anya_config"
	KeyMessages = "anya_messages"
	KeyActiveID = "anya_active_id"
	KeySessions = "anya_sessions"
	KeyHistory  = "anya_history"
)

// Snapshot is everything persisted for one companion.
type Snapshot struct {
	Config      models.AgentConfig
	HasConfig   bool
	Messages    []models.Message
	ActiveID    string
	Sessions    []models.ChatSession
	CallHistory []models.CallHistory
}

// State is the typed view over a KVStore.
type State struct {
	kv KVStore
}

func NewState(kv KVStore) *State {
	return &State{kv: kv}
}

// Load reads every key once. Missing keys leave zero values.
func (s *State) Load() (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.HasConfig, err = loadJSON(s.kv, KeyConfig, &snap.Config); err != nil {
		return Snapshot{}, err
	}
	if _, err = loadJSON(s.kv, KeyMessages, &snap.Messages); err != nil {
		return Snapshot{}, err
	}
	if snap.ActiveID, _, err = s.kv.Load(KeyActiveID); err != nil {
		return Snapshot{}, fmt.Errorf("failed to load active id: %w", err)
	}
	if _, err = loadJSON(s.kv, KeySessions, &snap.Sessions); err != nil {
		return Snapshot{}, err
	}
	if _, err = loadJSON(s.kv, KeyHistory, &snap.CallHistory); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *State) SaveConfig(cfg models.AgentConfig) error {
	return saveJSON(s.kv, KeyConfig, cfg)
}

func (s *State) SaveMessages(msgs []models.Message) error {
	if msgs == nil {
		msgs = []models.Message{}
	}
	return saveJSON(s.kv, KeyMessages, msgs)
}

// SaveActiveID stores the raw id; an empty string means no active message.
func (s *State) SaveActiveID(id string) error {
	if err := s.kv.Save(KeyActiveID, id); err != nil {
		return fmt.Errorf("failed to save active id: %w", err)
	}
	return nil
}

func (s *State) SaveSessions(sessions []models.ChatSession) error {
	if sessions == nil {
		sessions = []models.ChatSession{}
	}
	return saveJSON(s.kv, KeySessions, sessions)
}

func (s *State) SaveCallHistory(calls []models.CallHistory) error {
	if calls == nil {
		calls = []models.CallHistory{}
	}
	return saveJSON(s.kv, KeyHistory, calls)
}

// ClearConversations drops the live thread and the archive.
func (s *State) ClearConversations() error {
	for _, key := range []string{KeyMessages, KeyActiveID, KeySessions} {
		if err := s.kv.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *State) ClearCallHistory() error {
	return s.kv.Delete(KeyHistory)
}

// Reset wipes everything.
func (s *State) Reset() error {
	return s.kv.Clear()
}

func loadJSON(kv KVStore, key string, v any) (bool, error) {
	raw, ok, err := kv.Load(key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(kv KVStore, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return kv.Save(key, string(b))
}
