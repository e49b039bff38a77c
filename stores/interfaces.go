package stores

import (
	"time"
)

// Entry is one persisted value. Values are JSON documents or raw strings.
type Entry struct {
	Key       string `gorm:"primaryKey;column:entry_key"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// KVStore is the persistent key-value boundary the chat state is written to.
type KVStore interface {
	// Load reports ok=false for a missing key.
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
	Delete(key string) error
	// Clear removes every key.
	Clear() error

	// Connection management
	Connect() error
	Close() error

	// Health check
	Ping() error
}

// StoreConfig holds configuration for database stores
type StoreConfig struct {
	Type       string            `json:"type"`       // "sqlite", "postgres", "memory"
	Connection string            `json:"connection"` // file path or DSN
	Options    map[string]string `json:"options"`    // additional options
}

// NewStoreConfig creates a new store configuration
func NewStoreConfig(storeType, connection string) *StoreConfig {
	return &StoreConfig{
		Type:       storeType,
		Connection: connection,
		Options:    make(map[string]string),
	}
}

// WithOption adds an option to the store configuration
func (c *StoreConfig) WithOption(key, value string) *StoreConfig {
	c.Options[key] = value
	return c
}
