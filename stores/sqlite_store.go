package stores

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteStore implements KVStore for SQLite databases
type SQLiteStore struct {
	gormKV
	path    string
	journal string
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(config *StoreConfig) (*SQLiteStore, error) {
	if config.Type != "sqlite" {
		return nil, fmt.Errorf("invalid store type for SQLite store: %s", config.Type)
	}

	store := &SQLiteStore{
		path:    config.Connection,
		journal: "WAL",
	}
	if mode, ok := config.Options["journal_mode"]; ok {
		store.journal = mode
	}

	if err := store.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	return store, nil
}

// NewSQLiteStoreSimple creates a new SQLite store with just a file path
func NewSQLiteStoreSimple(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStore(NewStoreConfig("sqlite", dbPath))
}

// Connect establishes a connection to the SQLite database
func (s *SQLiteStore) Connect() error {
	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	// in-memory databases reject WAL
	if s.path != ":memory:" && s.journal != "" {
		if err := db.Exec("PRAGMA journal_mode = " + s.journal).Error; err != nil {
			return fmt.Errorf("failed to set journal mode %s: %w", s.journal, err)
		}
	}
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	s.db = db
	return s.migrate()
}
