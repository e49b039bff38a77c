package stores

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormKV is the KVStore body shared by the SQL dialects.
type gormKV struct {
	db *gorm.DB
}

func (s *gormKV) migrate() error {
	if err := s.db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}

func (s *gormKV) Load(key string) (string, bool, error) {
	if s.db == nil {
		return "", false, fmt.Errorf("database connection is nil")
	}
	var entries []Entry
	// Find instead of First so a missing key is not logged as an error.
	if err := s.db.Where("entry_key = ?", key).Limit(1).Find(&entries).Error; err != nil {
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if len(entries) == 0 {
		return "", false, nil
	}
	return entries[0].Value, true, nil
}

func (s *gormKV) Save(key, value string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *gormKV) Delete(key string) error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := s.db.Where("entry_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *gormKV) Clear() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := s.db.Where("1 = 1").Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *gormKV) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (s *gormKV) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
