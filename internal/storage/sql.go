package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRow is one key/value pair in the slots table
type slotRow struct {
	Key       string    `gorm:"column:slot_key;primaryKey;type:varchar(128)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (slotRow) TableName() string { return "slots" }

// SQL stores slots in a relational table through gorm.
type SQL struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database file for slots
func OpenSQLite(path string) (*SQL, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Exec("PRAGMA busy_timeout=5000").Error; err != nil {
		return nil, fmt.Errorf("failed to apply pragma: %w", err)
	}

	return NewSQL(db)
}

// NewSQL migrates the slots table on db
func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&slotRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate slots table: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Get(key string) (string, error) {
	var row slotRow
	err := s.db.Where("slot_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read slot: %w", err)
	}
	return row.Value, nil
}

func (s *SQL) Set(key, value string) error {
	row := slotRow{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

func (s *SQL) Remove(key string) error {
	if err := s.db.Where("slot_key = ?", key).Delete(&slotRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	return nil
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
