package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Slot is one row of the kv_slots table.
type Slot struct {
	Key       string    `gorm:"column:slot_key;primaryKey;size:191"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName implements gorm's tabler interface.
func (Slot) TableName() string {
	return "kv_slots"
}

// SQLBackend stores values in the kv_slots table through GORM. The schema is
// created by the migrations under database/migrations, or by AutoMigrate in
// tests.
type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend creates a backend on an open GORM connection.
func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

// Get loads the row for key.
func (b *SQLBackend) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}

	var slot Slot
	err = b.db.WithContext(ctx).Where("slot_key = ?", key).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return slot.Value, nil
}

// Put upserts the row for key in a single statement.
func (b *SQLBackend) Put(ctx context.Context, key string, value []byte) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}

	slot := Slot{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err = b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slot_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

// Delete removes the row for key.
func (b *SQLBackend) Delete(ctx context.Context, key string) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}

	result := b.db.WithContext(ctx).Where("slot_key = ?", key).Delete(&Slot{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete slot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}
