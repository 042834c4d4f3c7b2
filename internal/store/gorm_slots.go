package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/router-for-me/GraphQLTester/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSlots stores slots in the slots table.
type GormSlots struct {
	db *gorm.DB
}

// NewGormSlots constructs a GormSlots backed by conn.
func NewGormSlots(conn *gorm.DB) *GormSlots {
	return &GormSlots{db: conn}
}

// Load returns the stored text or ErrSlotNotFound.
func (s *GormSlots) Load(ctx context.Context, owner, key string) (string, error) {
	var row models.Slot
	errFind := s.db.WithContext(ctx).
		Where(slotCondition(owner, key)).
		First(&row).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return "", ErrSlotNotFound
		}
		return "", fmt.Errorf("store: load slot %s: %w", key, errFind)
	}
	return string(row.Value), nil
}

// Save upserts the slot value.
func (s *GormSlots) Save(ctx context.Context, owner, key, value string) error {
	row := models.Slot{
		Owner:     owner,
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}
	errCreate := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if errCreate != nil {
		return fmt.Errorf("store: save slot %s: %w", key, errCreate)
	}
	return nil
}

// Delete removes the slot; deleting a missing slot is not an error.
func (s *GormSlots) Delete(ctx context.Context, owner, key string) error {
	errDelete := s.db.WithContext(ctx).
		Where(slotCondition(owner, key)).
		Delete(&models.Slot{}).Error
	if errDelete != nil {
		return fmt.Errorf("store: delete slot %s: %w", key, errDelete)
	}
	return nil
}

// slotCondition matches one slot; a map keeps empty owners in the filter.
func slotCondition(owner, key string) map[string]any {
	return map[string]any{"owner": owner, "key": key}
}
