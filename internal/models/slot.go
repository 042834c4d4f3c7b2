package models

import (
	"time"

	"gorm.io/datatypes"
)

// Slot stores one keyed JSON document for one owner.
type Slot struct {
	Owner     string         `gorm:"type:varchar(255);primaryKey"`                      // Identity that owns the slot.
	Key       string         `gorm:"type:varchar(255);primaryKey"`                      // Slot key.
	Value     datatypes.JSON `gorm:"type:jsonb"`                                        // Raw JSON text.
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime;default:CURRENT_TIMESTAMP"` // Last write timestamp.
}
