package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Learning is an append-only insight distilled from a completed ad.
// AdID is a plain column: deleting the ad leaves the learning in place.
type Learning struct {
	ID          string             `gorm:"primaryKey;size:36" json:"id"`
	AdID        string             `gorm:"size:36;index" json:"ad_id"`
	Content     string             `gorm:"type:text;not null" json:"content"`
	Angle       Angle              `gorm:"size:32;index" json:"angle"`
	Format      Format             `gorm:"size:32;index" json:"format"`
	Result      *AdResult          `gorm:"size:8;index" json:"result,omitempty"`
	Evaluations ElementEvaluations `gorm:"embedded" json:"evaluations"`
	CreatedAt   time.Time          `gorm:"index" json:"created_at"`
}

// TableName overrides the table name
func (Learning) TableName() string { return "learnings" }

// BeforeCreate assigns an opaque id.
func (l *Learning) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
