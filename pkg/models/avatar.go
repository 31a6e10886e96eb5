package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResearchKind classifies a research note attached to an avatar.
type ResearchKind string

const (
	ResearchQuote     ResearchKind = "quote"
	ResearchPain      ResearchKind = "pain"
	ResearchDesire    ResearchKind = "desire"
	ResearchObjection ResearchKind = "objection"
	ResearchInsight   ResearchKind = "insight"
)

// ResearchKinds lists every research kind.
var ResearchKinds = []ResearchKind{ResearchQuote, ResearchPain, ResearchDesire, ResearchObjection, ResearchInsight}

// Avatar is an audience persona.
type Avatar struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Demographics string         `gorm:"type:text" json:"demographics"`
	PainPoints   string         `gorm:"type:text" json:"pain_points"`
	Desires      string         `gorm:"type:text" json:"desires"`
	Objections   string         `gorm:"type:text" json:"objections"`
	SubAvatars   []SubAvatar    `gorm:"foreignKey:AvatarID;constraint:OnDelete:CASCADE" json:"sub_avatars,omitempty"`
	Research     []ResearchItem `gorm:"foreignKey:AvatarID;constraint:OnDelete:CASCADE" json:"research,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName overrides the table name
func (Avatar) TableName() string { return "avatars" }

// BeforeCreate assigns an opaque id.
func (a *Avatar) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// SubAvatar is a narrower segment of an avatar.
type SubAvatar struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AvatarID    string    `gorm:"size:36;not null;index" json:"avatar_id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides the table name
func (SubAvatar) TableName() string { return "sub_avatars" }

// BeforeCreate assigns an opaque id.
func (s *SubAvatar) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ResearchItem is a single research note about an avatar.
type ResearchItem struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	AvatarID  string       `gorm:"size:36;not null;index" json:"avatar_id"`
	Kind      ResearchKind `gorm:"size:16;not null;index" json:"kind"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	Source    string       `gorm:"size:1024" json:"source,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName overrides the table name
func (ResearchItem) TableName() string { return "research_items" }

// BeforeCreate assigns an opaque id.
func (r *ResearchItem) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
