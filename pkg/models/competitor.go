package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaType is the kind of media a competitor ad uses.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// MediaTypes lists every media type.
var MediaTypes = []MediaType{MediaImage, MediaVideo}

// Competitor is a brand whose ads are tracked for inspiration.
type Competitor struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Website   string         `gorm:"size:1024" json:"website,omitempty"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	Ads       []CompetitorAd `gorm:"foreignKey:CompetitorID;constraint:OnDelete:CASCADE" json:"ads,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName overrides the table name
func (Competitor) TableName() string { return "competitors" }

// BeforeCreate assigns an opaque id.
func (c *Competitor) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CompetitorAd is one ad spotted in a competitor's library.
type CompetitorAd struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	CompetitorID string     `gorm:"size:36;not null;index" json:"competitor_id"`
	Title        string     `gorm:"size:255" json:"title"`
	MediaURL     string     `gorm:"size:1024" json:"media_url,omitempty"`
	MediaType    MediaType  `gorm:"size:16" json:"media_type,omitempty"`
	Angle        Angle      `gorm:"size:32;index" json:"angle,omitempty"`
	Format       Format     `gorm:"size:32;index" json:"format,omitempty"`
	Hook         string     `gorm:"type:text" json:"hook,omitempty"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	FirstSeenAt  *time.Time `json:"first_seen_at,omitempty"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TableName overrides the table name
func (CompetitorAd) TableName() string { return "competitor_ads" }

// BeforeCreate assigns an opaque id.
func (c *CompetitorAd) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
