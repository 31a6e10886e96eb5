package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"gorm.io/gorm"
)

// Angle is the persuasive theme of a creative.
type Angle string

const (
	AngleFear        Angle = "fear"
	AngleDesire      Angle = "desire"
	AngleCuriosity   Angle = "curiosity"
	AngleOffer       Angle = "offer"
	AngleTutorial    Angle = "tutorial"
	AngleTestimonial Angle = "testimonial"
)

// Angles lists every angle.
var Angles = []Angle{AngleFear, AngleDesire, AngleCuriosity, AngleOffer, AngleTutorial, AngleTestimonial}

// Format is the media format of a creative.
type Format string

const (
	FormatImage    Format = "image"
	FormatVideo    Format = "video"
	FormatUGC      Format = "ugc"
	FormatCarousel Format = "carousel"
)

// Formats lists every format.
var Formats = []Format{FormatImage, FormatVideo, FormatUGC, FormatCarousel}

// FunnelStage is where in the funnel a creative is aimed.
type FunnelStage string

const (
	FunnelTOF FunnelStage = "tof"
	FunnelMOF FunnelStage = "mof"
	FunnelBOF FunnelStage = "bof"
)

// FunnelStages lists every funnel stage.
var FunnelStages = []FunnelStage{FunnelTOF, FunnelMOF, FunnelBOF}

// SourceType records where the idea came from.
type SourceType string

const (
	SourceOriginal   SourceType = "original"
	SourceCompetitor SourceType = "competitor"
	SourceIteration  SourceType = "iteration"
)

// SourceTypes lists every source type.
var SourceTypes = []SourceType{SourceOriginal, SourceCompetitor, SourceIteration}

// AdResult is the final verdict on a completed ad.
type AdResult string

const (
	ResultWinner AdResult = "winner"
	ResultLoser  AdResult = "loser"
)

// AdResults lists every result.
var AdResults = []AdResult{ResultWinner, ResultLoser}

// OneOf reports whether v is in allowed.
func OneOf[T ~string](v T, allowed []T) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// TagKind separates the two tag sets stored in ad_tags.
type TagKind string

const (
	TagFailReason    TagKind = "fail_reason"
	TagSuccessFactor TagKind = "success_factor"
)

// FailReasons are the allowed fail_reason tag values.
var FailReasons = []string{
	"weak_hook", "wrong_avatar", "unclear_script", "weak_cta",
	"low_quality_visual", "bad_audio", "wrong_offer", "audience_fatigue", "landing_page",
}

// SuccessFactors are the allowed success_factor tag values.
var SuccessFactors = []string{
	"strong_hook", "right_avatar", "clear_script", "compelling_cta",
	"high_quality_visual", "good_audio", "strong_offer", "social_proof", "novelty",
}

// ElementEvaluation is the verdict and note on one creative element.
type ElementEvaluation struct {
	Result *adlifecycle.ElementResult `gorm:"size:8" json:"result"`
	Note   string                     `gorm:"type:text" json:"note,omitempty"`
}

// ElementEvaluations groups the six element verdicts recorded at analysis.
type ElementEvaluations struct {
	Hook   ElementEvaluation `gorm:"embedded;embeddedPrefix:hook_" json:"hook"`
	Avatar ElementEvaluation `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	Script ElementEvaluation `gorm:"embedded;embeddedPrefix:script_" json:"script"`
	CTA    ElementEvaluation `gorm:"embedded;embeddedPrefix:cta_" json:"cta"`
	Visual ElementEvaluation `gorm:"embedded;embeddedPrefix:visual_" json:"visual"`
	Audio  ElementEvaluation `gorm:"embedded;embeddedPrefix:audio_" json:"audio"`
}

// Ad is a single advertising creative tracked through the pipeline.
type Ad struct {
	ID             string      `gorm:"primaryKey;size:36" json:"id"`
	Concept        string      `gorm:"type:text;not null" json:"concept"`
	Angle          Angle       `gorm:"size:32;index" json:"angle"`
	Format         Format      `gorm:"size:32;index" json:"format"`
	FunnelStage    FunnelStage `gorm:"size:8;index" json:"funnel_stage"`
	SourceType     SourceType  `gorm:"size:32" json:"source_type"`
	AvatarID       *string     `gorm:"size:36;index" json:"avatar_id,omitempty"`
	CompetitorAdID *string     `gorm:"size:36" json:"competitor_ad_id,omitempty"`

	Hypothesis string `gorm:"type:text" json:"hypothesis"`
	Hook       string `gorm:"type:text" json:"hook"`
	Script     string `gorm:"type:text" json:"script"`
	CTA        string `gorm:"column:cta;type:text" json:"cta"`
	Notes      string `gorm:"type:text" json:"notes"`
	MediaURL   string `gorm:"size:1024" json:"media_url,omitempty"`

	Status           adlifecycle.Status `gorm:"size:16;not null;default:'idea';index" json:"status"`
	IsLocked         bool               `gorm:"not null;default:false" json:"is_locked"`
	ReviewDate       *time.Time         `gorm:"index" json:"review_date,omitempty"`
	TestingStartedAt *time.Time         `json:"testing_started_at,omitempty"`
	LockDays         int                `gorm:"not null;default:10" json:"lock_days"`
	DueDate          *time.Time         `gorm:"index" json:"due_date,omitempty"`

	Result      *AdResult          `gorm:"size:8;index" json:"result,omitempty"`
	Evaluations ElementEvaluations `gorm:"embedded" json:"evaluations"`
	Diagnosis   string             `gorm:"type:text" json:"diagnosis,omitempty"`
	ClosedAt    *time.Time         `json:"closed_at,omitempty"`

	Spend            *float64 `json:"spend,omitempty"`
	Impressions      *int64   `json:"impressions,omitempty"`
	Clicks           *int64   `json:"clicks,omitempty"`
	Purchases        *int64   `json:"purchases,omitempty"`
	Revenue          *float64 `json:"revenue,omitempty"`
	ThreeSecondViews *int64   `json:"three_second_views,omitempty"`
	ThruplayViews    *int64   `json:"thruplay_views,omitempty"`

	Tags []AdTag `gorm:"foreignKey:AdID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Ad) TableName() string { return "ads" }

// BeforeCreate assigns an opaque id.
func (a *Ad) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Snapshot returns the fields the lifecycle rules look at.
func (a *Ad) Snapshot() adlifecycle.Snapshot {
	return adlifecycle.Snapshot{
		Status:     a.Status,
		IsLocked:   a.IsLocked,
		ReviewDate: a.ReviewDate,
		Hypothesis: a.Hypothesis,
		LockDays:   a.LockDays,
	}
}

// TagValues returns the tag values of kind in insertion order.
func (a *Ad) TagValues(kind TagKind) []string {
	values := []string{}
	for _, t := range a.Tags {
		if t.Kind == kind {
			values = append(values, t.Value)
		}
	}
	return values
}

// AdTag is one fail reason or success factor attached to an ad.
type AdTag struct {
	ID    uint    `gorm:"primaryKey" json:"-"`
	AdID  string  `gorm:"size:36;not null;uniqueIndex:idx_ad_tag" json:"ad_id"`
	Kind  TagKind `gorm:"size:16;not null;uniqueIndex:idx_ad_tag;index:idx_tag_lookup" json:"kind"`
	Value string  `gorm:"size:64;not null;uniqueIndex:idx_ad_tag;index:idx_tag_lookup" json:"value"`
}

// TableName overrides the table name
func (AdTag) TableName() string { return "ad_tags" }
