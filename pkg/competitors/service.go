// Package competitors tracks competitor brands and the ads spotted in their
// libraries.
package competitors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"gorm.io/gorm"
)

// CreateCompetitorRequest represents a request to track a competitor.
type CreateCompetitorRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Website string `json:"website" validate:"omitempty,url,max=1024"`
	Notes   string `json:"notes" validate:"max=20000"`
}

// UpdateCompetitorRequest is a partial update; nil fields are left unchanged.
type UpdateCompetitorRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Website *string `json:"website,omitempty" validate:"omitempty,url,max=1024"`
	Notes   *string `json:"notes,omitempty" validate:"omitempty,max=20000"`
}

// CreateAdRequest records an ad seen in a competitor's library.
type CreateAdRequest struct {
	Title       string     `json:"title" validate:"max=255"`
	MediaURL    string     `json:"media_url" validate:"max=1024"`
	MediaType   string     `json:"media_type"`
	Angle       string     `json:"angle"`
	Format      string     `json:"format"`
	Hook        string     `json:"hook" validate:"max=5000"`
	Notes       string     `json:"notes" validate:"max=20000"`
	FirstSeenAt *time.Time `json:"first_seen_at,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

// AdFilter narrows ListAds. Empty fields do not filter.
type AdFilter struct {
	CompetitorID string `query:"competitor_id"`
	Angle        string `query:"angle"`
	Format       string `query:"format"`
	ActiveOnly   bool   `query:"active_only"`
}

// Service handles competitor operations.
type Service struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewService creates a new competitor service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, validator: validator.New()}
}

func (s *Service) validate(v any) error {
	if err := s.validator.Struct(v); err != nil {
		return domain.ValidationFromStruct(err)
	}
	return nil
}

func checkEnum[T ~string](field, value string, allowed []T) error {
	if value == "" || models.OneOf(T(value), allowed) {
		return nil
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return domain.NewValidationError(fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", ")))
}

func newestAds(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC, id ASC")
}

// List returns every competitor by name with its ads.
func (s *Service) List(ctx context.Context) ([]models.Competitor, error) {
	out := []models.Competitor{}
	if err := s.db.WithContext(ctx).Preload("Ads", newestAds).Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list competitors: %w", err)
	}
	return out, nil
}

// Get returns a competitor with its ads, newest first.
func (s *Service) Get(ctx context.Context, id string) (*models.Competitor, error) {
	var c models.Competitor
	err := s.db.WithContext(ctx).Preload("Ads", newestAds).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("competitor")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competitor: %w", err)
	}
	return &c, nil
}

// Create stores a new competitor.
func (s *Service) Create(ctx context.Context, req CreateCompetitorRequest) (*models.Competitor, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	c := &models.Competitor{Name: req.Name, Website: req.Website, Notes: req.Notes}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create competitor: %w", err)
	}
	return c, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, req UpdateCompetitorRequest) (*models.Competitor, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	cols := map[string]any{}
	if req.Name != nil {
		cols["name"] = *req.Name
	}
	if req.Website != nil {
		cols["website"] = *req.Website
	}
	if req.Notes != nil {
		cols["notes"] = *req.Notes
	}

	if len(cols) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Competitor{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update competitor: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, domain.NewNotFoundError("competitor")
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a competitor and its ads. Ads of ours inspired by them keep
// existing but lose the link.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		spotted := tx.Model(&models.CompetitorAd{}).Select("id").Where("competitor_id = ?", id)
		if err := tx.Model(&models.Ad{}).Where("competitor_ad_id IN (?)", spotted).Update("competitor_ad_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach ads: %w", err)
		}
		if err := tx.Where("competitor_id = ?", id).Delete(&models.CompetitorAd{}).Error; err != nil {
			return fmt.Errorf("failed to delete competitor ads: %w", err)
		}
		res := tx.Delete(&models.Competitor{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete competitor: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("competitor")
		}
		return nil
	})
}

// AddAd records an ad seen in a competitor's library. IsActive defaults to true.
func (s *Service) AddAd(ctx context.Context, competitorID string, req CreateAdRequest) (*models.CompetitorAd, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	for _, err := range []error{
		checkEnum("media_type", req.MediaType, models.MediaTypes),
		checkEnum("angle", req.Angle, models.Angles),
		checkEnum("format", req.Format, models.Formats),
	} {
		if err != nil {
			return nil, err
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	ad := &models.CompetitorAd{
		CompetitorID: competitorID,
		Title:        strings.TrimSpace(req.Title),
		MediaURL:     req.MediaURL,
		MediaType:    models.MediaType(req.MediaType),
		Angle:        models.Angle(req.Angle),
		Format:       models.Format(req.Format),
		Hook:         req.Hook,
		Notes:        req.Notes,
		FirstSeenAt:  req.FirstSeenAt,
		IsActive:     active,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Competitor{}).Where("id = ?", competitorID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check competitor: %w", err)
		}
		if n == 0 {
			return domain.NewNotFoundError("competitor")
		}
		if err := tx.Create(ad).Error; err != nil {
			return fmt.Errorf("failed to create competitor ad: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ad, nil
}

// ListAds returns competitor ads newest first.
func (s *Service) ListAds(ctx context.Context, f AdFilter) ([]models.CompetitorAd, error) {
	if err := checkEnum("angle", f.Angle, models.Angles); err != nil {
		return nil, err
	}
	if err := checkEnum("format", f.Format, models.Formats); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.CompetitorAd{})
	if f.CompetitorID != "" {
		q = q.Where("competitor_id = ?", f.CompetitorID)
	}
	if f.Angle != "" {
		q = q.Where("angle = ?", f.Angle)
	}
	if f.Format != "" {
		q = q.Where("format = ?", f.Format)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	out := []models.CompetitorAd{}
	if err := newestAds(q).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list competitor ads: %w", err)
	}
	return out, nil
}

// DeleteAd removes one competitor ad and unlinks ads it inspired.
func (s *Service) DeleteAd(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Ad{}).Where("competitor_ad_id = ?", id).Update("competitor_ad_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach ads: %w", err)
		}
		res := tx.Delete(&models.CompetitorAd{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete competitor ad: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("competitor ad")
		}
		return nil
	})
}
