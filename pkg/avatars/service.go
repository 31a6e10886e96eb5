// Package avatars manages audience personas, their sub-segments and the
// research notes collected about them.
package avatars

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"gorm.io/gorm"
)

// CreateAvatarRequest represents a request to create an avatar.
type CreateAvatarRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Description  string `json:"description" validate:"max=5000"`
	Demographics string `json:"demographics" validate:"max=5000"`
	PainPoints   string `json:"pain_points" validate:"max=5000"`
	Desires      string `json:"desires" validate:"max=5000"`
	Objections   string `json:"objections" validate:"max=5000"`
}

// UpdateAvatarRequest is a partial update; nil fields are left unchanged.
type UpdateAvatarRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Demographics *string `json:"demographics,omitempty" validate:"omitempty,max=5000"`
	PainPoints   *string `json:"pain_points,omitempty" validate:"omitempty,max=5000"`
	Desires      *string `json:"desires,omitempty" validate:"omitempty,max=5000"`
	Objections   *string `json:"objections,omitempty" validate:"omitempty,max=5000"`
}

func (r UpdateAvatarRequest) columns() map[string]any {
	cols := map[string]any{}
	for col, v := range map[string]*string{
		"name":         r.Name,
		"description":  r.Description,
		"demographics": r.Demographics,
		"pain_points":  r.PainPoints,
		"desires":      r.Desires,
		"objections":   r.Objections,
	} {
		if v != nil {
			cols[col] = *v
		}
	}
	return cols
}

// CreateSubAvatarRequest represents a request to add a sub-avatar.
type CreateSubAvatarRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// ResearchItemInput is one research note in a batch.
type ResearchItemInput struct {
	Kind    string `json:"kind" validate:"required"`
	Content string `json:"content" validate:"required,max=10000"`
	Source  string `json:"source" validate:"max=1024"`
}

// AddResearchRequest adds research notes to an avatar in one transaction.
type AddResearchRequest struct {
	Items []ResearchItemInput `json:"items" validate:"required,min=1,max=100,dive"`
}

// Service handles avatar operations.
type Service struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewService creates a new avatar service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, validator: validator.New()}
}

func (s *Service) validate(v any) error {
	if err := s.validator.Struct(v); err != nil {
		return domain.ValidationFromStruct(err)
	}
	return nil
}

func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFoundError(resource)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}

// List returns every avatar by name with its sub-avatars.
func (s *Service) List(ctx context.Context) ([]models.Avatar, error) {
	out := []models.Avatar{}
	err := s.db.WithContext(ctx).
		Preload("SubAvatars", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list avatars: %w", err)
	}
	return out, nil
}

// Get returns an avatar with its sub-avatars and research, newest research first.
func (s *Service) Get(ctx context.Context, id string) (*models.Avatar, error) {
	var a models.Avatar
	err := s.db.WithContext(ctx).
		Preload("SubAvatars", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Research", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id ASC") }).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "avatar")
	}
	return &a, nil
}

// Create stores a new avatar.
func (s *Service) Create(ctx context.Context, req CreateAvatarRequest) (*models.Avatar, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	a := &models.Avatar{
		Name:         req.Name,
		Description:  req.Description,
		Demographics: req.Demographics,
		PainPoints:   req.PainPoints,
		Desires:      req.Desires,
		Objections:   req.Objections,
	}
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, fmt.Errorf("failed to create avatar: %w", err)
	}
	return a, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id string, req UpdateAvatarRequest) (*models.Avatar, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	cols := req.columns()
	if len(cols) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Avatar{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update avatar: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, domain.NewNotFoundError("avatar")
		}
	}
	return s.Get(ctx, id)
}

// Delete removes an avatar with its sub-avatars and research, and detaches
// ads that targeted it.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("avatar_id = ?", id).Delete(&models.SubAvatar{}).Error; err != nil {
			return fmt.Errorf("failed to delete sub-avatars: %w", err)
		}
		if err := tx.Where("avatar_id = ?", id).Delete(&models.ResearchItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete research: %w", err)
		}
		if err := tx.Model(&models.Ad{}).Where("avatar_id = ?", id).Update("avatar_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach ads: %w", err)
		}
		res := tx.Delete(&models.Avatar{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete avatar: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("avatar")
		}
		return nil
	})
}

func exists(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&models.Avatar{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check avatar: %w", err)
	}
	if n == 0 {
		return domain.NewNotFoundError("avatar")
	}
	return nil
}

// AddSubAvatar adds a sub-avatar to an avatar.
func (s *Service) AddSubAvatar(ctx context.Context, avatarID string, req CreateSubAvatarRequest) (*models.SubAvatar, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate(req); err != nil {
		return nil, err
	}

	sub := &models.SubAvatar{AvatarID: avatarID, Name: req.Name, Description: req.Description}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, avatarID); err != nil {
			return err
		}
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("failed to create sub-avatar: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// AddResearch stores a batch of research notes. Either every item is
// stored or none is.
func (s *Service) AddResearch(ctx context.Context, avatarID string, req AddResearchRequest) ([]models.ResearchItem, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	items := make([]models.ResearchItem, len(req.Items))
	for i, in := range req.Items {
		kind := models.ResearchKind(strings.ToLower(strings.TrimSpace(in.Kind)))
		if !models.OneOf(kind, models.ResearchKinds) {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].kind %q is not a research kind", i, in.Kind))
		}
		content := strings.TrimSpace(in.Content)
		if content == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].content is required", i))
		}
		items[i] = models.ResearchItem{
			AvatarID: avatarID,
			Kind:     kind,
			Content:  content,
			Source:   strings.TrimSpace(in.Source),
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, avatarID); err != nil {
			return err
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create research items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteResearchItem removes one research note of an avatar.
func (s *Service) DeleteResearchItem(ctx context.Context, avatarID, itemID string) error {
	res := s.db.WithContext(ctx).Delete(&models.ResearchItem{}, "id = ? AND avatar_id = ?", itemID, avatarID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete research item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("research item")
	}
	return nil
}
