package learnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"gorm.io/gorm"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// ChangeHook runs after a learning was stored or removed.
type ChangeHook func(ctx context.Context)

// Service handles learning operations.
type Service struct {
	db    *gorm.DB
	now   func() time.Time
	hooks []ChangeHook
}

// NewService creates a new learning service.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to stamp new learnings.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// OnChange registers a hook that runs after Create or Delete succeeded.
func (s *Service) OnChange(hook ChangeHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *Service) changed(ctx context.Context) {
	for _, hook := range s.hooks {
		hook(ctx)
	}
}

// ListFilter narrows List. Empty fields do not filter.
type ListFilter struct {
	AdID   string `query:"ad_id"`
	Angle  string `query:"angle"`
	Format string `query:"format"`
	Result string `query:"result" validate:"omitempty,oneof=winner loser"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
}

// Create stores a learning.
func (s *Service) Create(ctx context.Context, l *models.Learning) error {
	if l.Content == "" {
		return domain.NewValidationError("learning content is required")
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("failed to create learning: %w", err)
	}
	s.changed(ctx)
	return nil
}

// Get retrieves a single learning by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Learning, error) {
	var l models.Learning
	err := s.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("learning")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learning: %w", err)
	}
	return &l, nil
}

// List returns learnings newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Learning, error) {
	q := s.db.WithContext(ctx).Model(&models.Learning{})
	if f.AdID != "" {
		q = q.Where("ad_id = ?", f.AdID)
	}
	if f.Angle != "" {
		q = q.Where("angle = ?", f.Angle)
	}
	if f.Format != "" {
		q = q.Where("format = ?", f.Format)
	}
	if f.Result != "" {
		q = q.Where("result = ?", f.Result)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	out := []models.Learning{}
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list learnings: %w", err)
	}
	return out, nil
}

// Recent returns the n newest learnings.
func (s *Service) Recent(ctx context.Context, n int) ([]models.Learning, error) {
	return s.List(ctx, ListFilter{Limit: n})
}

// Delete removes a learning.
func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Learning{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete learning: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("learning")
	}
	s.changed(ctx)
	return nil
}
