package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"gorm.io/gorm"
)

// DueSoonWindow is how far ahead the dashboard looks for due dates.
const DueSoonWindow = 3 * 24 * time.Hour

const recentLearnings = 5

// AdSummary is the compact form of an ad used by dashboard lists.
type AdSummary struct {
	ID            string             `json:"id"`
	Concept       string             `json:"concept"`
	Angle         models.Angle       `json:"angle"`
	Format        models.Format      `json:"format"`
	Status        adlifecycle.Status `json:"status"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	ReviewDate    *time.Time         `json:"review_date,omitempty"`
	DaysRemaining int                `json:"days_remaining"`
}

// Dashboard is the home page read-out.
type Dashboard struct {
	StatusCounts     map[adlifecycle.Status]int `json:"status_counts"`
	Overdue          []AdSummary                `json:"overdue"`
	DueSoon          []AdSummary                `json:"due_soon"`
	Testing          []AdSummary                `json:"testing"`
	AwaitingAnalysis []AdSummary                `json:"awaiting_analysis"`
	RecentLearnings  []models.Learning          `json:"recent_learnings"`
	HitRate          float64                    `json:"hit_rate"`
	GeneratedAt      time.Time                  `json:"generated_at"`
}

// Dashboard returns the dashboard data, sweeping expired tests first.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}
	return cached(ctx, s, DashboardKey, s.computeDashboard)
}

func (s *Service) summaries(ctx context.Context, now time.Time, scope func(*gorm.DB) *gorm.DB) ([]AdSummary, error) {
	ads := []models.Ad{}
	if err := scope(s.db.WithContext(ctx).Model(&models.Ad{})).Find(&ads).Error; err != nil {
		return nil, err
	}
	out := make([]AdSummary, len(ads))
	for i, ad := range ads {
		out[i] = AdSummary{
			ID:            ad.ID,
			Concept:       ad.Concept,
			Angle:         ad.Angle,
			Format:        ad.Format,
			Status:        ad.Status,
			DueDate:       ad.DueDate,
			ReviewDate:    ad.ReviewDate,
			DaysRemaining: adlifecycle.DaysRemaining(ad.ReviewDate, now),
		}
	}
	return out, nil
}

func (s *Service) computeDashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()

	byStatus, err := s.buckets(ctx, "status")
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		StatusCounts:    statusCounts(byStatus),
		RecentLearnings: []models.Learning{},
		GeneratedAt:     now,
	}
	winners, completed := 0, 0
	for _, r := range byStatus {
		winners += r.Winners
		completed += r.Completed
	}
	d.HitRate = adlifecycle.HitRate(winners, completed)

	open := func(db *gorm.DB) *gorm.DB {
		return db.Where("status <> ? AND due_date IS NOT NULL", adlifecycle.StatusCompleted)
	}

	if d.Overdue, err = s.summaries(ctx, now, func(db *gorm.DB) *gorm.DB {
		return open(db).Where("due_date < ?", now).Order("due_date ASC")
	}); err != nil {
		return nil, fmt.Errorf("failed to load overdue ads: %w", err)
	}

	if d.DueSoon, err = s.summaries(ctx, now, func(db *gorm.DB) *gorm.DB {
		return open(db).Where("due_date >= ? AND due_date <= ?", now, now.Add(DueSoonWindow)).Order("due_date ASC")
	}); err != nil {
		return nil, fmt.Errorf("failed to load ads due soon: %w", err)
	}

	if d.Testing, err = s.summaries(ctx, now, func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", adlifecycle.StatusTesting).Order("review_date ASC")
	}); err != nil {
		return nil, fmt.Errorf("failed to load testing ads: %w", err)
	}

	if d.AwaitingAnalysis, err = s.summaries(ctx, now, func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ?", adlifecycle.StatusAnalysis).Order("review_date ASC")
	}); err != nil {
		return nil, fmt.Errorf("failed to load ads awaiting analysis: %w", err)
	}

	if s.learnings != nil {
		recent, err := s.learnings.Recent(ctx, recentLearnings)
		if err != nil {
			return nil, fmt.Errorf("failed to load recent learnings: %w", err)
		}
		d.RecentLearnings = recent
	}

	return d, nil
}
