// Package analytics aggregates ad performance for the stats page, the
// dashboard and the AI report.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/cache"
	"github.com/jordanlanch/adcreativelab/pkg/database"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/jordanlanch/adcreativelab/pkg/metrics"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"gorm.io/gorm"
)

// Cache keys and lifetime of cached aggregates.
const (
	StatsKey     = "analytics:stats"
	DashboardKey = "analytics:dashboard"
	CacheTTL     = 30 * time.Second

	topTags = 5
)

// Cache is the subset of the Redis client analytics uses.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// LearningSource returns the newest learnings.
type LearningSource interface {
	Recent(ctx context.Context, n int) ([]models.Learning, error)
}

// Dependencies are the optional collaborators of Service.
type Dependencies struct {
	Cache     Cache
	Learnings LearningSource
	Metrics   *metrics.Metrics
	Logger    logger.Logger
	Clock     func() time.Time
}

// Service handles ad analytics
type Service struct {
	db        *gorm.DB
	sweeper   *adlifecycle.Sweeper
	cache     Cache
	learnings LearningSource
	metrics   *metrics.Metrics
	log       logger.Logger
	now       func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, sweeper *adlifecycle.Sweeper, deps Dependencies) *Service {
	s := &Service{
		db:        db,
		sweeper:   sweeper,
		cache:     deps.Cache,
		learnings: deps.Learnings,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		now:       deps.Clock,
	}
	if s.log == nil {
		s.log = logger.Default()
	}
	s.log = s.log.With("component", "analytics")
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Invalidate drops every cached aggregate.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, StatsKey, DashboardKey); err != nil {
		s.log.Warn("failed to invalidate analytics cache", "error", err)
	}
}

func (s *Service) sweep(ctx context.Context) error {
	if s.sweeper == nil {
		return nil
	}
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		return fmt.Errorf("failed to sweep ads: %w", err)
	}
	return nil
}

// cached serves key from the cache or fills it with compute.
func cached[T any](ctx context.Context, s *Service, key string, compute func(context.Context) (*T, error)) (*T, error) {
	if s.cache != nil {
		var hit T
		err := s.cache.GetJSON(ctx, key, &hit)
		switch {
		case err == nil:
			s.metrics.RecordCacheHit("redis")
			return &hit, nil
		case errors.Is(err, cache.ErrMiss):
			s.metrics.RecordCacheMiss("redis")
		default:
			s.log.Warn("analytics cache read failed", "key", key, "error", err)
		}
	}

	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, v, CacheTTL); err != nil {
			s.log.Warn("analytics cache write failed", "key", key, "error", err)
		}
	}
	return v, nil
}

// Breakdown aggregates ads sharing one angle or format.
type Breakdown struct {
	Key       string   `json:"key"`
	Count     int      `json:"count"`
	Completed int      `json:"completed"`
	Winners   int      `json:"winners"`
	HitRate   float64  `json:"hit_rate"`
	Spend     float64  `json:"spend"`
	Revenue   float64  `json:"revenue"`
	ROAS      *float64 `json:"roas"`
}

// TagCount is how often a fail reason or success factor was recorded.
type TagCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Stats is the aggregate view of every ad.
type Stats struct {
	StatusCounts      map[adlifecycle.Status]int `json:"status_counts"`
	Total             int                        `json:"total"`
	Completed         int                        `json:"completed"`
	Winners           int                        `json:"winners"`
	Losers            int                        `json:"losers"`
	HitRate           float64                    `json:"hit_rate"`
	TotalSpend        float64                    `json:"total_spend"`
	TotalRevenue      float64                    `json:"total_revenue"`
	ROAS              *float64                   `json:"roas"`
	ByAngle           []Breakdown                `json:"by_angle"`
	ByFormat          []Breakdown                `json:"by_format"`
	TopFailReasons    []TagCount                 `json:"top_fail_reasons"`
	TopSuccessFactors []TagCount                 `json:"top_success_factors"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// Stats returns the aggregate statistics, sweeping expired tests first.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}
	return cached(ctx, s, StatsKey, s.computeStats)
}

type bucketRow struct {
	Bucket    string  `sql:"bucket"`
	Count     int     `sql:"count"`
	Completed int     `sql:"completed"`
	Winners   int     `sql:"winners"`
	Losers    int     `sql:"losers"`
	Spend     float64 `sql:"spend"`
	Revenue   float64 `sql:"revenue"`
}

func countWhen(cond string) string {
	return "SUM(CASE WHEN " + cond + " THEN 1 ELSE 0 END)"
}

// query runs a SELECT built with the ent SQL builder and scans every row into
// dest, a pointer to a slice of structs tagged with column names.
func (s *Service) query(ctx context.Context, build func(*entsql.DialectBuilder) *entsql.Selector, dest any) error {
	drv, err := database.SQLDriver(s.db)
	if err != nil {
		return err
	}
	query, args := build(entsql.Dialect(drv.Dialect())).Query()

	rows := &entsql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, dest)
}

func (s *Service) buckets(ctx context.Context, column string) ([]bucketRow, error) {
	rows := []bucketRow{}
	err := s.query(ctx, func(b *entsql.DialectBuilder) *entsql.Selector {
		return b.Select(
			entsql.As("COALESCE("+column+", '')", "bucket"),
			entsql.As(entsql.Count("*"), "count"),
			entsql.As(countWhen("status = 'completed'"), "completed"),
			entsql.As(countWhen("status = 'completed' AND result = 'winner'"), "winners"),
			entsql.As(countWhen("status = 'completed' AND result = 'loser'"), "losers"),
			entsql.As("COALESCE(SUM(spend), 0)", "spend"),
			entsql.As("COALESCE(SUM(revenue), 0)", "revenue"),
		).
			From(entsql.Table(models.Ad{}.TableName())).
			GroupBy(column).
			OrderBy(column)
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ads by %s: %w", column, err)
	}
	return rows, nil
}

func breakdowns(rows []bucketRow) []Breakdown {
	out := make([]Breakdown, 0, len(rows))
	for _, r := range rows {
		if r.Bucket == "" {
			continue
		}
		out = append(out, Breakdown{
			Key:       r.Bucket,
			Count:     r.Count,
			Completed: r.Completed,
			Winners:   r.Winners,
			HitRate:   adlifecycle.HitRate(r.Winners, r.Completed),
			Spend:     r.Spend,
			Revenue:   r.Revenue,
			ROAS:      adlifecycle.ROAS(&r.Revenue, &r.Spend),
		})
	}
	return out
}

type tagRow struct {
	Value string `sql:"value"`
	Count int    `sql:"count"`
}

func (s *Service) topTags(ctx context.Context, kind models.TagKind) ([]TagCount, error) {
	rows := []tagRow{}
	err := s.query(ctx, func(b *entsql.DialectBuilder) *entsql.Selector {
		return b.Select("value", entsql.As(entsql.Count("*"), "count")).
			From(entsql.Table(models.AdTag{}.TableName())).
			Where(entsql.EQ("kind", string(kind))).
			GroupBy("value").
			OrderBy(entsql.Desc("count"), "value").
			Limit(topTags)
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s tags: %w", kind, err)
	}

	out := make([]TagCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, TagCount{Value: r.Value, Count: r.Count})
	}
	return out, nil
}

func (s *Service) computeStats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.buckets(ctx, "status")
	if err != nil {
		return nil, err
	}
	byAngle, err := s.buckets(ctx, "angle")
	if err != nil {
		return nil, err
	}
	byFormat, err := s.buckets(ctx, "format")
	if err != nil {
		return nil, err
	}
	fails, err := s.topTags(ctx, models.TagFailReason)
	if err != nil {
		return nil, err
	}
	wins, err := s.topTags(ctx, models.TagSuccessFactor)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		StatusCounts:      statusCounts(byStatus),
		ByAngle:           breakdowns(byAngle),
		ByFormat:          breakdowns(byFormat),
		TopFailReasons:    fails,
		TopSuccessFactors: wins,
		GeneratedAt:       s.now(),
	}
	for _, r := range byStatus {
		st.Total += r.Count
		st.Completed += r.Completed
		st.Winners += r.Winners
		st.Losers += r.Losers
		st.TotalSpend += r.Spend
		st.TotalRevenue += r.Revenue
	}
	st.HitRate = adlifecycle.HitRate(st.Winners, st.Completed)
	st.ROAS = adlifecycle.ROAS(&st.TotalRevenue, &st.TotalSpend)
	return st, nil
}

func statusCounts(rows []bucketRow) map[adlifecycle.Status]int {
	counts := make(map[adlifecycle.Status]int, len(adlifecycle.Pipeline))
	for _, st := range adlifecycle.Pipeline {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[adlifecycle.Status(r.Bucket)] += r.Count
	}
	return counts
}
