// Package ads manages ad creatives: CRUD, board transitions and the side
// effects of closing a test.
package ads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/learnings"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/jordanlanch/adcreativelab/pkg/metrics"
	"github.com/jordanlanch/adcreativelab/pkg/models"
)

// LearningRecorder persists learnings extracted from completed ads.
type LearningRecorder interface {
	Create(ctx context.Context, l *models.Learning) error
}

// CacheInvalidator drops derived data that depends on ads.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Dependencies are the optional collaborators of Service.
type Dependencies struct {
	Learnings LearningRecorder
	Cache     CacheInvalidator
	Metrics   *metrics.Metrics
	Logger    logger.Logger
	Clock     func() time.Time
	LockDays  int
}

// Service handles ad operations.
type Service struct {
	repo      *Repository
	sweeper   *adlifecycle.Sweeper
	validator *validator.Validate
	learnings LearningRecorder
	cache     CacheInvalidator
	metrics   *metrics.Metrics
	log       logger.Logger
	now       func() time.Time
	lockDays  int
}

// NewService creates a new ad service. sweeper runs before every read that
// depends on lock state.
func NewService(repo *Repository, sweeper *adlifecycle.Sweeper, deps Dependencies) *Service {
	s := &Service{
		repo:      repo,
		sweeper:   sweeper,
		validator: validator.New(),
		learnings: deps.Learnings,
		cache:     deps.Cache,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		now:       deps.Clock,
		lockDays:  deps.LockDays,
	}
	if s.log == nil {
		s.log = logger.Default()
	}
	s.log = s.log.With("component", "ads")
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.lockDays <= 0 {
		s.lockDays = adlifecycle.DefaultLockDays
	}
	return s
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

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// Get returns one ad.
func (s *Service) Get(ctx context.Context, id string) (*AdResponse, error) {
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}
	ad, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := NewAdResponse(*ad, s.now())
	return &resp, nil
}

// List returns ads matching f, most recently updated first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]AdResponse, error) {
	if err := s.validator.Struct(f); err != nil {
		return nil, domain.ValidationFromStruct(err)
	}
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}
	ads, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]AdResponse, len(ads))
	for i, ad := range ads {
		out[i] = NewAdResponse(ad, now)
	}
	return out, nil
}

// Board groups every ad by status in pipeline order.
func (s *Service) Board(ctx context.Context) (*Board, error) {
	ads, err := s.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	columns := make([]BoardColumn, len(adlifecycle.Pipeline))
	index := map[adlifecycle.Status]int{}
	for i, st := range adlifecycle.Pipeline {
		columns[i] = BoardColumn{Status: st, Ads: []AdResponse{}}
		index[st] = i
	}
	for _, ad := range ads {
		i, ok := index[ad.Status]
		if !ok {
			continue
		}
		columns[i].Ads = append(columns[i].Ads, ad)
		columns[i].Count++
	}

	return &Board{Columns: columns, Total: len(ads), GeneratedAt: s.now()}, nil
}

// Create adds an ad. A non-idea initial status is checked like any other
// transition, so it needs a hypothesis and starts the lock when it is testing.
func (s *Service) Create(ctx context.Context, req CreateAdRequest) (*AdResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, domain.ValidationFromStruct(err)
	}
	if err := req.checkEnums(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Concept) == "" {
		return nil, domain.NewValidationError("concept is required")
	}

	target := adlifecycle.StatusIdea
	if req.Status != "" {
		st, err := parseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		target = st
	}

	lockDays := req.LockDays
	if lockDays <= 0 {
		lockDays = s.lockDays
	}

	ad := &models.Ad{
		Concept:        req.Concept,
		Angle:          models.Angle(req.Angle),
		Format:         models.Format(req.Format),
		FunnelStage:    models.FunnelStage(req.FunnelStage),
		SourceType:     models.SourceType(req.SourceType),
		AvatarID:       emptyToNil(req.AvatarID),
		CompetitorAdID: emptyToNil(req.CompetitorAdID),
		Hypothesis:     req.Hypothesis,
		Hook:           req.Hook,
		Script:         req.Script,
		CTA:            req.CTA,
		Notes:          req.Notes,
		MediaURL:       req.MediaURL,
		Status:         adlifecycle.StatusIdea,
		LockDays:       lockDays,
	}
	now := s.now()
	ad.CreatedAt, ad.UpdatedAt = now, now
	if ad.SourceType == "" {
		ad.SourceType = models.SourceOriginal
	}
	if req.DueDate != nil {
		due := req.DueDate.UTC()
		ad.DueDate = &due
	}

	if target != adlifecycle.StatusIdea {
		decision, err := adlifecycle.Decide(adlifecycle.Snapshot{
			Hypothesis: ad.Hypothesis,
			LockDays:   ad.LockDays,
		}, target, now)
		if err != nil {
			s.metrics.RecordTransitionRejected(domain.GetErrorCode(err))
			return nil, err
		}
		ad.Status = decision.To
		applyDecision(ad, decision)
	}

	if err := s.repo.Create(ctx, ad); err != nil {
		return nil, err
	}

	s.metrics.RecordAdCreated()
	s.log.Info("ad created", "ad_id", ad.ID, "status", ad.Status)
	s.invalidate(ctx)

	resp := NewAdResponse(*ad, now)
	return &resp, nil
}

// Patch applies a partial update. A status change goes through the lifecycle
// rules; closing an ad with SaveLearning records a learning.
func (s *Service) Patch(ctx context.Context, id string, req PatchAdRequest) (*AdResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, domain.ValidationFromStruct(err)
	}
	if err := req.checkEnums(); err != nil {
		return nil, err
	}
	if err := s.sweep(ctx); err != nil {
		return nil, err
	}
	ad, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, ad, req)
}

// Move transitions an ad on the board, optionally recording the analysis.
// Moving to the current status is a no-op.
func (s *Service) Move(ctx context.Context, id string, req MoveAdRequest) (*AdResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, domain.ValidationFromStruct(err)
	}
	target, err := parseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	patch := req.patch()
	if err := s.validator.Struct(patch); err != nil {
		return nil, domain.ValidationFromStruct(err)
	}
	if err := patch.checkEnums(); err != nil {
		return nil, err
	}

	if err := s.sweep(ctx); err != nil {
		return nil, err
	}
	ad, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if ad.Status == target {
		resp := NewAdResponse(*ad, s.now())
		return &resp, nil
	}
	return s.apply(ctx, ad, patch)
}

func (s *Service) apply(ctx context.Context, ad *models.Ad, req PatchAdRequest) (*AdResponse, error) {
	now := s.now()
	cols := req.columns()

	var decision *adlifecycle.Decision
	if req.Status != nil {
		target, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		if target != ad.Status {
			snap := ad.Snapshot()
			if req.Hypothesis != nil {
				snap.Hypothesis = *req.Hypothesis
			}
			if req.LockDays != nil {
				snap.LockDays = *req.LockDays
			}
			d, err := adlifecycle.Decide(snap, target, now)
			if err != nil {
				s.metrics.RecordTransitionRejected(domain.GetErrorCode(err))
				s.log.Debug("transition rejected", "ad_id", ad.ID, "from", ad.Status, "to", target, "error", err)
				return nil, err
			}
			decision = &d
			mergeDecision(cols, d)
		}
	}

	tags := map[models.TagKind][]string{}
	if req.FailReasons != nil {
		values, err := normalizeTags("fail_reasons", *req.FailReasons, models.FailReasons)
		if err != nil {
			return nil, err
		}
		tags[models.TagFailReason] = values
	}
	if req.SuccessFactors != nil {
		values, err := normalizeTags("success_factors", *req.SuccessFactors, models.SuccessFactors)
		if err != nil {
			return nil, err
		}
		tags[models.TagSuccessFactor] = values
	}

	cols["updated_at"] = now
	if err := s.repo.Update(ctx, ad.ID, cols, tags); err != nil {
		return nil, err
	}

	updated, err := s.repo.Find(ctx, ad.ID)
	if err != nil {
		return nil, err
	}

	if decision != nil {
		s.metrics.RecordTransition(string(decision.From), string(decision.To))
		s.log.Info("ad moved", "ad_id", ad.ID, "from", decision.From, "to", decision.To, "locked", decision.LocksAd())
	}

	// Only the transition into completed records a learning; later edits of
	// a completed ad do not.
	if req.SaveLearning && decision != nil && decision.To == adlifecycle.StatusCompleted {
		s.recordLearning(ctx, updated)
	}
	s.invalidate(ctx)

	resp := NewAdResponse(*updated, now)
	return &resp, nil
}

// recordLearning stores the learning of a completed ad. Failures are logged
// and reported but never undo the ad update.
func (s *Service) recordLearning(ctx context.Context, ad *models.Ad) {
	l, ok := learnings.Extract(ad, true)
	if !ok || s.learnings == nil {
		return
	}
	if err := s.learnings.Create(ctx, l); err != nil {
		s.metrics.RecordLearning(false)
		s.log.Error("failed to save learning", "ad_id", ad.ID, "error", err)
		hub := sentry.GetHubFromContext(ctx)
		if hub == nil {
			hub = sentry.CurrentHub()
		}
		hub.CaptureException(err)
		return
	}
	s.metrics.RecordLearning(true)
	s.log.Info("learning saved", "ad_id", ad.ID, "learning_id", l.ID)
}

// Delete removes an ad and its tags. Learnings taken from it are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("ad deleted", "ad_id", id)
	s.invalidate(ctx)
	return nil
}

func applyDecision(ad *models.Ad, d adlifecycle.Decision) {
	f := d.Fields
	if f.IsLocked != nil {
		ad.IsLocked = *f.IsLocked
	}
	if f.ReviewDate != nil {
		ad.ReviewDate = f.ReviewDate
	}
	if f.TestingStartedAt != nil {
		ad.TestingStartedAt = f.TestingStartedAt
	}
	if f.ClosedAt != nil {
		ad.ClosedAt = f.ClosedAt
	}
}

// mergeDecision writes the derived fields over caller-supplied columns.
func mergeDecision(cols map[string]any, d adlifecycle.Decision) {
	cols["status"] = d.To
	f := d.Fields
	if f.IsLocked != nil {
		cols["is_locked"] = *f.IsLocked
	}
	if f.ReviewDate != nil {
		cols["review_date"] = *f.ReviewDate
	}
	if f.TestingStartedAt != nil {
		cols["testing_started_at"] = *f.TestingStartedAt
	}
	if f.ClosedAt != nil {
		cols["closed_at"] = *f.ClosedAt
	}
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
