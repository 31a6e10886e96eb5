package ads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/learnings"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"github.com/jordanlanch/adcreativelab/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

type failingRecorder struct{ calls int }

func (f *failingRecorder) Create(context.Context, *models.Learning) error {
	f.calls++
	return errors.New("learnings table unavailable")
}

type testEnv struct {
	db        *gorm.DB
	svc       *Service
	learnings *learnings.Service
	cache     *countingCache
	now       time.Time
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func setupTestService(t *testing.T, recorder LearningRecorder) *testEnv {
	env := &testEnv{
		db:    testdata.NewTestDB(t),
		cache: &countingCache{},
		now:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	repo := NewRepository(env.db)
	sweeper := adlifecycle.NewSweeper(repo, logger.Nop()).WithClock(clock)
	env.learnings = learnings.NewService(env.db)
	if recorder == nil {
		recorder = env.learnings
	}
	env.svc = NewService(repo, sweeper, Dependencies{
		Learnings: recorder,
		Cache:     env.cache,
		Logger:    logger.Nop(),
		Clock:     clock,
	})
	return env
}

func strPtr(s string) *string { return &s }

func createAd(t *testing.T, env *testEnv, req CreateAdRequest) *AdResponse {
	if req.Concept == "" {
		req.Concept = "Before/after split screen"
	}
	ad, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)
	return ad
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)

	t.Run("Defaults to idea with a 10 day lock length", func(t *testing.T) {
		ad := createAd(t, env, CreateAdRequest{Angle: "fear", Format: "video"})
		assert.NotEmpty(t, ad.ID)
		assert.Equal(t, adlifecycle.StatusIdea, ad.Status)
		assert.Equal(t, 10, ad.LockDays)
		assert.Equal(t, models.SourceOriginal, ad.SourceType)
		assert.False(t, ad.IsLocked)
		assert.Equal(t, 1, env.cache.n)
	})

	t.Run("Concept is required", func(t *testing.T) {
		_, err := env.svc.Create(ctx, CreateAdRequest{Concept: "   "})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Unknown angle is rejected", func(t *testing.T) {
		_, err := env.svc.Create(ctx, CreateAdRequest{Concept: "x", Angle: "nostalgia"})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Initial production status needs a hypothesis", func(t *testing.T) {
		_, err := env.svc.Create(ctx, CreateAdRequest{Concept: "x", Status: "production"})
		assert.True(t, domain.IsValidation(err))

		ad := createAd(t, env, CreateAdRequest{Status: "production", Hypothesis: "Fear beats desire for TOF"})
		assert.Equal(t, adlifecycle.StatusProduction, ad.Status)
	})

	t.Run("Initial testing status starts the lock", func(t *testing.T) {
		ad := createAd(t, env, CreateAdRequest{Status: "testing", Hypothesis: "UGC wins", LockDays: 7})
		assert.Equal(t, adlifecycle.StatusTesting, ad.Status)
		assert.True(t, ad.IsLocked)
		require.NotNil(t, ad.ReviewDate)
		assert.WithinDuration(t, env.now.Add(7*24*time.Hour), *ad.ReviewDate, time.Second)
		assert.Equal(t, 7, ad.DaysRemaining)
	})
}

func TestHypothesisFlow(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})

	_, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{Status: "production"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	got, err := env.svc.Get(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, adlifecycle.StatusIdea, got.Status)

	_, err = env.svc.Patch(ctx, ad.ID, PatchAdRequest{Hypothesis: strPtr("Curiosity hooks lift CTR")})
	require.NoError(t, err)

	moved, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{Status: "production"})
	require.NoError(t, err)
	assert.Equal(t, adlifecycle.StatusProduction, moved.Status)
}

func TestPatch_HypothesisInSameRequest(t *testing.T) {
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})

	got, err := env.svc.Patch(context.Background(), ad.ID, PatchAdRequest{
		Hypothesis: strPtr("Offer angle converts BOF"),
		Status:     strPtr("testing"),
	})
	require.NoError(t, err)
	assert.Equal(t, adlifecycle.StatusTesting, got.Status)
	assert.True(t, got.IsLocked)
}

func TestTestingLock(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{Hypothesis: "Testimonials build trust"})

	moved, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{Status: "testing"})
	require.NoError(t, err)
	require.NotNil(t, moved.TestingStartedAt)
	require.NotNil(t, moved.ReviewDate)
	assert.WithinDuration(t, moved.TestingStartedAt.Add(10*24*time.Hour), *moved.ReviewDate, time.Second)

	for _, target := range []string{"idea", "analysis", "completed"} {
		_, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{Status: target})
		assert.True(t, domain.IsLocked(err), "move to %s should be locked", target)
	}

	// Non-status edits are allowed during the test.
	_, err = env.svc.Patch(ctx, ad.ID, PatchAdRequest{MetricsInput: MetricsInput{Spend: ptrF(120)}})
	require.NoError(t, err)

	env.advance(9 * 24 * time.Hour)
	_, err = env.svc.Move(ctx, ad.ID, MoveAdRequest{Status: "analysis"})
	assert.True(t, domain.IsLocked(err))

	env.advance(24 * time.Hour)
	got, err := env.svc.Get(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, adlifecycle.StatusAnalysis, got.Status)
	assert.False(t, got.IsLocked)
	assert.Equal(t, 0, got.DaysRemaining)

	done, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, adlifecycle.StatusCompleted, done.Status)
	require.NotNil(t, done.ClosedAt)
}

func TestCompletionWithLearning(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{Angle: "desire", Format: "ugc", Hypothesis: "Desire angle wins"})

	_, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{Status: "testing"})
	require.NoError(t, err)
	env.advance(11 * 24 * time.Hour)

	done, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{
		Status: "completed",
		Completion: &CompletionInput{
			Result:    strPtr("winner"),
			Diagnosis: strPtr("Hook stopped the scroll; CTA was weak"),
			Evaluations: &EvaluationsInput{
				Hook: &EvaluationInput{Result: strPtr("worked"), Note: strPtr("pattern interrupt")},
				CTA:  &EvaluationInput{Result: strPtr("failed")},
			},
			SuccessFactors: []string{"strong_hook", "strong_hook", "novelty"},
			FailReasons:    []string{"weak_cta"},
			MetricsInput: MetricsInput{
				Spend:            ptrF(200),
				Revenue:          ptrF(700),
				Impressions:      ptrI(10000),
				ThreeSecondViews: ptrI(3500),
				ThruplayViews:    ptrI(1000),
			},
			SaveLearning: true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, adlifecycle.StatusCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, models.ResultWinner, *done.Result)
	assert.Equal(t, []string{"strong_hook", "novelty"}, done.SuccessFactors)
	assert.Equal(t, []string{"weak_cta"}, done.FailReasons)
	require.NotNil(t, done.ROAS)
	assert.InDelta(t, 3.5, *done.ROAS, 1e-9)
	assert.Equal(t, adlifecycle.BandGood, done.Engagement.HookBand)
	assert.Equal(t, adlifecycle.BandFailed, done.Engagement.HoldBand)

	saved, err := env.learnings.List(ctx, learnings.ListFilter{AdID: ad.ID})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Hook stopped the scroll; CTA was weak", saved[0].Content)
	assert.Equal(t, models.AngleDesire, saved[0].Angle)
	require.NotNil(t, saved[0].Evaluations.Hook.Result)
	assert.Equal(t, adlifecycle.ElementWorked, *saved[0].Evaluations.Hook.Result)
	require.NotNil(t, saved[0].Evaluations.CTA.Result)
	assert.Equal(t, adlifecycle.ElementFailed, *saved[0].Evaluations.CTA.Result)
}

func TestCompletion_LearningFailureKeepsAdUpdate(t *testing.T) {
	ctx := context.Background()
	recorder := &failingRecorder{}
	env := setupTestService(t, recorder)
	ad := createAd(t, env, CreateAdRequest{})

	done, err := env.svc.Patch(ctx, ad.ID, PatchAdRequest{
		Status:       strPtr("completed"),
		Diagnosis:    strPtr("Wrong avatar"),
		SaveLearning: true,
	})
	require.NoError(t, err)
	assert.Equal(t, adlifecycle.StatusCompleted, done.Status)
	assert.Equal(t, 1, recorder.calls)

	got, err := env.svc.Get(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, adlifecycle.StatusCompleted, got.Status)
}

func TestCompletion_NoLearningWithoutDiagnosis(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})

	_, err := env.svc.Patch(ctx, ad.ID, PatchAdRequest{Status: strPtr("completed"), SaveLearning: true})
	require.NoError(t, err)

	saved, err := env.learnings.List(ctx, learnings.ListFilter{AdID: ad.ID})
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestCompletion_LearningOnlyOnTransition(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})

	_, err := env.svc.Patch(ctx, ad.ID, PatchAdRequest{
		Status:       strPtr("completed"),
		Diagnosis:    strPtr("Testimonial hook works"),
		SaveLearning: true,
	})
	require.NoError(t, err)

	t.Run("edit of a completed ad", func(t *testing.T) {
		_, err := env.svc.Patch(ctx, ad.ID, PatchAdRequest{Notes: strPtr("typo fix"), SaveLearning: true})
		require.NoError(t, err)
	})

	t.Run("patch to the current status", func(t *testing.T) {
		_, err := env.svc.Patch(ctx, ad.ID, PatchAdRequest{
			Status:       strPtr("completed"),
			Diagnosis:    strPtr("Testimonial hook works, reworded"),
			SaveLearning: true,
		})
		require.NoError(t, err)
	})

	t.Run("move to the current status", func(t *testing.T) {
		_, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{
			Status:     "completed",
			Completion: &CompletionInput{Diagnosis: strPtr("Again"), SaveLearning: true},
		})
		require.NoError(t, err)
	})

	saved, err := env.learnings.List(ctx, learnings.ListFilter{AdID: ad.ID})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Testimonial hook works", saved[0].Content)
}

type orderedCache struct{ events *[]string }

func (c orderedCache) Invalidate(context.Context) { *c.events = append(*c.events, "invalidate") }

type orderedRecorder struct{ events *[]string }

func (r orderedRecorder) Create(context.Context, *models.Learning) error {
	*r.events = append(*r.events, "learning")
	return nil
}

func TestCompletion_InvalidatesAfterLearning(t *testing.T) {
	ctx := context.Background()
	var events []string
	db := testdata.NewTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, adlifecycle.NewSweeper(repo, logger.Nop()), Dependencies{
		Learnings: orderedRecorder{events: &events},
		Cache:     orderedCache{events: &events},
		Logger:    logger.Nop(),
	})

	ad, err := svc.Create(ctx, CreateAdRequest{Concept: "Founder story"})
	require.NoError(t, err)
	events = nil

	_, err = svc.Patch(ctx, ad.ID, PatchAdRequest{
		Status:       strPtr("completed"),
		Diagnosis:    strPtr("Founder voice builds trust"),
		SaveLearning: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"learning", "invalidate"}, events)
}

func TestMove_SameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})
	writes := env.cache.n

	env.advance(time.Hour)
	got, err := env.svc.Move(ctx, ad.ID, MoveAdRequest{Status: "idea"})
	require.NoError(t, err)
	assert.Equal(t, adlifecycle.StatusIdea, got.Status)
	assert.WithinDuration(t, ad.UpdatedAt, got.UpdatedAt, time.Second)
	assert.Equal(t, writes, env.cache.n)
}

func TestMove_InvalidStatus(t *testing.T) {
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})

	_, err := env.svc.Move(context.Background(), ad.ID, MoveAdRequest{Status: "archived"})
	assert.True(t, domain.IsValidation(err))
}

func TestPatch_UnknownTagRejected(t *testing.T) {
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})

	_, err := env.svc.Patch(context.Background(), ad.ID, PatchAdRequest{FailReasons: &[]string{"bad_luck"}})
	assert.True(t, domain.IsValidation(err))
}

func TestPatch_ClearsOptionalFields(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	due := env.now.Add(48 * time.Hour)
	ad := createAd(t, env, CreateAdRequest{AvatarID: strPtr("avatar-1"), DueDate: &due})
	require.NotNil(t, ad.AvatarID)

	got, err := env.svc.Patch(ctx, ad.ID, PatchAdRequest{AvatarID: strPtr(""), ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, got.AvatarID)
	assert.Nil(t, got.DueDate)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)

	_, err := env.svc.Get(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
	_, err = env.svc.Patch(ctx, "missing", PatchAdRequest{Notes: strPtr("x")})
	assert.True(t, domain.IsNotFound(err))
	_, err = env.svc.Move(ctx, "missing", MoveAdRequest{Status: "development"})
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(env.svc.Delete(ctx, "missing")))
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)

	a := createAd(t, env, CreateAdRequest{Angle: "fear", Format: "video", FunnelStage: "tof", AvatarID: strPtr("av-1")})
	b := createAd(t, env, CreateAdRequest{Angle: "offer", Format: "image", FunnelStage: "bof"})
	c := createAd(t, env, CreateAdRequest{Angle: "fear", Format: "image"})

	_, err := env.svc.Patch(ctx, a.ID, PatchAdRequest{Status: strPtr("completed"), FailReasons: &[]string{"weak_hook", "wrong_offer"}})
	require.NoError(t, err)
	_, err = env.svc.Patch(ctx, b.ID, PatchAdRequest{FailReasons: &[]string{"wrong_offer"}, SuccessFactors: &[]string{"novelty"}})
	require.NoError(t, err)

	ids := func(list []AdResponse) []string {
		out := []string{}
		for _, ad := range list {
			out = append(out, ad.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"All", ListFilter{}, []string{a.ID, b.ID, c.ID}},
		{"Exclude completed", ListFilter{ExcludeCompleted: true}, []string{b.ID, c.ID}},
		{"Status", ListFilter{Status: "completed"}, []string{a.ID}},
		{"Angle", ListFilter{Angle: "fear"}, []string{a.ID, c.ID}},
		{"Format", ListFilter{Format: "image"}, []string{b.ID, c.ID}},
		{"Funnel stage", ListFilter{FunnelStage: "bof"}, []string{b.ID}},
		{"Avatar", ListFilter{AvatarID: "av-1"}, []string{a.ID}},
		{"Fail reason", ListFilter{FailReason: "wrong_offer"}, []string{a.ID, b.ID}},
		{"Fail reason and angle", ListFilter{FailReason: "wrong_offer", Angle: "offer"}, []string{b.ID}},
		{"Success factor", ListFilter{SuccessFactor: "novelty"}, []string{b.ID}},
		{"No match", ListFilter{SuccessFactor: "good_audio"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, ids(got))
		})
	}

	t.Run("Invalid status filter", func(t *testing.T) {
		_, err := env.svc.List(ctx, ListFilter{Status: "archived"})
		assert.True(t, domain.IsValidation(err))
	})
}

func TestList_OrderedByUpdatedAt(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)

	first := createAd(t, env, CreateAdRequest{Concept: "first"})
	env.advance(time.Minute)
	createAd(t, env, CreateAdRequest{Concept: "second"})
	env.advance(time.Minute)
	_, err := env.svc.Patch(ctx, first.ID, PatchAdRequest{Notes: strPtr("touched")})
	require.NoError(t, err)

	got, err := env.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
}

func TestBoard(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)

	createAd(t, env, CreateAdRequest{})
	createAd(t, env, CreateAdRequest{})
	createAd(t, env, CreateAdRequest{Status: "testing", Hypothesis: "h"})

	board, err := env.svc.Board(ctx)
	require.NoError(t, err)
	require.Len(t, board.Columns, len(adlifecycle.Pipeline))
	assert.Equal(t, 3, board.Total)

	counts := map[adlifecycle.Status]int{}
	for _, col := range board.Columns {
		counts[col.Status] = col.Count
		assert.Len(t, col.Ads, col.Count)
	}
	assert.Equal(t, 2, counts[adlifecycle.StatusIdea])
	assert.Equal(t, 1, counts[adlifecycle.StatusTesting])
	assert.Equal(t, 10, board.Columns[3].Ads[0].DaysRemaining)

	env.advance(10 * 24 * time.Hour)
	board, err = env.svc.Board(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, board.Columns[3].Count)
	assert.Equal(t, 1, board.Columns[4].Count)
}

func TestSweeperRepairsStaleLocks(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})

	// A lock flag outside of testing can only come from a bad write.
	require.NoError(t, env.db.Model(&models.Ad{}).Where("id = ?", ad.ID).Update("is_locked", true).Error)

	got, err := env.svc.Get(ctx, ad.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLocked)
}

func TestDelete_KeepsLearnings(t *testing.T) {
	ctx := context.Background()
	env := setupTestService(t, nil)
	ad := createAd(t, env, CreateAdRequest{})

	_, err := env.svc.Patch(ctx, ad.ID, PatchAdRequest{
		Status:         strPtr("completed"),
		Diagnosis:      strPtr("Audio was bad"),
		FailReasons:    &[]string{"bad_audio"},
		SaveLearning:   true,
		SuccessFactors: &[]string{},
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, ad.ID))

	_, err = env.svc.Get(ctx, ad.ID)
	assert.True(t, domain.IsNotFound(err))

	var tags int64
	require.NoError(t, env.db.Model(&models.AdTag{}).Where("ad_id = ?", ad.ID).Count(&tags).Error)
	assert.Zero(t, tags)

	orphans, err := env.learnings.List(ctx, learnings.ListFilter{AdID: ad.ID})
	require.NoError(t, err)
	assert.Len(t, orphans, 1)
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }
