package avatars

import (
	"context"
	"testing"

	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"github.com/jordanlanch/adcreativelab/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db := testdata.NewTestDB(t)
	return NewService(db), db
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	t.Run("Success - trims name", func(t *testing.T) {
		a, err := svc.Create(ctx, CreateAvatarRequest{Name: "  Busy Mom  ", PainPoints: "no time"})
		require.NoError(t, err)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "Busy Mom", a.Name)
		assert.Equal(t, "no time", a.PainPoints)
	})

	t.Run("Error - name required", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateAvatarRequest{Name: "   "})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	b, err := svc.Create(ctx, CreateAvatarRequest{Name: "Bodybuilder"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateAvatarRequest{Name: "Accountant"})
	require.NoError(t, err)

	_, err = svc.AddSubAvatar(ctx, b.ID, CreateSubAvatarRequest{Name: "Beginner"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Accountant", list[0].Name)
	assert.Len(t, list[1].SubAvatars, 1)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beginner", got.SubAvatars[0].Name)
	assert.Empty(t, got.Research)

	_, err = svc.Get(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)
	a, err := svc.Create(ctx, CreateAvatarRequest{Name: "Student", Desires: "good grades"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, a.ID, UpdateAvatarRequest{Objections: strPtr("too expensive"), Desires: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Student", updated.Name)
	assert.Equal(t, "too expensive", updated.Objections)
	assert.Empty(t, updated.Desires)

	_, err = svc.Update(ctx, a.ID, UpdateAvatarRequest{Name: strPtr(" ")})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Update(ctx, "missing", UpdateAvatarRequest{Name: strPtr("x")})
	assert.True(t, domain.IsNotFound(err))
}

func TestAddResearch(t *testing.T) {
	ctx := context.Background()
	svc, db := setupTestService(t)
	a, err := svc.Create(ctx, CreateAvatarRequest{Name: "Runner"})
	require.NoError(t, err)

	t.Run("Success - stores the whole batch", func(t *testing.T) {
		items, err := svc.AddResearch(ctx, a.ID, AddResearchRequest{Items: []ResearchItemInput{
			{Kind: "quote", Content: "My knees hurt after 5k", Source: "reddit"},
			{Kind: " Pain ", Content: "shin splints"},
		}})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, models.ResearchPain, items[1].Kind)
		assert.NotEmpty(t, items[0].ID)

		got, err := svc.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Len(t, got.Research, 2)
	})

	t.Run("Error - one invalid item stores nothing", func(t *testing.T) {
		_, err := svc.AddResearch(ctx, a.ID, AddResearchRequest{Items: []ResearchItemInput{
			{Kind: "insight", Content: "valid"},
			{Kind: "rumor", Content: "invalid kind"},
		}})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))

		var n int64
		require.NoError(t, db.Model(&models.ResearchItem{}).Where("avatar_id = ?", a.ID).Count(&n).Error)
		assert.Equal(t, int64(2), n)
	})

	t.Run("Error - empty batch", func(t *testing.T) {
		_, err := svc.AddResearch(ctx, a.ID, AddResearchRequest{})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("Error - unknown avatar", func(t *testing.T) {
		_, err := svc.AddResearch(ctx, "missing", AddResearchRequest{Items: []ResearchItemInput{
			{Kind: "quote", Content: "hello"},
		}})
		assert.True(t, domain.IsNotFound(err))

		var n int64
		require.NoError(t, db.Model(&models.ResearchItem{}).Where("avatar_id = ?", "missing").Count(&n).Error)
		assert.Zero(t, n)
	})
}

func TestDeleteResearchItem(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)
	a, err := svc.Create(ctx, CreateAvatarRequest{Name: "Runner"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, CreateAvatarRequest{Name: "Cyclist"})
	require.NoError(t, err)

	items, err := svc.AddResearch(ctx, a.ID, AddResearchRequest{Items: []ResearchItemInput{{Kind: "quote", Content: "x"}}})
	require.NoError(t, err)

	err = svc.DeleteResearchItem(ctx, other.ID, items[0].ID)
	assert.True(t, domain.IsNotFound(err), "item must belong to the avatar")

	require.NoError(t, svc.DeleteResearchItem(ctx, a.ID, items[0].ID))
	assert.True(t, domain.IsNotFound(svc.DeleteResearchItem(ctx, a.ID, items[0].ID)))
}

func TestAddSubAvatar_UnknownAvatar(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.AddSubAvatar(context.Background(), "missing", CreateSubAvatarRequest{Name: "x"})
	assert.True(t, domain.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, db := setupTestService(t)
	a, err := svc.Create(ctx, CreateAvatarRequest{Name: "Gamer"})
	require.NoError(t, err)
	_, err = svc.AddSubAvatar(ctx, a.ID, CreateSubAvatarRequest{Name: "Console"})
	require.NoError(t, err)
	_, err = svc.AddResearch(ctx, a.ID, AddResearchRequest{Items: []ResearchItemInput{{Kind: "desire", Content: "win"}}})
	require.NoError(t, err)

	ad := models.Ad{Concept: "RGB keyboard", Status: "idea", LockDays: 10, AvatarID: &a.ID}
	require.NoError(t, db.Create(&ad).Error)

	require.NoError(t, svc.Delete(ctx, a.ID))

	var subs, research int64
	require.NoError(t, db.Model(&models.SubAvatar{}).Count(&subs).Error)
	require.NoError(t, db.Model(&models.ResearchItem{}).Count(&research).Error)
	assert.Zero(t, subs)
	assert.Zero(t, research)

	var reloaded models.Ad
	require.NoError(t, db.First(&reloaded, "id = ?", ad.ID).Error)
	assert.Nil(t, reloaded.AvatarID)

	assert.True(t, domain.IsNotFound(svc.Delete(ctx, a.ID)))
}
