package handlers

import (
	"net/http"
	"testing"

	"github.com/jordanlanch/adcreativelab/pkg/competitors"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompetitorHandler(t *testing.T) {
	env := setupTestEnv(t)
	h := NewCompetitorHandler(competitors.NewService(env.db))

	c, rec := request(http.MethodPost, "/api/v1/competitors", `{"name":"Acme","website":"https://acme.example.com"}`)
	require.NoError(t, h.Create(c))
	mustStatus(t, rec, http.StatusCreated)
	competitor := decode[models.Competitor](t, rec)

	t.Run("Create - invalid website", func(t *testing.T) {
		c, rec := request(http.MethodPost, "/api/v1/competitors", `{"name":"Bad","website":"nope"}`)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Update", func(t *testing.T) {
		c, rec := request(http.MethodPatch, "/", `{"notes":"heavy on UGC"}`, "id", competitor.ID)
		require.NoError(t, h.Update(c))
		mustStatus(t, rec, http.StatusOK)
		assert.Equal(t, "heavy on UGC", decode[models.Competitor](t, rec).Notes)
	})

	var adID string
	t.Run("AddAd", func(t *testing.T) {
		c, rec := request(http.MethodPost, "/", `{"title":"Unboxing","media_type":"video","angle":"curiosity","format":"ugc"}`, "id", competitor.ID)
		require.NoError(t, h.AddAd(c))
		mustStatus(t, rec, http.StatusCreated)
		ad := decode[models.CompetitorAd](t, rec)
		assert.True(t, ad.IsActive)
		adID = ad.ID
	})

	t.Run("AddAd - unknown competitor", func(t *testing.T) {
		c, rec := request(http.MethodPost, "/", `{"title":"x"}`, "id", "missing")
		require.NoError(t, h.AddAd(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("ListAds", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/api/v1/competitor-ads?format=ugc&active_only=true", "")
		require.NoError(t, h.ListAds(c))
		mustStatus(t, rec, http.StatusOK)
		assert.EqualValues(t, 1, decode[map[string]any](t, rec)["count"])

		c, rec = request(http.MethodGet, "/api/v1/competitor-ads?angle=anger", "")
		require.NoError(t, h.ListAds(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Get and List", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/", "", "id", competitor.ID)
		require.NoError(t, h.Get(c))
		mustStatus(t, rec, http.StatusOK)
		assert.Len(t, decode[models.Competitor](t, rec).Ads, 1)

		c, rec = request(http.MethodGet, "/api/v1/competitors", "")
		require.NoError(t, h.List(c))
		mustStatus(t, rec, http.StatusOK)
		assert.EqualValues(t, 1, decode[map[string]any](t, rec)["count"])
	})

	t.Run("DeleteAd", func(t *testing.T) {
		c, rec := request(http.MethodDelete, "/", "", "id", adID)
		require.NoError(t, h.DeleteAd(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		c, rec := request(http.MethodDelete, "/", "", "id", competitor.ID)
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		c, rec = request(http.MethodDelete, "/", "", "id", competitor.ID)
		require.NoError(t, h.Delete(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
