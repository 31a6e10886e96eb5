package handlers

import (
	"net/http"

	"github.com/jordanlanch/adcreativelab/pkg/api/errors"
	"github.com/jordanlanch/adcreativelab/pkg/competitors"
	"github.com/labstack/echo/v4"
)

// CompetitorHandler handles competitor and competitor ad endpoints
type CompetitorHandler struct {
	competitorService *competitors.Service
}

// NewCompetitorHandler creates a new competitor handler
func NewCompetitorHandler(competitorService *competitors.Service) *CompetitorHandler {
	return &CompetitorHandler{competitorService: competitorService}
}

// List godoc
// @Summary List competitors
// @Tags Competitors
// @Produce json
// @Success 200 {object} map[string]interface{} "Competitors with count"
// @Router /competitors [get]
func (h *CompetitorHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	list, err := h.competitorService.List(ctx)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"competitors": list,
		"count":       len(list),
	})
}

// Get godoc
// @Summary Get competitor
// @Tags Competitors
// @Produce json
// @Param id path string true "Competitor ID"
// @Success 200 {object} models.Competitor "Competitor with ads"
// @Failure 404 {object} models.ErrorResponse "Competitor not found"
// @Router /competitors/{id} [get]
func (h *CompetitorHandler) Get(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	competitor, err := h.competitorService.Get(ctx, c.Param("id"))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, competitor)
}

// Create godoc
// @Summary Create competitor
// @Tags Competitors
// @Accept json
// @Produce json
// @Param request body competitors.CreateCompetitorRequest true "Competitor"
// @Success 201 {object} models.Competitor "Created competitor"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /competitors [post]
func (h *CompetitorHandler) Create(c echo.Context) error {
	var req competitors.CreateCompetitorRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	competitor, err := h.competitorService.Create(ctx, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, competitor)
}

// Update godoc
// @Summary Update competitor
// @Tags Competitors
// @Accept json
// @Produce json
// @Param id path string true "Competitor ID"
// @Param request body competitors.UpdateCompetitorRequest true "Fields to change"
// @Success 200 {object} models.Competitor "Updated competitor"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Competitor not found"
// @Router /competitors/{id} [patch]
func (h *CompetitorHandler) Update(c echo.Context) error {
	var req competitors.UpdateCompetitorRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	competitor, err := h.competitorService.Update(ctx, c.Param("id"), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, competitor)
}

// Delete godoc
// @Summary Delete competitor
// @Description Deletes a competitor and its ads. Our ads inspired by them lose the link.
// @Tags Competitors
// @Param id path string true "Competitor ID"
// @Success 204 "Deleted"
// @Failure 404 {object} models.ErrorResponse "Competitor not found"
// @Router /competitors/{id} [delete]
func (h *CompetitorHandler) Delete(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	if err := h.competitorService.Delete(ctx, c.Param("id")); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddAd godoc
// @Summary Add competitor ad
// @Tags Competitors
// @Accept json
// @Produce json
// @Param id path string true "Competitor ID"
// @Param request body competitors.CreateAdRequest true "Competitor ad"
// @Success 201 {object} models.CompetitorAd "Created ad"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 404 {object} models.ErrorResponse "Competitor not found"
// @Router /competitors/{id}/ads [post]
func (h *CompetitorHandler) AddAd(c echo.Context) error {
	var req competitors.CreateAdRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	ad, err := h.competitorService.AddAd(ctx, c.Param("id"), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, ad)
}

// ListAds godoc
// @Summary List competitor ads
// @Tags Competitors
// @Produce json
// @Param competitor_id query string false "Competitor"
// @Param angle query string false "Angle"
// @Param format query string false "Format"
// @Param active_only query boolean false "Only ads still running"
// @Success 200 {object} map[string]interface{} "Ads with count"
// @Failure 400 {object} models.ErrorResponse "Invalid filter"
// @Router /competitor-ads [get]
func (h *CompetitorHandler) ListAds(c echo.Context) error {
	var filter competitors.AdFilter
	if err := c.Bind(&filter); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	list, err := h.competitorService.ListAds(ctx, filter)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ads":   list,
		"count": len(list),
	})
}

// DeleteAd godoc
// @Summary Delete competitor ad
// @Tags Competitors
// @Param id path string true "Competitor ad ID"
// @Success 204 "Deleted"
// @Failure 404 {object} models.ErrorResponse "Competitor ad not found"
// @Router /competitor-ads/{id} [delete]
func (h *CompetitorHandler) DeleteAd(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	if err := h.competitorService.DeleteAd(ctx, c.Param("id")); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
