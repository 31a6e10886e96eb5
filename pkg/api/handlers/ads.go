package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/ads"
	"github.com/jordanlanch/adcreativelab/pkg/api/errors"
	"github.com/jordanlanch/adcreativelab/pkg/export"
	"github.com/jordanlanch/adcreativelab/pkg/metrics"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"github.com/labstack/echo/v4"
)

// AdHandler handles ad endpoints
type AdHandler struct {
	adService *ads.Service
	metrics   *metrics.Metrics
}

// NewAdHandler creates a new ad handler
func NewAdHandler(adService *ads.Service, m *metrics.Metrics) *AdHandler {
	return &AdHandler{adService: adService, metrics: m}
}

// EngagementResponse is the engagement read-out of one ad.
type EngagementResponse struct {
	AdID       string                 `json:"ad_id"`
	Format     models.Format          `json:"format"`
	Engagement adlifecycle.Engagement `json:"engagement"`
}

// List godoc
// @Summary List ads
// @Description Returns ads matching the filters, most recently updated first. Expired tests are swept before reading.
// @Tags Ads
// @Produce json
// @Param exclude_completed query boolean false "Hide completed ads"
// @Param status query string false "Status (idea, development, production, testing, analysis, completed)"
// @Param angle query string false "Angle"
// @Param format query string false "Format"
// @Param funnel_stage query string false "Funnel stage (tof, mof, bof)"
// @Param avatar_id query string false "Avatar ID"
// @Param fail_reason query string false "Fail reason tag"
// @Param success_factor query string false "Success factor tag"
// @Success 200 {object} map[string]interface{} "Ads with count"
// @Failure 400 {object} models.ErrorResponse "Invalid filter"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /ads [get]
func (h *AdHandler) List(c echo.Context) error {
	var filter ads.ListFilter
	if err := c.Bind(&filter); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	list, err := h.adService.List(ctx, filter)
	if err != nil {
		return errors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ads":   list,
		"count": len(list),
	})
}

// Board godoc
// @Summary Kanban board
// @Description Returns every ad grouped by status in pipeline order, decorated with days remaining, ROAS and engagement. Safe to poll.
// @Tags Ads
// @Produce json
// @Success 200 {object} ads.Board "Board"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /ads/board [get]
func (h *AdHandler) Board(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	board, err := h.adService.Board(ctx)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, board)
}

// Export godoc
// @Summary Export ads
// @Description Downloads the ads matching the list filters as CSV or Excel
// @Tags Ads
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "File format: csv or xlsx" default(csv)
// @Param status query string false "Status filter"
// @Param exclude_completed query boolean false "Hide completed ads"
// @Success 200 {file} file "Export file"
// @Failure 400 {object} models.ErrorResponse "Invalid format or filter"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /ads/export [get]
func (h *AdHandler) Export(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return errors.Respond(c, err)
	}

	var filter ads.ListFilter
	if err := c.Bind(&filter); err != nil {
		return errors.ValidationError(c, err)
	}
	// format names the file type here, not the ad format.
	filter.Format = ""

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	list, err := h.adService.List(ctx, filter)
	if err != nil {
		return errors.Respond(c, err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, list); err != nil {
		return errors.InternalError(c, err)
	}
	h.metrics.RecordExportCreated(string(format))

	c.Response().Header().Set("Content-Disposition", "attachment; filename="+format.Filename(time.Now().UTC()))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

// Get godoc
// @Summary Get ad
// @Tags Ads
// @Produce json
// @Param id path string true "Ad ID"
// @Success 200 {object} ads.AdResponse "Ad"
// @Failure 404 {object} models.ErrorResponse "Ad not found"
// @Router /ads/{id} [get]
func (h *AdHandler) Get(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	ad, err := h.adService.Get(ctx, c.Param("id"))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, ad)
}

// Engagement godoc
// @Summary Ad engagement
// @Description Hook and hold rates with their bands and the suggested hook and script verdicts. Empty for non-video formats.
// @Tags Ads
// @Produce json
// @Param id path string true "Ad ID"
// @Success 200 {object} EngagementResponse "Engagement"
// @Failure 404 {object} models.ErrorResponse "Ad not found"
// @Router /ads/{id}/engagement [get]
func (h *AdHandler) Engagement(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	ad, err := h.adService.Get(ctx, c.Param("id"))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, EngagementResponse{
		AdID:       ad.ID,
		Format:     ad.Format,
		Engagement: ad.Engagement,
	})
}

// Create godoc
// @Summary Create ad
// @Description Creates an ad. Status defaults to idea; any other initial status is checked like a transition.
// @Tags Ads
// @Accept json
// @Produce json
// @Param request body ads.CreateAdRequest true "Ad"
// @Success 201 {object} ads.AdResponse "Created ad"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /ads [post]
func (h *AdHandler) Create(c echo.Context) error {
	var req ads.CreateAdRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	ad, err := h.adService.Create(ctx, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, ad)
}

// Patch godoc
// @Summary Update ad
// @Description Partial update. A status change runs the transition rules; completing with save_learning records a learning.
// @Tags Ads
// @Accept json
// @Produce json
// @Param id path string true "Ad ID"
// @Param request body ads.PatchAdRequest true "Fields to change"
// @Success 200 {object} ads.AdResponse "Updated ad"
// @Failure 400 {object} models.ErrorResponse "Invalid request or missing hypothesis"
// @Failure 404 {object} models.ErrorResponse "Ad not found"
// @Failure 423 {object} models.ErrorResponse "Ad is locked in testing"
// @Router /ads/{id} [patch]
func (h *AdHandler) Patch(c echo.Context) error {
	var req ads.PatchAdRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	ad, err := h.adService.Patch(ctx, c.Param("id"), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, ad)
}

// Move godoc
// @Summary Move ad
// @Description Moves an ad to another board column, optionally with the completion analysis
// @Tags Ads
// @Accept json
// @Produce json
// @Param id path string true "Ad ID"
// @Param request body ads.MoveAdRequest true "Target status and completion"
// @Success 200 {object} ads.AdResponse "Moved ad"
// @Failure 400 {object} models.ErrorResponse "Invalid transition"
// @Failure 404 {object} models.ErrorResponse "Ad not found"
// @Failure 423 {object} models.ErrorResponse "Ad is locked in testing"
// @Router /ads/{id}/move [post]
func (h *AdHandler) Move(c echo.Context) error {
	var req ads.MoveAdRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	ad, err := h.adService.Move(ctx, c.Param("id"), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, ad)
}

// Delete godoc
// @Summary Delete ad
// @Description Deletes an ad and its tags. Learnings drawn from it are kept.
// @Tags Ads
// @Param id path string true "Ad ID"
// @Success 204 "Deleted"
// @Failure 404 {object} models.ErrorResponse "Ad not found"
// @Router /ads/{id} [delete]
func (h *AdHandler) Delete(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	if err := h.adService.Delete(ctx, c.Param("id")); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
