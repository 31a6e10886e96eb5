package handlers

import (
	"net/http"

	"github.com/jordanlanch/adcreativelab/pkg/analytics"
	"github.com/jordanlanch/adcreativelab/pkg/api/errors"
	"github.com/labstack/echo/v4"
)

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Stats godoc
// @Summary Lab statistics
// @Description Status counts, hit rate, spend, revenue, ROAS, per-angle and per-format breakdowns and top tags
// @Tags Analytics
// @Produce json
// @Success 200 {object} analytics.Stats "Statistics"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /analytics/stats [get]
func (h *AnalyticsHandler) Stats(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	stats, err := h.analyticsService.Stats(ctx)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Dashboard godoc
// @Summary Dashboard
// @Description Overdue and due-soon ads, tests in progress, ads awaiting analysis and the latest learnings
// @Tags Analytics
// @Produce json
// @Success 200 {object} analytics.Dashboard "Dashboard"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	dashboard, err := h.analyticsService.Dashboard(ctx)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, dashboard)
}
