package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jordanlanch/adcreativelab/pkg/api/errors"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/learnings"
	"github.com/labstack/echo/v4"
)

// LearningHandler handles learning endpoints
type LearningHandler struct {
	learningService *learnings.Service
	validator       *validator.Validate
}

// NewLearningHandler creates a new learning handler
func NewLearningHandler(learningService *learnings.Service) *LearningHandler {
	return &LearningHandler{
		learningService: learningService,
		validator:       validator.New(),
	}
}

// List godoc
// @Summary List learnings
// @Description Returns the knowledge base newest first
// @Tags Learnings
// @Produce json
// @Param ad_id query string false "Source ad"
// @Param angle query string false "Angle"
// @Param format query string false "Format"
// @Param result query string false "winner or loser"
// @Param limit query integer false "Maximum results (1-500)" default(100)
// @Success 200 {object} map[string]interface{} "Learnings with count"
// @Failure 400 {object} models.ErrorResponse "Invalid filter"
// @Router /learnings [get]
func (h *LearningHandler) List(c echo.Context) error {
	var filter learnings.ListFilter
	if err := c.Bind(&filter); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(filter); err != nil {
		return errors.Respond(c, domain.ValidationFromStruct(err))
	}

	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	list, err := h.learningService.List(ctx, filter)
	if err != nil {
		return errors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"learnings": list,
		"count":     len(list),
	})
}

// Get godoc
// @Summary Get learning
// @Tags Learnings
// @Produce json
// @Param id path string true "Learning ID"
// @Success 200 {object} models.Learning "Learning"
// @Failure 404 {object} models.ErrorResponse "Learning not found"
// @Router /learnings/{id} [get]
func (h *LearningHandler) Get(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	l, err := h.learningService.Get(ctx, c.Param("id"))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// Delete godoc
// @Summary Delete learning
// @Tags Learnings
// @Param id path string true "Learning ID"
// @Success 204 "Deleted"
// @Failure 404 {object} models.ErrorResponse "Learning not found"
// @Router /learnings/{id} [delete]
func (h *LearningHandler) Delete(c echo.Context) error {
	ctx, cancel := withTimeout(c, requestTimeout)
	defer cancel()

	if err := h.learningService.Delete(ctx, c.Param("id")); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
