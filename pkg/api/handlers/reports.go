package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jordanlanch/adcreativelab/pkg/ai/reports"
	"github.com/jordanlanch/adcreativelab/pkg/api/errors"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/labstack/echo/v4"
)

// ReportHandler handles AI report endpoints
type ReportHandler struct {
	generator *reports.Generator
}

// NewReportHandler creates a new report handler
func NewReportHandler(generator *reports.Generator) *ReportHandler {
	return &ReportHandler{generator: generator}
}

// ReportRequest is the question a report answers.
type ReportRequest struct {
	Question string `json:"question" example:"Which angle should we test next?"`
}

// Generate godoc
// @Summary Generate report
// @Description Answers a question about the lab using the current statistics
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body ReportRequest true "Question"
// @Success 200 {object} reports.Report "Report"
// @Failure 400 {object} models.ErrorResponse "Missing question"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 502 {object} models.ErrorResponse "Report generator unavailable"
// @Router /reports [post]
func (h *ReportHandler) Generate(c echo.Context) error {
	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	// The generator applies its own deadline.
	report, err := h.generator.Generate(c.Request().Context(), req.Question)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

type streamEvent struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeEvent(res *echo.Response, event string, data streamEvent) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}

// Stream godoc
// @Summary Stream report
// @Description Same as Generate, streamed as server-sent events: chunk events carry text, then one done or error event. Closing the connection cancels generation.
// @Tags Reports
// @Accept json
// @Produce text/event-stream
// @Param request body ReportRequest true "Question"
// @Success 200 {string} string "Event stream"
// @Failure 400 {object} models.ErrorResponse "Missing question"
// @Failure 429 {object} models.ErrorResponse "Rate limit exceeded"
// @Failure 502 {object} models.ErrorResponse "Report generator unavailable"
// @Router /reports/stream [post]
func (h *ReportHandler) Stream(c echo.Context) error {
	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx := c.Request().Context()
	res := c.Response()
	started := false
	start := func() {
		if started {
			return
		}
		started = true
		res.Header().Set(echo.HeaderContentType, "text/event-stream")
		res.Header().Set(echo.HeaderCacheControl, "no-cache")
		res.Header().Set(echo.HeaderConnection, "keep-alive")
		res.Header().Set("X-Accel-Buffering", "no")
		res.WriteHeader(http.StatusOK)
	}

	err := h.generator.Stream(ctx, req.Question, func(chunk string) error {
		start()
		if err := writeEvent(res, "chunk", streamEvent{Content: chunk}); err != nil {
			return err
		}
		return ctx.Err()
	})

	// Nothing sent yet: answer with a plain JSON error.
	if err != nil && !started {
		return errors.Respond(c, err)
	}
	if ctx.Err() != nil {
		return nil
	}

	start()
	if err != nil {
		return writeEvent(res, "error", streamEvent{Error: domain.GetMessage(err)})
	}
	return writeEvent(res, "done", streamEvent{})
}
