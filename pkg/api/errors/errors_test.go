package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"github.com/jordanlanch/adcreativelab/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newContext creates an echo.Context backed by an httptest.NewRecorder.
func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// captureLog redirects the standard logger to a buffer for the duration of fn.
func captureLog(fn func()) string {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)
	fn()
	return buf.String()
}

func TestRespond_StatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not found", domain.NewNotFoundError("ad"), http.StatusNotFound, "not_found", "ad not found"},
		{"validation", domain.NewValidationError("concept is required"), http.StatusBadRequest, "validation_error", "concept is required"},
		{"bad request", domain.NewBadRequestError("invalid id"), http.StatusBadRequest, "bad_request", "invalid id"},
		{"locked", domain.NewLockedError("ad is locked until 2026-05-10"), http.StatusLocked, "locked", "ad is locked until 2026-05-10"},
		{"upload too large", storage.Validate("video/mp4", storage.MaxUploadSize+1), http.StatusRequestEntityTooLarge, "upload_rejected", ""},
		{"upload wrong type", storage.Validate("application/zip", 10), http.StatusUnsupportedMediaType, "upload_rejected", ""},
		{"external", domain.NewExternalServiceError("report generator", errors.New("timeout")), http.StatusBadGateway, "external_service_error", "report generator is unavailable"},
		{"wrapped not found", fmt.Errorf("loading: %w", domain.NewNotFoundError("avatar")), http.StatusNotFound, "not_found", "avatar not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/api/v1/test")
			captureLog(func() {
				require.NoError(t, Respond(c, tt.err))
			})

			assert.Equal(t, tt.status, rec.Code)
			resp := parseBody(t, rec)
			assert.Equal(t, tt.code, resp.Error)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Message)
			} else {
				assert.NotEmpty(t, resp.Message)
			}
		})
	}
}

func TestRespond_InternalHidesDetails(t *testing.T) {
	internalMsg := "pq: relation \"ads\" does not exist"

	for _, err := range []error{errors.New(internalMsg), domain.NewInternalError(errors.New(internalMsg))} {
		c, rec := newContext(http.MethodGet, "/api/v1/ads")
		logged := captureLog(func() {
			require.NoError(t, Respond(c, err))
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pq:")
		assert.Equal(t, "internal_error", parseBody(t, rec).Error)
		assert.Contains(t, logged, "[INTERNAL ERROR]")
		assert.Contains(t, logged, internalMsg)
	}
}

func TestRespond_ExternalLogsCause(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/reports")
	logged := captureLog(func() {
		_ = Respond(c, domain.NewExternalServiceError("report generator", errors.New("401 invalid api key")))
	})

	assert.NotContains(t, rec.Body.String(), "api key")
	assert.Contains(t, logged, "401 invalid api key")
}

func TestValidationError(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/ads")
	logged := captureLog(func() {
		require.NoError(t, ValidationError(c, errors.New("json: cannot unmarshal number into Go struct field")))
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	resp := parseBody(t, rec)
	assert.Equal(t, "validation_error", resp.Error)
	assert.NotContains(t, resp.Message, "unmarshal")
	assert.Contains(t, logged, "[VALIDATION ERROR]")
}

func TestNotFoundAndBadRequest(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/v1/ads/x")
	require.NoError(t, NotFoundError(c, "ad"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "The requested ad was not found.", parseBody(t, rec).Message)

	c, rec = newContext(http.MethodGet, "/api/v1/ads")
	require.NoError(t, BadRequestError(c, "invalid status filter"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", parseBody(t, rec).Error)
}
