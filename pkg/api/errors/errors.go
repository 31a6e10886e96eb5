package errors

import (
	"errors"
	"log"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/adcreativelab/pkg/domain"
	"github.com/jordanlanch/adcreativelab/pkg/models"
	"github.com/jordanlanch/adcreativelab/pkg/storage"
	"github.com/labstack/echo/v4"
)

// Respond writes err as a JSON error response. Domain errors carry a safe,
// user-facing message; anything else becomes a generic 500.
func Respond(c echo.Context, err error) error {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return InternalError(c, err)
	}

	switch de.Code {
	case domain.ErrCodeNotFound:
		return write(c, http.StatusNotFound, "not_found", de.Message)
	case domain.ErrCodeValidation:
		return write(c, http.StatusBadRequest, "validation_error", de.Message)
	case domain.ErrCodeBadRequest:
		return write(c, http.StatusBadRequest, "bad_request", de.Message)
	case domain.ErrCodeLocked:
		return write(c, http.StatusLocked, "locked", de.Message)
	case domain.ErrCodeUploadRejected:
		status := http.StatusUnsupportedMediaType
		if errors.Is(err, storage.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		return write(c, status, "upload_rejected", de.Message)
	case domain.ErrCodeExternalService:
		log.Printf("[EXTERNAL SERVICE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
		capture(c, err)
		return write(c, http.StatusBadGateway, "external_service_error", de.Message)
	default:
		return InternalError(c, err)
	}
}

func write(c echo.Context, status int, code, message string) error {
	return c.JSON(status, models.ErrorResponse{Error: code, Message: message})
}

// capture reports err to Sentry through the request hub, when one is attached.
func capture(c echo.Context, err error) {
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("path", c.Path())
			scope.SetTag("method", c.Request().Method)
			hub.CaptureException(err)
		})
	}
}

// ValidationError returns a validation error for malformed request data
// without exposing parser details.
func ValidationError(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return write(c, http.StatusBadRequest, "validation_error",
		"Invalid request data. Please check your input and try again.")
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
	capture(c, err)

	return write(c, http.StatusInternalServerError, "internal_error",
		"An internal error occurred. Please try again later.")
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return write(c, http.StatusNotFound, "not_found", "The requested "+resource+" was not found.")
}

// BadRequestError returns a 400 with a caller-safe message.
func BadRequestError(c echo.Context, message string) error {
	return write(c, http.StatusBadRequest, "bad_request", message)
}
