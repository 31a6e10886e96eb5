package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeLocked          = "LOCKED"
	ErrCodeUploadRejected  = "UPLOAD_REJECTED"
	ErrCodeExternalService = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
)

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewLockedError creates an error for a transition attempted during an active testing lock
func NewLockedError(msg string) error {
	return &DomainError{
		Code:    ErrCodeLocked,
		Message: msg,
	}
}

// NewUploadRejectedError creates an error for a disallowed or oversized upload
func NewUploadRejectedError(msg string) error {
	return &DomainError{
		Code:    ErrCodeUploadRejected,
		Message: msg,
	}
}

// NewExternalServiceError wraps a failure of an external collaborator (report generator, blob store)
func NewExternalServiceError(service string, err error) error {
	return &DomainError{
		Code:    ErrCodeExternalService,
		Message: fmt.Sprintf("%s is unavailable", service),
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(msg string) error {
	return &DomainError{
		Code:    ErrCodeBadRequest,
		Message: msg,
	}
}

func hasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	return hasCode(err, ErrCodeValidation)
}

// IsLocked checks if the error is a testing-lock rejection
func IsLocked(err error) bool {
	return hasCode(err, ErrCodeLocked)
}

// IsUploadRejected checks if the error is a rejected upload
func IsUploadRejected(err error) bool {
	return hasCode(err, ErrCodeUploadRejected)
}

// IsExternalService checks if the error came from an external collaborator
func IsExternalService(err error) bool {
	return hasCode(err, ErrCodeExternalService)
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	return hasCode(err, ErrCodeInternal)
}

// IsBadRequest checks if the error is a bad request error
func IsBadRequest(err error) bool {
	return hasCode(err, ErrCodeBadRequest)
}

// GetErrorCode extracts the error code from a domain error
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// GetMessage extracts the user-facing message from a domain error
func GetMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "An internal error occurred"
}
