package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps a collection with its size
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}
