// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// FalloResponse is returned when an assistant query fails after processing
// started; it carries the elapsed time and the session the attempt was logged to.
type FalloResponse struct {
	Success         bool   `json:"success"`
	Detail          string `json:"detail"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	SessionID       *uint  `json:"session_id,omitempty"`
}
