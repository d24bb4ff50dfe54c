// Package apierror provides the error envelopes returned by the API.
// Every 4xx/5xx body goes through it so internal details (DB errors, stack
// traces) never reach clients.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries the failed validator tag per field.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// Internal is the only body ever sent with a 500.
var Internal = New("internal server error")
