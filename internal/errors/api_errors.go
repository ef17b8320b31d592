package errors

import (
	"encoding/json"
	"net/http"
)

// APIError is a transport-level error with a fixed status code and machine
// readable error code, for responses produced outside a service call, such
// as middleware rejections.
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for responses written by middleware
var (
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
		"Rate limit exceeded. Please retry after 60 seconds")
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR",
		"An unexpected error occurred")
)

// Problem converts the error to RFC 7807 problem details. The error code is
// carried as an extension so clients can branch without parsing the title.
func (e *APIError) Problem(instance string) *ProblemDetails {
	problemType := TypeInternal
	switch e.StatusCode {
	case http.StatusBadRequest:
		problemType = TypeValidation
	case http.StatusNotFound:
		problemType = TypeNotFound
	case http.StatusTooManyRequests:
		problemType = TypeRateLimit
	case http.StatusRequestEntityTooLarge:
		problemType = TypePayloadSize
	}

	problem := NewProblemDetails(e.StatusCode, problemType,
		http.StatusText(e.StatusCode), e.Message, instance)
	problem.WithExtension("error_code", e.ErrorCode)
	if e.Details != nil {
		problem.WithExtension("details", e.Details)
	}
	return problem
}

// WriteProblem writes the error as an application/problem+json response.
// Middleware responds through this before the chi render chain is in play.
func (e *APIError) WriteProblem(w http.ResponseWriter, instance, traceID string) {
	problem := e.Problem(instance)
	if traceID != "" {
		problem.WithExtension("trace_id", traceID)
	}

	data, err := json.Marshal(problem)
	if err != nil {
		http.Error(w, e.Message, e.StatusCode)
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(problem.Status)
	w.Write(data)
}
