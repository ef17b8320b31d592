package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Common error types following RFC 7807
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeTimeout     = "/errors/timeout"
	TypePayloadSize = "/errors/payload-too-large"
)

// Domain-specific error types
const (
	TypeSchema         = "/errors/dataset/schema"
	TypeColumnNotFound = "/errors/dataset/column-not-found"
	TypeEmptyDataset   = "/errors/dataset/empty"
	TypeParsing        = "/errors/dataset/parse-failed"
	TypeLLMConfig      = "/errors/summary/credential"
	TypeLLMQuota       = "/errors/summary/quota"
	TypeLLMTransport   = "/errors/summary/transport"
)

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})
	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status
	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}
	for k, v := range pd.Extensions {
		data[k] = v
	}
	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("stack", string(debug.Stack()))
	}

	render.Render(w, r, problem)
}

// HandlePanic converts a recovered panic into a 500 response
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, v interface{}) {
	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", v),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)
	h.HandleError(w, r, fmt.Errorf("panic: %v", v))
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing the request",
		r.URL.Path,
	)
}

// appErrorToProblem maps the analysis error taxonomy onto HTTP statuses.
// Dataset errors are client problems (the uploaded file or the configured
// columns), summarizer errors are upstream problems.
func (h *ErrorHandler) appErrorToProblem(err *AppError, r *http.Request) *ProblemDetails {
	var problem *ProblemDetails

	switch err.Type {
	case ErrTypeSchema:
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeSchema,
			"Required Columns Missing", err.Message, r.URL.Path)
	case ErrTypeColumnNotFound:
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeColumnNotFound,
			"Configured Column Not Found", err.Message, r.URL.Path)
	case ErrTypeEmptyDataset:
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeEmptyDataset,
			"Empty Dataset", err.Message, r.URL.Path)
	case ErrTypeParsing:
		problem = NewProblemDetails(http.StatusBadRequest, TypeParsing,
			"Dataset Parse Failed", err.Message, r.URL.Path)
	case ErrTypeValidation:
		problem = NewProblemDetails(http.StatusBadRequest, TypeValidation,
			"Validation Failed", err.Message, r.URL.Path)
	case ErrTypeNotFound:
		problem = NewProblemDetails(http.StatusNotFound, TypeNotFound,
			"Resource Not Found", err.Message, r.URL.Path)
	case ErrTypeLLMConfig:
		problem = NewProblemDetails(http.StatusBadGateway, TypeLLMConfig,
			"Summarizer Credential Invalid", err.Message, r.URL.Path)
	case ErrTypeLLMQuota:
		problem = NewProblemDetails(http.StatusBadGateway, TypeLLMQuota,
			"Summarizer Quota Exceeded", err.Message, r.URL.Path).
			WithExtension("retry_after", 60)
	case ErrTypeLLMTransport:
		problem = NewProblemDetails(http.StatusBadGateway, TypeLLMTransport,
			"Summarizer Unreachable", err.Message, r.URL.Path)
	default:
		problem = NewProblemDetails(http.StatusInternalServerError, TypeInternal,
			"Internal Server Error", err.Message, r.URL.Path)
	}

	problem.WithExtension("error_type", string(err.Type))
	for k, v := range err.Context {
		problem.WithExtension(k, v)
	}
	return problem
}

// apiErrorToProblem converts transport-level APIError values
func (h *ErrorHandler) apiErrorToProblem(err *APIError, r *http.Request) *ProblemDetails {
	return err.Problem(r.URL.Path)
}
