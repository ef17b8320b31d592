package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies application errors
type ErrorType string

const (
	ErrTypeSchema         ErrorType = "SCHEMA"
	ErrTypeColumnNotFound ErrorType = "COLUMN_NOT_FOUND"
	ErrTypeEmptyDataset   ErrorType = "EMPTY_DATASET"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeValidation     ErrorType = "VALIDATION"
	ErrTypeConfig         ErrorType = "CONFIG"
	ErrTypeNotFound       ErrorType = "NOT_FOUND"
	ErrTypeLLMConfig      ErrorType = "LLM_CONFIG"
	ErrTypeLLMQuota       ErrorType = "LLM_QUOTA"
	ErrTypeLLMTransport   ErrorType = "LLM_TRANSPORT"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewSchemaError reports required columns missing at validation time
func NewSchemaError(missing []string) *AppError {
	return NewAppError(ErrTypeSchema,
		fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil).
		WithContext("missing_columns", missing)
}

// NewColumnNotFoundError reports an agent's configured column absent from
// the cleaned table
func NewColumnNotFoundError(column string) *AppError {
	return NewAppError(ErrTypeColumnNotFound,
		fmt.Sprintf("column %q not found in dataset", column), nil).
		WithContext("column", column)
}

// NewEmptyDatasetError reports zero rows after cleaning
func NewEmptyDatasetError(strategy string) *AppError {
	return NewAppError(ErrTypeEmptyDataset,
		fmt.Sprintf("dataset is empty after cleaning with strategy %q", strategy), nil).
		WithContext("strategy", strategy)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewConfigError creates a configuration-related error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewLLMConfigError reports a missing or invalid summarizer credential
func NewLLMConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeLLMConfig, message, cause)
}

// NewLLMQuotaError reports rate or quota exhaustion from the text service
func NewLLMQuotaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeLLMQuota, message, cause)
}

// NewLLMTransportError reports a network or timeout failure reaching the
// text service
func NewLLMTransportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeLLMTransport, message, cause)
}

// TypeOf returns the ErrorType carried by err, or empty string when err is
// not an AppError
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries the given ErrorType
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsLLMError reports whether err came from the summarizer boundary
func IsLLMError(err error) bool {
	switch TypeOf(err) {
	case ErrTypeLLMConfig, ErrTypeLLMQuota, ErrTypeLLMTransport:
		return true
	}
	return false
}
