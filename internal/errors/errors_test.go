package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewAppError(ErrTypeParsing, "bad input", nil)
	assert.Equal(t, "[PARSING] bad input", err.Error())

	wrapped := NewAppError(ErrTypeParsing, "bad input", fmt.Errorf("line 3"))
	assert.Equal(t, "[PARSING] bad input: line 3", wrapped.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewAppError(ErrTypeConfig, "wrapper", cause)

	assert.ErrorIs(t, err, cause)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeSchema, TypeOf(NewSchemaError([]string{"price"})))
	assert.Equal(t, ErrorType(""), TypeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))

	// Type survives wrapping.
	wrapped := fmt.Errorf("pipeline: %w", NewEmptyDatasetError("drop_rows"))
	assert.Equal(t, ErrTypeEmptyDataset, TypeOf(wrapped))
	assert.True(t, IsType(wrapped, ErrTypeEmptyDataset))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		contains string
	}{
		{"schema", NewSchemaError([]string{"brand", "price"}), ErrTypeSchema, "brand, price"},
		{"column not found", NewColumnNotFoundError("cost"), ErrTypeColumnNotFound, `"cost"`},
		{"empty dataset", NewEmptyDatasetError("drop_rows"), ErrTypeEmptyDataset, "drop_rows"},
		{"llm config", NewLLMConfigError("no key", nil), ErrTypeLLMConfig, "no key"},
		{"llm quota", NewLLMQuotaError("quota", nil), ErrTypeLLMQuota, "quota"},
		{"llm transport", NewLLMTransportError("timeout", nil), ErrTypeLLMTransport, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Contains(t, tt.err.Error(), tt.contains)
		})
	}
}

func TestIsLLMError(t *testing.T) {
	assert.True(t, IsLLMError(NewLLMQuotaError("q", nil)))
	assert.True(t, IsLLMError(NewLLMConfigError("c", nil)))
	assert.True(t, IsLLMError(NewLLMTransportError("t", nil)))
	assert.False(t, IsLLMError(NewSchemaError([]string{"x"})))
	assert.False(t, IsLLMError(nil))
}

func TestWithContext(t *testing.T) {
	err := NewAppError(ErrTypeValidation, "too large", nil).
		WithContext("size", 1024).
		WithContext("limit", 512)

	require.NotNil(t, err.Context)
	assert.Equal(t, 1024, err.Context["size"])
	assert.Equal(t, 512, err.Context["limit"])
}
