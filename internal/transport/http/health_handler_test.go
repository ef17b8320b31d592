package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcli/internal/services"
)

func TestHealthCheck(t *testing.T) {
	handler := NewHealthHandler(services.NewHealthService("v1.0.0", true))

	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "v1.0.0", status.Version)
	assert.True(t, status.SummaryEnabled)
	assert.NotEmpty(t, status.GoVersion)
}
