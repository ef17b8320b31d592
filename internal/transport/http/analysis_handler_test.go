package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketcli/internal/config"
	apperrors "marketcli/internal/errors"
	"marketcli/internal/exporter"
	"marketcli/internal/pipeline"
	"marketcli/internal/services"
	"marketcli/internal/validation"
	"marketcli/internal/validator"
	"marketcli/pkg/contracts/domain"
)

const sampleCSV = `brand,price,feature
Acme,10,"wifi, bluetooth"
acme,12,wifi
Zeta,9,gps
`

func newTestRouter(t *testing.T) (chi.Router, *services.AnalysisService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pipe := pipeline.New(validator.New(logger), nil, nil, nil, logger)
	svc := services.NewAnalysisService(pipe, exporter.New(logger), config.AnalysisConfig{
		BrandColumn:      "brand",
		PriceColumn:      "price",
		FeatureColumn:    "feature",
		TopBrands:        10,
		TopFeatures:      15,
		TopGaps:          10,
		GapThreshold:     -0.5,
		FeatureDelimiter: ",",
		CleaningStrategy: config.StrategyDropRows,
	}, false, nil, logger)

	handler := NewAnalysisHandler(
		svc,
		validation.NewFileValidator(1<<20, []string{".csv"}, logger),
		apperrors.NewErrorHandler(logger, false),
		1<<20,
		logger,
	)

	r := chi.NewRouter()
	r.Mount("/api/analysis", handler.Routes())
	return r, svc
}

func uploadRequest(t *testing.T, filename, content, params string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)

	if params != "" {
		require.NoError(t, mw.WriteField("params", params))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateAnalysis(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "products.csv", sampleCSV, ""))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Payload.RunID)
	assert.Len(t, result.Payload.Agents, 4)
	assert.Equal(t, domain.AgentBrand, result.Payload.Agents[0].AgentName)
}

func TestCreateAnalysisWithParams(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "products.csv", sampleCSV, `{"top_brands": 1}`))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateAnalysisRejectsBadParams(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "products.csv", sampleCSV, `{not json`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "params")
}

func TestCreateAnalysisRejectsWrongExtension(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "products.xlsx", sampleCSV, ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAnalysisRejectsMissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("params", "{}"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAnalysisSchemaFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "products.csv", "brand,cost\nAcme,10\n", ""))

	// The price column is missing from the upload.
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, apperrors.TypeColumnNotFound, problem["type"])
}

func TestGetAnalysis(t *testing.T) {
	router, svc := newTestRouter(t)

	result, err := svc.Analyze(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		[]byte(sampleCSV), services.AnalyzeParams{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/"+result.Payload.RunID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), result.Payload.RunID)
}

func TestGetAnalysisNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analysis/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportAnalysis(t *testing.T) {
	router, svc := newTestRouter(t)

	result, err := svc.Analyze(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		[]byte(sampleCSV), services.AnalyzeParams{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/analysis/"+result.Payload.RunID+"/export/csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), result.Payload.RunID)
	assert.Contains(t, rec.Body.String(), "run_id")
}

func TestExportAnalysisBadFormat(t *testing.T) {
	router, svc := newTestRouter(t)

	result, err := svc.Analyze(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		[]byte(sampleCSV), services.AnalyzeParams{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/analysis/"+result.Payload.RunID+"/export/pdf", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
