package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "marketcli/internal/errors"
	"marketcli/internal/exporter"
	"marketcli/internal/pipeline"
	"marketcli/internal/services"
	"marketcli/internal/validation"
)

// AnalysisService is the contract the HTTP layer needs from the analysis
// service
type AnalysisService interface {
	Analyze(ctx context.Context, data []byte, params services.AnalyzeParams) (*pipeline.Result, error)
	Get(runID string) (*pipeline.Result, error)
	Export(ctx context.Context, runID string, format exporter.Format, w io.Writer) error
}

// AnalysisHandler serves the analysis API: upload a CSV, fetch a run, export
// a run.
type AnalysisHandler struct {
	service       AnalysisService
	fileValidator *validation.FileValidator
	errorHandler  *apperrors.ErrorHandler
	maxUploadSize int64
	logger        *slog.Logger
}

// NewAnalysisHandler creates an analysis handler
func NewAnalysisHandler(service AnalysisService, fileValidator *validation.FileValidator, errorHandler *apperrors.ErrorHandler, maxUploadSize int64, logger *slog.Logger) *AnalysisHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisHandler{
		service:       service,
		fileValidator: fileValidator,
		errorHandler:  errorHandler,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "analysis_handler")),
	}
}

// Routes returns the analysis route tree
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateAnalysis)
	r.Get("/{runID}", h.GetAnalysis)
	r.Get("/{runID}/export/{format}", h.ExportAnalysis)
	return r
}

// CreateAnalysis accepts a multipart CSV upload under the "file" field plus
// optional analysis parameters in a "params" JSON field, runs the pipeline
// and returns the aggregated result.
func (h *AnalysisHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1024)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		h.errorHandler.HandleError(w, r, apperrors.NewAppError(apperrors.ErrTypeValidation,
			"failed to parse multipart upload", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.NewAppError(apperrors.ErrTypeValidation,
			`multipart field "file" is required`, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.NewParsingError("failed to read uploaded file", err))
		return
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if err := h.fileValidator.ValidateUpload(header.Filename, int64(len(data)), head); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	params, err := parseParams(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Analyze(r.Context(), data, params)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "analysis created",
		slog.String("run_id", result.Payload.RunID),
		slog.String("filename", header.Filename),
		slog.Int("rows", result.Payload.TotalRecords))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// GetAnalysis returns a previously computed run
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	result, err := h.service.Get(runID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// ExportAnalysis streams a stored run in the requested format
func (h *AnalysisHandler) ExportAnalysis(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Resolve before writing the body so a missing run still yields a
	// proper problem response.
	if _, err := h.service.Get(runID); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="analysis_%s.%s"`, runID, format))

	if err := h.service.Export(r.Context(), runID, format, w); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed mid-stream",
			slog.String("run_id", runID),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

// parseParams decodes the optional "params" form field
func parseParams(r *http.Request) (services.AnalyzeParams, error) {
	var params services.AnalyzeParams
	raw := r.FormValue("params")
	if raw == "" {
		return params, nil
	}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return params, apperrors.NewAppError(apperrors.ErrTypeValidation,
			`invalid "params" field, expected JSON`, err)
	}
	return params, nil
}
