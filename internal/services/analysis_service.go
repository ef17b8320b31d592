package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"marketcli/internal/config"
	apperrors "marketcli/internal/errors"
	"marketcli/internal/exporter"
	"marketcli/internal/infrastructure"
	"marketcli/internal/pipeline"
)

// maxRetainedRuns bounds the in-memory run store; oldest runs are evicted
// first
const maxRetainedRuns = 100

// AnalyzeParams carries per-request overrides of the configured analysis
// parameters. Zero values fall back to configuration.
type AnalyzeParams struct {
	BrandColumn      string   `json:"brand_column"`
	PriceColumn      string   `json:"price_column"`
	FeatureColumn    string   `json:"feature_column"`
	TopBrands        int      `json:"top_brands" validate:"omitempty,min=1,max=100"`
	TopFeatures      int      `json:"top_features" validate:"omitempty,min=1,max=100"`
	GapThreshold     *float64 `json:"gap_threshold" validate:"omitempty,max=0"`
	FeatureDelimiter string   `json:"feature_delimiter"`
	CleaningStrategy string   `json:"cleaning_strategy" validate:"omitempty,oneof=drop_rows drop_columns impute"`
	DisableSummary   bool     `json:"disable_summary"`
}

// AnalysisService runs the pipeline on uploaded datasets and retains
// results for later retrieval and export.
type AnalysisService struct {
	pipeline       *pipeline.Pipeline
	exporter       *exporter.Exporter
	analysisCfg    config.AnalysisConfig
	summaryEnabled bool
	metrics        *infrastructure.PipelineMetrics
	logger         *slog.Logger

	mu    sync.RWMutex
	runs  map[string]*pipeline.Result
	order []string
}

// NewAnalysisService creates the analysis service. metrics may be nil.
func NewAnalysisService(p *pipeline.Pipeline, e *exporter.Exporter, analysisCfg config.AnalysisConfig, summaryEnabled bool, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		pipeline:       p,
		exporter:       e,
		analysisCfg:    analysisCfg,
		summaryEnabled: summaryEnabled,
		metrics:        metrics,
		logger:         logger.With(slog.String("component", "analysis_service")),
		runs:           make(map[string]*pipeline.Result),
	}
}

// Analyze runs the full pipeline on raw CSV bytes and stores the result
func (s *AnalysisService) Analyze(ctx context.Context, data []byte, params AnalyzeParams) (*pipeline.Result, error) {
	cfg := s.mergeParams(params)
	withSummary := s.summaryEnabled && !params.DisableSummary

	result, err := s.pipeline.RunBytes(ctx, data, cfg, withSummary)
	if err != nil {
		return nil, err
	}

	s.store(result)
	s.logger.InfoContext(ctx, "analysis stored",
		slog.String("run_id", result.Payload.RunID),
		slog.Int("rows", result.Payload.TotalRecords),
		slog.Bool("summary", result.Payload.LLMSummary != nil))
	return result, nil
}

// Get returns a previously computed run
func (s *AnalysisService) Get(runID string) (*pipeline.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.runs[runID]
	if !ok {
		return nil, apperrors.NewAppError(apperrors.ErrTypeNotFound,
			"analysis run not found: "+runID, nil).WithContext("run_id", runID)
	}
	return result, nil
}

// Export serializes a stored run to w in the requested format
func (s *AnalysisService) Export(ctx context.Context, runID string, format exporter.Format, w io.Writer) error {
	result, err := s.Get(runID)
	if err != nil {
		return err
	}
	if err := s.exporter.Write(w, result, format); err != nil {
		return err
	}
	s.metrics.RecordExport(ctx, string(format))
	return nil
}

// mergeParams overlays request parameters onto the configured defaults
func (s *AnalysisService) mergeParams(params AnalyzeParams) config.AnalysisConfig {
	cfg := s.analysisCfg
	if params.BrandColumn != "" {
		cfg.BrandColumn = params.BrandColumn
	}
	if params.PriceColumn != "" {
		cfg.PriceColumn = params.PriceColumn
	}
	if params.FeatureColumn != "" {
		cfg.FeatureColumn = params.FeatureColumn
	}
	if params.TopBrands > 0 {
		cfg.TopBrands = params.TopBrands
	}
	if params.TopFeatures > 0 {
		cfg.TopFeatures = params.TopFeatures
	}
	if params.GapThreshold != nil {
		cfg.GapThreshold = *params.GapThreshold
	}
	if params.FeatureDelimiter != "" {
		cfg.FeatureDelimiter = params.FeatureDelimiter
	}
	if params.CleaningStrategy != "" {
		cfg.CleaningStrategy = params.CleaningStrategy
	}
	return cfg
}

// store retains a run, evicting the oldest beyond the cap
func (s *AnalysisService) store(result *pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := result.Payload.RunID
	if _, exists := s.runs[runID]; exists {
		return
	}

	s.runs[runID] = result
	s.order = append(s.order, runID)
	for len(s.order) > maxRetainedRuns {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
}
