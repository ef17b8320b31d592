package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"marketcli/internal/agents"
	"marketcli/internal/config"
	"marketcli/internal/dataset"
	"marketcli/internal/infrastructure"
	"marketcli/internal/validator"
	"marketcli/pkg/contracts/domain"
)

// Summarizer generates the optional narrative for an aggregated payload.
// Implementations must issue at most one outbound request per call.
type Summarizer interface {
	Summarize(ctx context.Context, payload *domain.AggregatedPayload) (*domain.LLMSummary, error)
}

// Result is the output of one pipeline invocation
type Result struct {
	Payload domain.AggregatedPayload `json:"payload"`
	Quality domain.QualityReport     `json:"quality"`
}

// Pipeline runs the full analysis: validate and clean, run the four agents
// in fixed order, aggregate, then optionally summarize. It holds no mutable
// state across invocations beyond the optional result cache.
type Pipeline struct {
	validator  *validator.Validator
	summarizer Summarizer
	cache      *Cache
	metrics    *infrastructure.PipelineMetrics
	logger     *slog.Logger
}

// New creates a pipeline. summarizer, cache and metrics may be nil; the
// pipeline then runs agents-only, uncached, or unmetered respectively.
func New(v *validator.Validator, summarizer Summarizer, cache *Cache, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		validator:  v,
		summarizer: summarizer,
		cache:      cache,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "pipeline")),
	}
}

// RunBytes parses raw CSV bytes and runs the pipeline, consulting the
// result cache keyed by content hash and parameters. Identical concurrent
// requests for the same key collapse into a single computation.
func (p *Pipeline) RunBytes(ctx context.Context, data []byte, cfg config.AnalysisConfig, withSummary bool) (*Result, error) {
	if p.cache == nil {
		table, err := dataset.ReadFrom(newByteReader(data))
		if err != nil {
			return nil, err
		}
		return p.Run(ctx, table, cfg, withSummary)
	}

	key := Key(data, cfg, withSummary)
	result, cached, err := p.cache.GetOrCompute(key, func() (*Result, error) {
		table, err := dataset.ReadFrom(newByteReader(data))
		if err != nil {
			return nil, err
		}
		return p.Run(ctx, table, cfg, withSummary)
	})
	p.metrics.RecordCacheLookup(ctx, cached)
	if cached {
		p.logger.InfoContext(ctx, "serving cached analysis", slog.String("cache_key", key[:12]))
	}
	return result, err
}

// Run executes the pipeline on an already parsed table. Validation and
// agent errors are fatal; a summarizer failure is recorded on the payload
// and the agent results remain usable.
func (p *Pipeline) Run(ctx context.Context, raw *dataset.Table, cfg config.AnalysisConfig, withSummary bool) (*Result, error) {
	start := time.Now()

	clean, quality, err := p.validator.Clean(raw, validator.Options{
		Strategy:           validator.Strategy(cfg.CleaningStrategy),
		RequiredColumns:    cfg.RequiredColumns,
		CompletenessWeight: cfg.CompletenessWeight,
		UniquenessWeight:   cfg.UniquenessWeight,
	})
	if err != nil {
		p.metrics.RecordRun(ctx, "validation_failed", 0, time.Since(start))
		return nil, err
	}

	brand, err := agents.AnalyzeBrands(clean, agents.BrandConfig{
		Column: cfg.BrandColumn,
		TopN:   cfg.TopBrands,
	})
	if err != nil {
		p.metrics.RecordRun(ctx, "agent_failed", 0, time.Since(start))
		return nil, err
	}

	pricing, err := agents.AnalyzePricing(clean, agents.PricingConfig{
		Column: cfg.PriceColumn,
	})
	if err != nil {
		p.metrics.RecordRun(ctx, "agent_failed", 0, time.Since(start))
		return nil, err
	}

	feature, err := agents.AnalyzeFeatures(clean, agents.FeatureConfig{
		Column:    cfg.FeatureColumn,
		TopN:      cfg.TopFeatures,
		Delimiter: cfg.FeatureDelimiter,
	})
	if err != nil {
		p.metrics.RecordRun(ctx, "agent_failed", 0, time.Since(start))
		return nil, err
	}

	gap, err := agents.AnalyzeGaps(clean, agents.GapConfig{
		BrandColumn:   cfg.BrandColumn,
		FeatureColumn: cfg.FeatureColumn,
		Threshold:     &cfg.GapThreshold,
		Delimiter:     cfg.FeatureDelimiter,
		TopN:          cfg.TopGaps,
	})
	if err != nil {
		p.metrics.RecordRun(ctx, "agent_failed", 0, time.Since(start))
		return nil, err
	}

	result := &Result{
		Payload: domain.AggregatedPayload{
			RunID:        uuid.New().String(),
			GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
			TotalRecords: clean.RowCount(),
			// Fixed order: brand, pricing, feature, gap.
			Agents: []domain.AgentResult{brand, pricing, feature, gap},
		},
		Quality: *quality,
	}

	if withSummary && p.summarizer != nil {
		summary, err := p.summarizer.Summarize(ctx, &result.Payload)
		if err != nil {
			// The narrative is optional; keep the agent results and surface
			// the failure on the payload.
			result.Payload.SummaryError = err.Error()
			p.metrics.RecordSummarizerCall(ctx, "error")
			p.logger.WarnContext(ctx, "summary generation failed",
				slog.String("error", err.Error()))
		} else {
			result.Payload.LLMSummary = summary
			p.metrics.RecordSummarizerCall(ctx, "success")
		}
	}

	p.metrics.RecordRun(ctx, "success", clean.RowCount(), time.Since(start))
	p.logger.InfoContext(ctx, "pipeline run complete",
		slog.String("run_id", result.Payload.RunID),
		slog.Int("rows", clean.RowCount()),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("summary", result.Payload.LLMSummary != nil))

	return result, nil
}
