package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the instruments recorded by the analysis pipeline
// and the summarizer boundary.
type PipelineMetrics struct {
	RunsTotal       metric.Int64Counter
	RunDuration     metric.Float64Histogram
	RowsProcessed   metric.Int64Counter
	CacheLookups    metric.Int64Counter
	SummarizerCalls metric.Int64Counter
	ExportsTotal    metric.Int64Counter
}

// NewPipelineMetrics registers the pipeline instruments on the given meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	m := &PipelineMetrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter("marketcli.pipeline.runs",
		metric.WithDescription("Completed pipeline runs by outcome")); err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}
	if m.RunDuration, err = meter.Float64Histogram("marketcli.pipeline.duration",
		metric.WithDescription("Pipeline run duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	if m.RowsProcessed, err = meter.Int64Counter("marketcli.pipeline.rows",
		metric.WithDescription("Rows processed after cleaning")); err != nil {
		return nil, fmt.Errorf("create rows counter: %w", err)
	}
	if m.CacheLookups, err = meter.Int64Counter("marketcli.cache.lookups",
		metric.WithDescription("Result cache lookups by outcome")); err != nil {
		return nil, fmt.Errorf("create cache counter: %w", err)
	}
	if m.SummarizerCalls, err = meter.Int64Counter("marketcli.summarizer.calls",
		metric.WithDescription("Outbound summarizer calls by outcome")); err != nil {
		return nil, fmt.Errorf("create summarizer counter: %w", err)
	}
	if m.ExportsTotal, err = meter.Int64Counter("marketcli.exports",
		metric.WithDescription("Exports by format")); err != nil {
		return nil, fmt.Errorf("create exports counter: %w", err)
	}

	return m, nil
}

// RecordRun records one pipeline run with its outcome and duration
func (m *PipelineMetrics) RecordRun(ctx context.Context, outcome string, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, elapsed.Seconds(), attrs)
	if rows > 0 {
		m.RowsProcessed.Add(ctx, int64(rows))
	}
}

// RecordCacheLookup records a cache hit or miss
func (m *PipelineMetrics) RecordCacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordSummarizerCall records one outbound summarizer call
func (m *PipelineMetrics) RecordSummarizerCall(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.SummarizerCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordExport records one export by format
func (m *PipelineMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}
