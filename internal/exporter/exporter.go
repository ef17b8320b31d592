package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "marketcli/internal/errors"
	"marketcli/internal/pipeline"
)

// Format identifies an export format
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
)

// ParseFormat validates a format string
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatExcel, "excel":
		return FormatExcel, nil
	}
	return "", apperrors.NewAppError(apperrors.ErrTypeValidation,
		fmt.Sprintf("unsupported export format: %q", s), nil)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Exporter serializes aggregated analysis results
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger.With(slog.String("component", "exporter"))}
}

// Write serializes the result to w in the given format
func (e *Exporter) Write(w io.Writer, result *pipeline.Result, format Format) error {
	switch format {
	case FormatJSON:
		return e.writeJSON(w, result)
	case FormatCSV:
		return e.writeCSV(w, result)
	case FormatExcel:
		return e.writeExcel(w, result)
	}
	return apperrors.NewAppError(apperrors.ErrTypeValidation,
		fmt.Sprintf("unsupported export format: %q", format), nil)
}

// WriteFile serializes the result into dir, named after the run ID.
// Returns the written path.
func (e *Exporter) WriteFile(dir string, result *pipeline.Result, format Format) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("analysis_%s.%s", result.Payload.RunID, format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := e.Write(f, result, format); err != nil {
		return "", err
	}

	e.logger.Info("exported analysis",
		slog.String("path", path),
		slog.String("format", string(format)))
	return path, nil
}

// writeJSON emits the aggregated payload and quality report as indented
// JSON
func (e *Exporter) writeJSON(w io.Writer, result *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return nil
}
