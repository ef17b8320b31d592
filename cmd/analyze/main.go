// Command analyze runs the market analysis pipeline on a CSV file and
// writes the aggregated result to stdout or a file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"marketcli/internal/config"
	"marketcli/internal/dataset"
	"marketcli/internal/exporter"
	"marketcli/internal/infrastructure"
	"marketcli/internal/pipeline"
	"marketcli/internal/summarizer"
	"marketcli/internal/validator"
)

func main() {
	var (
		inPath    = flag.String("in", "", "input CSV file (required)")
		outDir    = flag.String("out", "", "output directory; stdout when empty")
		format    = flag.String("format", "json", "export format: json, csv or xlsx")
		noSummary = flag.Bool("no-summary", false, "skip the generated narrative")
		strategy  = flag.String("strategy", "", "cleaning strategy override: drop_rows, drop_columns or impute")
		version   = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(infrastructure.ServiceVersion)
		return
	}

	if err := run(*inPath, *outDir, *format, *strategy, *noSummary); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run(inPath, outDir, formatName, strategy string, noSummary bool) error {
	if inPath == "" {
		return fmt.Errorf("missing required -in flag")
	}

	exportFormat, err := exporter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if strategy != "" {
		cfg.Analysis.CleaningStrategy = strategy
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// The CLI logs to stderr so exports on stdout stay clean.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	var summaryClient pipeline.Summarizer
	withSummary := false
	if cfg.LLM.Enabled && !noSummary {
		client, err := summarizer.New(ctx, cfg.LLM, logger)
		if err != nil {
			logger.Warn("summarizer disabled", slog.String("reason", err.Error()))
		} else {
			summaryClient = client
			withSummary = true
		}
	}

	table, err := dataset.ReadCSV(inPath)
	if err != nil {
		return err
	}

	pipe := pipeline.New(validator.New(logger), summaryClient, nil, nil, logger)
	result, err := pipe.Run(ctx, table, cfg.Analysis, withSummary)
	if err != nil {
		return err
	}

	exp := exporter.New(logger)
	if outDir == "" {
		return exp.Write(os.Stdout, result, exportFormat)
	}

	path, err := exp.WriteFile(outDir, result, exportFormat)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", path)
	return nil
}
