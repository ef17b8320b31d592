package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"marketcli/internal/config"
	apperrors "marketcli/internal/errors"
	"marketcli/pkg/contracts/domain"
)

// MaxTemperature is the ceiling enforced at the call site. Values above it
// are clamped, not rejected.
const MaxTemperature = 0.3

// Client issues exactly one text-generation request per Summarize call.
// There is no retry: the agents' numeric output stays valid whether or not
// the narrative succeeds, and the at-most-one-call contract must hold.
type Client struct {
	genai       *genai.Client
	model       string
	temperature float64
	maxTokens   int32
	logger      *slog.Logger
}

// New creates a summarizer client from configuration. A missing credential
// yields an LLM_CONFIG error so callers can degrade to agents-only output.
func New(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	key, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, apperrors.NewLLMConfigError("failed to resolve API key", err)
	}
	if key == "" {
		return nil, apperrors.NewLLMConfigError(
			"no API key configured; set "+config.GeminiAPIKeyEnv+" or llm.api_key_file", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.NewLLMConfigError("failed to create generative AI client", err)
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a client around an existing SDK client handle.
// Tests use this with a client pointed at a local HTTP server.
func NewWithClient(client *genai.Client, cfg config.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	temperature := cfg.Temperature
	if temperature > MaxTemperature {
		temperature = MaxTemperature
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}

	maxTokens := int32(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &Client{
		genai:       client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger.With(slog.String("component", "summarizer")),
	}
}

// Model returns the model name reported alongside generated summaries
func (c *Client) Model() string {
	return c.model
}

// Summarize renders the aggregated agent results into the prompt template
// and issues a single bounded-temperature generation request. Failures come
// back as typed LLM errors; the method never panics and never fabricates a
// summary.
func (c *Client) Summarize(ctx context.Context, payload *domain.AggregatedPayload) (*domain.LLMSummary, error) {
	prompt, err := renderPrompt(payload)
	if err != nil {
		return nil, apperrors.NewLLMConfigError("failed to render prompt template", err)
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.temperature)),
		TopP:            genai.Ptr[float32](0.95),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: c.maxTokens,
	}

	c.logger.InfoContext(ctx, "requesting summary",
		slog.String("model", c.model),
		slog.Float64("temperature", c.temperature),
		slog.Int("agents", len(payload.Agents)))

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return nil, c.classifyError(err)
	}

	text := extractText(resp)
	if text == "" {
		return nil, apperrors.NewLLMTransportError("model returned no candidates", nil)
	}

	return &domain.LLMSummary{
		Summary: text,
		Model:   c.model,
	}, nil
}

// classifyError maps transport-level failures onto the summarizer error
// taxonomy
func (c *Client) classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return apperrors.NewLLMQuotaError("generation quota exceeded", err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewLLMConfigError("API key rejected", err)
		default:
			return apperrors.NewLLMTransportError(
				fmt.Sprintf("generation request failed with status %d", apiErr.Code), err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.NewLLMTransportError("generation request timed out", err)
	}
	return apperrors.NewLLMTransportError("generation request failed", err)
}

// extractText concatenates the text parts of the first candidate
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
