package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"deepmirror/internal/config"
	"deepmirror/internal/domain"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/metrics"
)

// DefaultModel is used when no model is configured
const DefaultModel = "qwen-plus"

// Config configures an OpenAI-compatible provider
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	StructuredMode string // config.StructuredModeJSONObject or config.StructuredModeJSONSchema
	MaxRetries     int
}

// Provider implements llm.Provider against any OpenAI-compatible chat
// completions endpoint (DashScope by default).
type Provider struct {
	client         openai.Client
	model          string
	structuredMode string
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// NewProvider creates a provider. m may be nil.
func NewProvider(cfg Config, m *metrics.Metrics, logger *slog.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	mode := cfg.StructuredMode
	switch mode {
	case "":
		mode = config.StructuredModeJSONObject
	case config.StructuredModeJSONObject, config.StructuredModeJSONSchema:
	default:
		return nil, fmt.Errorf("unsupported structured mode: %s", mode)
	}

	return &Provider{
		client:         openai.NewClient(opts...),
		model:          model,
		structuredMode: mode,
		metrics:        m,
		logger:         logger,
	}, nil
}

// Model returns the model identifier
func (p *Provider) Model() string {
	return p.model
}

// StructuredMode returns how structured output is requested
func (p *Provider) StructuredMode() string {
	return p.structuredMode
}

// GenerateStructured requests a JSON object for req.Schema.
//
// In json_object mode the schema is appended to the system prompt and the
// provider is only asked for "some JSON object"; in json_schema mode the
// schema is sent as a strict response format.
func (p *Provider) GenerateStructured(ctx context.Context, req *llmSvc.StructuredRequest) (out json.RawMessage, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveGeneration(req.Op, start, err) }()

	system := req.System
	params := openai.ChatCompletionNewParams{
		Model: p.model,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	switch p.structuredMode {
	case config.StructuredModeJSONSchema:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.SchemaName,
					Description: openai.String("Structured response schema"),
					Schema:      req.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	default:
		schemaJSON, err := json.Marshal(req.Schema)
		if err != nil {
			return nil, domain.NewGenerationError(req.Op, fmt.Errorf("marshal schema: %w", err))
		}
		system = system + "\n\nRespond with a single JSON object that conforms to this JSON schema:\n" + string(schemaJSON)
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	params.Messages = convertMessages(system, req.Messages)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, domain.NewGenerationError(req.Op, err)
	}

	p.logger.Debug("structured generation completed",
		"op", req.Op,
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	if len(resp.Choices) == 0 {
		return nil, domain.NewGenerationError(req.Op, errors.New("no choices in response"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if !json.Valid([]byte(content)) || !strings.HasPrefix(content, "{") {
		return nil, domain.NewGenerationError(req.Op, errors.New("response is not a JSON object"))
	}

	return json.RawMessage(content), nil
}

// GenerateText returns a plain-text completion
func (p *Provider) GenerateText(ctx context.Context, system, prompt string) (text string, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveGeneration("text", start, err) }()

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", domain.NewGenerationError("text", err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewGenerationError("text", errors.New("no choices in response"))
	}

	return resp.Choices[0].Message.Content, nil
}

// IsRetryable reports whether a provider error is worth retrying. Generation
// calls are never retried automatically; the result is logged so operators
// can tell transient failures from bad requests.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	// network errors with no API response
	return true
}
