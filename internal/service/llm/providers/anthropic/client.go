package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"deepmirror/internal/domain"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/metrics"
)

// DefaultModel is used when no model is configured
const DefaultModel = "claude-sonnet-4-5"

const defaultMaxTokens = 4096

// Config configures the Anthropic provider
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	// MaxTokens caps responses that do not set their own limit. 0 means 4096.
	MaxTokens int
}

// Provider implements llm.Provider for Anthropic (Claude) models.
// Structured output is obtained by forcing a single tool whose input schema
// is the requested schema.
type Provider struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewProvider creates a new Anthropic provider. m may be nil.
func NewProvider(cfg Config, m *metrics.Metrics, logger *slog.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
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

	limit := int64(cfg.MaxTokens)
	if limit <= 0 {
		limit = defaultMaxTokens
	}

	return &Provider{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: limit,
		metrics:   m,
		logger:    logger,
	}, nil
}

// Model returns the model identifier
func (p *Provider) Model() string {
	return p.model
}

// GenerateStructured forces a tool call named after the schema and returns
// the tool input as the structured result.
func (p *Provider) GenerateStructured(ctx context.Context, req *llmSvc.StructuredRequest) (out json.RawMessage, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveGeneration(req.Op, start, err) }()

	toolName := "emit_" + req.SchemaName
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.tokens(req.MaxTokens),
		Messages:  convertMessages(req.Messages),
		Tools: []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        toolName,
				Description: anthropic.String("Record the structured response."),
				InputSchema: inputSchema(req.Schema),
			},
		}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: toolName},
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, domain.NewGenerationError(req.Op, err)
	}

	p.logger.Debug("structured generation completed",
		"op", req.Op,
		"model", p.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"input_tokens", message.Usage.InputTokens,
		"output_tokens", message.Usage.OutputTokens,
	)

	for _, block := range message.Content {
		if block.Type == "tool_use" && block.Name == toolName {
			return block.Input, nil
		}
	}
	return nil, domain.NewGenerationError(req.Op, errors.New("response contains no structured tool input"))
}

// GenerateText returns a plain-text completion
func (p *Provider) GenerateText(ctx context.Context, system, prompt string) (text string, err error) {
	start := time.Now()
	defer func() { p.metrics.ObserveGeneration("text", start, err) }()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", domain.NewGenerationError("text", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

func (p *Provider) tokens(n int) int64 {
	if n <= 0 {
		return p.maxTokens
	}
	return int64(n)
}
