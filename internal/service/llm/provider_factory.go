package llm

import (
	"fmt"
	"log/slog"
	"strings"

	"deepmirror/internal/capabilities"
	"deepmirror/internal/config"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/metrics"
	"deepmirror/internal/service/llm/providers/anthropic"
	"deepmirror/internal/service/llm/providers/openai"
)

// Anthropic output ceiling for non-streamed reports and plans
const anthropicTokenCeiling = 8192

// ProviderFactory creates the generation provider selected by config
type ProviderFactory struct {
	config  *config.Config
	catalog *capabilities.Registry
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewProviderFactory creates a new provider factory. catalog and m may be nil;
// without a catalog every model is accepted as configured.
func NewProviderFactory(cfg *config.Config, catalog *capabilities.Registry, m *metrics.Metrics, logger *slog.Logger) *ProviderFactory {
	return &ProviderFactory{
		config:  cfg,
		catalog: catalog,
		metrics: m,
		logger:  logger,
	}
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "openai" - any OpenAI-compatible endpoint (DashScope by default)
//   - "anthropic" - Claude models via Anthropic API
func (f *ProviderFactory) GetProvider(providerName string) (llmSvc.Provider, error) {
	switch providerName {
	case config.ProviderOpenAI, "":
		return f.createOpenAIProvider()

	case config.ProviderAnthropic:
		return f.createAnthropicProvider()

	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// lookup returns the catalogued capabilities of model, or nil when the model
// is not catalogued. Known models that cannot call tools are rejected: the
// interview unlocks the report through a tool call.
func (f *ProviderFactory) lookup(provider, model string) (*capabilities.ModelCapabilities, error) {
	if f.catalog == nil {
		return nil, nil
	}
	caps, err := f.catalog.GetModelCapabilities(provider, model)
	if err != nil {
		f.logger.Warn("model not in capability catalog, using it as configured",
			"provider", provider,
			"model", model,
		)
		return nil, nil
	}
	if !caps.SupportsTools {
		return nil, fmt.Errorf("model %s does not support tool calling (try one of: %s)",
			model, strings.Join(f.catalog.ToolModels(provider), ", "))
	}
	return caps, nil
}

func (f *ProviderFactory) createOpenAIProvider() (llmSvc.Provider, error) {
	if f.config.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY (or DASHSCOPE_API_KEY) environment variable not set")
	}

	model := f.config.LLMModel
	if model == "" {
		model = openai.DefaultModel
	}
	caps, err := f.lookup(config.ProviderOpenAI, model)
	if err != nil {
		return nil, err
	}

	mode := f.config.StructuredMode
	if mode == config.StructuredModeJSONSchema && caps != nil && !caps.SupportsJSONSchema {
		f.logger.Warn("model does not honour json_schema, falling back to json_object", "model", model)
		mode = config.StructuredModeJSONObject
	}

	provider, err := openai.NewProvider(openai.Config{
		APIKey:         f.config.LLMAPIKey,
		BaseURL:        f.config.LLMBaseURL,
		Model:          model,
		StructuredMode: mode,
	}, f.metrics, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI-compatible provider: %w", err)
	}

	return provider, nil
}

func (f *ProviderFactory) createAnthropicProvider() (llmSvc.Provider, error) {
	if f.config.LLMAPIKey == "" {
		return nil, fmt.Errorf("LLM_API_KEY (or ANTHROPIC_API_KEY) environment variable not set")
	}

	model := f.config.LLMModel
	if model == "" {
		model = anthropic.DefaultModel
	}
	caps, err := f.lookup(config.ProviderAnthropic, model)
	if err != nil {
		return nil, err
	}

	var maxTokens int
	if caps != nil {
		maxTokens = min(caps.MaxOutput, anthropicTokenCeiling)
	}

	provider, err := anthropic.NewProvider(anthropic.Config{
		APIKey:    f.config.LLMAPIKey,
		BaseURL:   f.config.LLMBaseURL,
		Model:     model,
		MaxTokens: maxTokens,
	}, f.metrics, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}

	return provider, nil
}
