package llm

import (
	"fmt"
	"log/slog"

	"deepmirror/internal/capabilities"
	"deepmirror/internal/config"
	"deepmirror/internal/domain/repositories"
	llmRepo "deepmirror/internal/domain/repositories/llm"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/metrics"
	"deepmirror/internal/prompts"
	"deepmirror/internal/service/llm/career"
	"deepmirror/internal/service/llm/chat"
	"deepmirror/internal/service/llm/conversation"
	"deepmirror/internal/service/llm/tools"
)

// SetupProvider creates the provider named by cfg.LLMProvider, checked
// against the embedded model catalog
func SetupProvider(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (llmSvc.Provider, error) {
	catalog, err := capabilities.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load model catalog: %w", err)
	}

	provider, err := NewProviderFactory(cfg, catalog, m, logger).GetProvider(cfg.LLMProvider)
	if err != nil {
		return nil, err
	}

	logger.Info("llm provider initialized",
		"provider", cfg.LLMProvider,
		"model", provider.Model(),
		"structured_mode", cfg.StructuredMode,
	)
	return provider, nil
}

// Services holds all LLM-related services
type Services struct {
	Career       llmSvc.CareerService
	Chat         llmSvc.ChatService
	Conversation llmSvc.ConversationService // nil without a database
}

// SetupServices initializes all LLM services with proper dependency injection.
// conversationRepo and txManager may both be nil, in which case hosted
// conversations are disabled.
func SetupServices(
	provider llmSvc.Provider,
	conversationRepo llmRepo.ConversationRepository,
	txManager repositories.TransactionManager,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *slog.Logger,
) (*Services, error) {
	catalog, err := prompts.Default()
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	logger.Info("prompt catalog loaded", "version", catalog.Version())

	registry := tools.BuildInterviewRegistry(m)

	services := &Services{
		Career: career.NewService(provider, catalog, cfg, logger),
		Chat:   chat.NewService(provider, registry, catalog, cfg, logger),
	}

	if conversationRepo != nil && txManager != nil {
		services.Conversation = conversation.NewService(conversationRepo, txManager, logger)
	} else {
		logger.Warn("no database configured - hosted conversations disabled")
	}

	return services, nil
}
