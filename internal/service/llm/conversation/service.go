package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"deepmirror/internal/config"
	"deepmirror/internal/domain"
	"deepmirror/internal/domain/models/career"
	"deepmirror/internal/domain/repositories"
	llmRepo "deepmirror/internal/domain/repositories/llm"
	llmSvc "deepmirror/internal/domain/services/llm"
)

// Service implements the ConversationService interface
// Handles hosted conversation CRUD; every operation is scoped to the caller
type Service struct {
	repo      llmRepo.ConversationRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewService creates a new conversation service
func NewService(
	repo llmRepo.ConversationRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) llmSvc.ConversationService {
	return &Service{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
	}
}

// CreateConversation creates a conversation. A blank title becomes the placeholder.
func (s *Service) CreateConversation(ctx context.Context, req *llmSvc.CreateConversationRequest) (*career.Conversation, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.RuneLength(0, config.MaxConversationTitleLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	title := req.Title
	if title == "" {
		title = career.PlaceholderTitle
	}

	conv := &career.Conversation{UserID: req.UserID, Title: title}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}

	s.logger.Info("conversation created",
		"id", conv.ID,
		"user_id", conv.UserID,
	)
	return conv, nil
}

// ListConversations returns the caller's conversations, newest first
func (s *Service) ListConversations(ctx context.Context, userID string) ([]career.Conversation, error) {
	return s.repo.ListConversations(ctx, userID)
}

// UpdateConversation renames a conversation
func (s *Service) UpdateConversation(ctx context.Context, conversationID, userID string, req *llmSvc.UpdateConversationRequest) (*career.Conversation, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.Required,
			validation.RuneLength(1, config.MaxConversationTitleLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.repo.UpdateTitle(ctx, conversationID, userID, req.Title); err != nil {
		return nil, err
	}

	conv, err := s.repo.GetConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("conversation renamed",
		"id", conversationID,
		"title", conv.Title,
	)
	return conv, nil
}

// DeleteConversation removes the conversation and its messages atomically
func (s *Service) DeleteConversation(ctx context.Context, conversationID, userID string) error {
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetConversation(txCtx, conversationID, userID); err != nil {
			return err
		}
		if err := s.repo.DeleteMessages(txCtx, conversationID); err != nil {
			return err
		}
		return s.repo.DeleteConversation(txCtx, conversationID, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("conversation deleted", "id", conversationID, "user_id", userID)
	return nil
}

// ListMessages returns the messages of a conversation the caller owns
func (s *Service) ListMessages(ctx context.Context, conversationID, userID string) ([]career.ConversationMessage, error) {
	if _, err := s.repo.GetConversation(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, conversationID)
}

// AppendMessage adds a message to a conversation the caller owns
func (s *Service) AppendMessage(ctx context.Context, req *llmSvc.AppendMessageRequest) (*career.ConversationMessage, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ConversationID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Role,
			validation.Required,
			validation.In(career.RoleUser, career.RoleAssistant),
		),
		validation.Field(&req.Content,
			validation.Required,
			validation.RuneLength(1, config.MaxMessageLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.repo.GetConversation(ctx, req.ConversationID, req.UserID); err != nil {
		return nil, err
	}

	msg := &career.ConversationMessage{
		ConversationID: req.ConversationID,
		Role:           req.Role,
		Content:        req.Content,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Debug("message appended",
		"conversation_id", req.ConversationID,
		"message_id", msg.ID,
		"role", msg.Role,
	)
	return msg, nil
}
