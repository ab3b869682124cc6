package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"deepmirror/internal/domain"
	"deepmirror/internal/domain/models/career"
	llmRepo "deepmirror/internal/domain/repositories/llm"
	"deepmirror/internal/repository/postgres"
)

// PostgresConversationRepository implements ConversationRepository using PostgreSQL
type PostgresConversationRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewConversationRepository creates a new PostgresConversationRepository
func NewConversationRepository(config *postgres.RepositoryConfig) llmRepo.ConversationRepository {
	return &PostgresConversationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// CreateConversation inserts a conversation
func (r *PostgresConversationRepository) CreateConversation(ctx context.Context, conv *career.Conversation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, r.tables.Conversations)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, conv.UserID, conv.Title).Scan(&conv.ID, &conv.CreatedAt)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	return nil
}

// GetConversation retrieves a conversation by ID
func (r *PostgresConversationRepository) GetConversation(ctx context.Context, conversationID, userID string) (*career.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, created_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Conversations)

	var conv career.Conversation
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, conversationID, userID).Scan(
		&conv.ID,
		&conv.UserID,
		&conv.Title,
		&conv.CreatedAt,
	)
	if err != nil {
		return nil, postgres.ConversationError("get conversation", conversationID, err)
	}

	return &conv, nil
}

// ListConversations retrieves the user's conversations, newest first
func (r *PostgresConversationRepository) ListConversations(ctx context.Context, userID string) ([]career.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, title, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.tables.Conversations)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	convs := []career.Conversation{}
	for rows.Next() {
		var conv career.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, conv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}

	return convs, nil
}

// UpdateTitle renames a conversation
func (r *PostgresConversationRepository) UpdateTitle(ctx context.Context, conversationID, userID, title string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1
		WHERE id = $2 AND user_id = $3
	`, r.tables.Conversations)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, title, conversationID, userID)
	if err != nil {
		return postgres.ConversationError("update conversation", conversationID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}

	return nil
}

// DeleteConversation removes a conversation row
func (r *PostgresConversationRepository) DeleteConversation(ctx context.Context, conversationID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Conversations)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, conversationID, userID)
	if err != nil {
		return postgres.ConversationError("delete conversation", conversationID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}

	return nil
}

// DeleteMessages removes all messages of a conversation
func (r *PostgresConversationRepository) DeleteMessages(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE conversation_id = $1`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, conversationID)
	if err != nil {
		return postgres.ConversationError("delete messages", conversationID, err)
	}

	r.logger.Debug("messages deleted",
		"conversation_id", conversationID,
		"count", result.RowsAffected(),
	)
	return nil
}

// ListMessages retrieves a conversation's messages, oldest first
func (r *PostgresConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]career.ConversationMessage, error) {
	query := fmt.Sprintf(`
		SELECT id, conversation_id, role, content, created_at
		FROM %s
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, conversationID)
	if err != nil {
		return nil, postgres.ConversationError("list messages", conversationID, err)
	}
	defer rows.Close()

	msgs := []career.ConversationMessage{}
	for rows.Next() {
		var msg career.ConversationMessage
		var role string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = career.Role(role)
		msgs = append(msgs, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return msgs, nil
}

// CreateMessage inserts a message
func (r *PostgresConversationRepository) CreateMessage(ctx context.Context, msg *career.ConversationMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (conversation_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, msg.ConversationID, string(msg.Role), msg.Content).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return postgres.ConversationError("create message", msg.ConversationID, err)
	}

	return nil
}
