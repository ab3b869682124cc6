package llm

import (
	"context"

	"deepmirror/internal/domain/models/career"
)

// ConversationRepository defines data access for hosted conversations.
// Every method is scoped to the owning user.
type ConversationRepository interface {
	// CreateConversation inserts conv and fills its ID and CreatedAt
	CreateConversation(ctx context.Context, conv *career.Conversation) error

	// GetConversation returns domain.ErrNotFound if the conversation does not
	// exist or belongs to another user
	GetConversation(ctx context.Context, conversationID, userID string) (*career.Conversation, error)

	// ListConversations returns the user's conversations, newest first.
	// Returns an empty slice if there are none.
	ListConversations(ctx context.Context, userID string) ([]career.Conversation, error)

	// UpdateTitle renames a conversation
	// Returns domain.ErrNotFound if not found
	UpdateTitle(ctx context.Context, conversationID, userID, title string) error

	// DeleteConversation removes the conversation row
	// Returns domain.ErrNotFound if not found
	DeleteConversation(ctx context.Context, conversationID, userID string) error

	// DeleteMessages removes every message of a conversation
	DeleteMessages(ctx context.Context, conversationID string) error

	// ListMessages returns the conversation's messages, oldest first
	ListMessages(ctx context.Context, conversationID string) ([]career.ConversationMessage, error)

	// CreateMessage inserts msg and fills its ID and CreatedAt
	CreateMessage(ctx context.Context, msg *career.ConversationMessage) error
}
