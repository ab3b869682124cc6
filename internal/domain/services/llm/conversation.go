package llm

import (
	"context"

	"deepmirror/internal/domain/models/career"
)

// ConversationService manages hosted, per-user conversations
type ConversationService interface {
	// CreateConversation creates a conversation, defaulting to the placeholder title
	CreateConversation(ctx context.Context, req *CreateConversationRequest) (*career.Conversation, error)

	// ListConversations returns the user's conversations, newest first
	ListConversations(ctx context.Context, userID string) ([]career.Conversation, error)

	// UpdateConversation renames a conversation
	UpdateConversation(ctx context.Context, conversationID, userID string, req *UpdateConversationRequest) (*career.Conversation, error)

	// DeleteConversation removes a conversation and its messages
	DeleteConversation(ctx context.Context, conversationID, userID string) error

	// ListMessages returns the conversation's messages, oldest first
	ListMessages(ctx context.Context, conversationID, userID string) ([]career.ConversationMessage, error)

	// AppendMessage adds one message to a conversation
	AppendMessage(ctx context.Context, req *AppendMessageRequest) (*career.ConversationMessage, error)
}

// CreateConversationRequest is the DTO for creating a conversation
type CreateConversationRequest struct {
	UserID string `json:"-"` // Set by handler from auth context
	Title  string `json:"title"`
}

// UpdateConversationRequest is the DTO for renaming a conversation
type UpdateConversationRequest struct {
	Title string `json:"title"`
}

// AppendMessageRequest is the DTO for adding a message to a conversation
type AppendMessageRequest struct {
	ConversationID string      `json:"-"`
	UserID         string      `json:"-"`
	Role           career.Role `json:"role"`
	Content        string      `json:"content"`
}
