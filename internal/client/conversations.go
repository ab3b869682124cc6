package client

import (
	"context"
	"net/http"
	"net/url"

	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
)

func conversationPath(id string) string {
	return "/api/conversations/" + url.PathEscape(id)
}

// ListConversations returns the signed-in user's conversations, newest first
func (c *Client) ListConversations(ctx context.Context) ([]career.Conversation, error) {
	var conversations []career.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/conversations", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// CreateConversation creates a hosted conversation
func (c *Client) CreateConversation(ctx context.Context, title string) (*career.Conversation, error) {
	var conv career.Conversation
	body := llmSvc.CreateConversationRequest{Title: title}
	if err := c.do(ctx, http.MethodPost, "/api/conversations", body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// RenameConversation updates a conversation's title
func (c *Client) RenameConversation(ctx context.Context, conversationID, title string) error {
	body := llmSvc.UpdateConversationRequest{Title: title}
	return c.do(ctx, http.MethodPatch, conversationPath(conversationID), body, nil)
}

// DeleteConversation removes a conversation and its messages
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	return c.do(ctx, http.MethodDelete, conversationPath(conversationID), nil, nil)
}

// ListMessages returns a conversation's messages, oldest first
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]career.ConversationMessage, error) {
	var messages []career.ConversationMessage
	if err := c.do(ctx, http.MethodGet, conversationPath(conversationID)+"/messages", nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// AppendMessage adds one message to a conversation
func (c *Client) AppendMessage(ctx context.Context, conversationID string, role career.Role, content string) error {
	body := llmSvc.AppendMessageRequest{Role: role, Content: content}
	return c.do(ctx, http.MethodPost, conversationPath(conversationID)+"/messages", body, nil)
}
