package handler

import (
	"log/slog"
	"net/http"

	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/httputil"
)

// ConversationHandler serves hosted conversation CRUD.
// Routes are mounted behind middleware.RequireUser.
type ConversationHandler struct {
	conversationService llmSvc.ConversationService
	logger              *slog.Logger
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService llmSvc.ConversationService, logger *slog.Logger) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		logger:              logger,
	}
}

// ListConversations returns the caller's conversations, newest first
// GET /api/conversations
func (h *ConversationHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.conversationService.ListConversations(r.Context(), httputil.UserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conversations)
}

// CreateConversation creates a conversation
// POST /api/conversations
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.CreateConversationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = httputil.UserID(r)

	conversation, err := h.conversationService.CreateConversation(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, conversation)
}

// UpdateConversation renames a conversation
// PATCH /api/conversations/{id}
func (h *ConversationHandler) UpdateConversation(w http.ResponseWriter, r *http.Request) {
	conversationID, ok := PathParam(w, r, "id", "conversation ID")
	if !ok {
		return
	}

	var req llmSvc.UpdateConversationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conversation, err := h.conversationService.UpdateConversation(r.Context(), conversationID, httputil.UserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, conversation)
}

// DeleteConversation removes a conversation and its messages
// DELETE /api/conversations/{id}
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID, ok := PathParam(w, r, "id", "conversation ID")
	if !ok {
		return
	}

	if err := h.conversationService.DeleteConversation(r.Context(), conversationID, httputil.UserID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMessages returns a conversation's messages, oldest first
// GET /api/conversations/{id}/messages
func (h *ConversationHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, ok := PathParam(w, r, "id", "conversation ID")
	if !ok {
		return
	}

	messages, err := h.conversationService.ListMessages(r.Context(), conversationID, httputil.UserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messages)
}

// AppendMessage adds a message to a conversation
// POST /api/conversations/{id}/messages
func (h *ConversationHandler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	conversationID, ok := PathParam(w, r, "id", "conversation ID")
	if !ok {
		return
	}

	var req llmSvc.AppendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ConversationID = conversationID
	req.UserID = httputil.UserID(r)

	message, err := h.conversationService.AppendMessage(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, message)
}
