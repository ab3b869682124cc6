package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"deepmirror/internal/domain"
	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/handler/sse"
	"deepmirror/internal/httputil"
	chatService "deepmirror/internal/service/llm/chat"
)

// ChatHandler streams chat turns over SSE
type ChatHandler struct {
	chatService llmSvc.ChatService
	keepAlive   time.Duration
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler. keepAlive is how often a
// ": keepalive" comment is written while the model is silent; 0 disables it.
func NewChatHandler(chatService llmSvc.ChatService, keepAlive time.Duration, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		keepAlive:   keepAlive,
		logger:      logger,
	}
}

// StreamChat streams one assistant turn
// POST /api/chat
//
// Until the first event the response is still plain JSON, so validation
// failures are answered with a 400.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.ChatTurnRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stream := sse.NewWriter(w)
	keepAlive := sse.StartKeepAlive(h.keepAlive, stream, h.logger)

	err := h.chatService.StreamTurn(r.Context(), &req, func(ev career.ChatEvent) error {
		return stream.WriteEvent(ev.Event, ev.Data)
	})

	keepAlive.Stop()
	stream.Close()

	if err == nil {
		return
	}

	if stream.Started() {
		// The error event is already on the wire, or the client went away
		h.logger.Warn("chat stream ended with error", "error", err)
		return
	}

	if errors.Is(err, domain.ErrValidation) {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Error("chat turn failed", "error", err)
	httputil.RespondError(w, http.StatusInternalServerError, chatService.ErrorMessage)
}
