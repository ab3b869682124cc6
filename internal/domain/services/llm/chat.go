package llm

import (
	"context"

	"deepmirror/internal/domain/models/career"
)

// ChatService runs one streamed chat turn. The presence of a plan context
// selects coaching mode; otherwise the interview prompt and its tools are used.
type ChatService interface {
	// StreamTurn streams the assistant's reply. Events are passed to emit in
	// emission order and the last one is always a finish or error event.
	// An error returned by emit aborts the turn.
	StreamTurn(ctx context.Context, req *ChatTurnRequest, emit func(career.ChatEvent) error) error
}

// ChatTurnRequest is the DTO for POST /api/chat
type ChatTurnRequest struct {
	Messages    []career.Message    `json:"messages"`
	PlanContext *career.PlanContext `json:"planContext,omitempty"`
}
