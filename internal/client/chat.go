package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/packages/ssestream"

	"deepmirror/internal/domain"
	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
)

// errStreamTruncated is returned when the stream closes without a finish or
// error event
var errStreamTruncated = errors.New("chat stream ended unexpectedly")

// StreamTurn calls POST /api/chat and replays the SSE stream to emit.
// An error event is passed on and then returned as a generation error.
func (c *Client) StreamTurn(ctx context.Context, req *llmSvc.ChatTurnRequest, emit func(career.ChatEvent) error) error {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/chat", req)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.NewGenerationError("chat", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return decodeError(resp)
	}

	stream := ssestream.NewDecoder(resp)
	defer stream.Close()

	for stream.Next() {
		ev, ok, err := decodeChatEvent(stream.Event())
		if err != nil {
			return domain.NewGenerationError("chat", err)
		}
		if !ok {
			continue
		}
		if err := emit(ev); err != nil {
			return err
		}

		switch data := ev.Data.(type) {
		case career.FinishEvent:
			return nil
		case career.ErrorEvent:
			return domain.NewGenerationError("chat", errors.New(data.Error))
		}
	}
	if err := stream.Err(); err != nil {
		return domain.NewGenerationError("chat", err)
	}
	return domain.NewGenerationError("chat", errStreamTruncated)
}

// decodeChatEvent maps one SSE event onto a ChatEvent. Unknown event types
// are skipped.
func decodeChatEvent(ev ssestream.Event) (career.ChatEvent, bool, error) {
	var (
		data any
		err  error
	)
	switch ev.Type {
	case career.EventText:
		var d career.TextEvent
		err = json.Unmarshal(ev.Data, &d)
		data = d
	case career.EventToolCall:
		var d career.ToolCallEvent
		err = json.Unmarshal(ev.Data, &d)
		data = d
	case career.EventFinish:
		var d career.FinishEvent
		err = json.Unmarshal(ev.Data, &d)
		data = d
	case career.EventError:
		var d career.ErrorEvent
		err = json.Unmarshal(ev.Data, &d)
		data = d
	default:
		return career.ChatEvent{}, false, nil
	}
	if err != nil {
		return career.ChatEvent{}, false, fmt.Errorf("decode %s event: %w", ev.Type, err)
	}
	return career.ChatEvent{Event: ev.Type, Data: data}, true, nil
}
