package anthropic

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"deepmirror/internal/domain"
	llmSvc "deepmirror/internal/domain/services/llm"
)

// StreamChat streams one message. Text deltas are forwarded as they arrive;
// tool_use blocks are accumulated and reported on the final done event.
func (p *Provider) StreamChat(ctx context.Context, req *llmSvc.ChatRequest) (<-chan llmSvc.StreamEvent, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.tokens(req.MaxTokens),
		Messages:  convertMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		// tool_use blocks in the history need their definitions present
		params.Tools = convertTools(req.Tools)
		if req.ToolsDisabled {
			params.ToolChoice = anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
		}
	}

	// Buffered to prevent blocking
	eventChan := make(chan llmSvc.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		start := time.Now()
		stream := p.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		// Accumulator for the final message
		message := anthropic.Message{}

		for stream.Next() {
			event := stream.Current()
			if err := message.Accumulate(event); err != nil {
				p.metrics.ObserveGeneration("chat", start, err)
				send(ctx, eventChan, llmSvc.StreamEvent{
					Type: llmSvc.StreamEventError,
					Err:  domain.NewGenerationError("chat", fmt.Errorf("accumulate message: %w", err)),
				})
				return
			}

			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok || delta.Delta.Type != "text_delta" || delta.Delta.Text == "" {
				continue
			}
			if !send(ctx, eventChan, llmSvc.StreamEvent{Type: llmSvc.StreamEventText, Delta: delta.Delta.Text}) {
				p.metrics.ObserveGeneration("chat", start, ctx.Err())
				return
			}
		}

		if err := stream.Err(); err != nil {
			p.logger.Warn("chat stream failed", "model", p.model, "error", err)
			p.metrics.ObserveGeneration("chat", start, err)
			send(ctx, eventChan, llmSvc.StreamEvent{
				Type: llmSvc.StreamEventError,
				Err:  domain.NewGenerationError("chat", err),
			})
			return
		}

		done := llmSvc.StreamEvent{
			Type:         llmSvc.StreamEventDone,
			FinishReason: mapStopReason(message.StopReason),
			Usage: llmSvc.Usage{
				PromptTokens:     int(message.Usage.InputTokens),
				CompletionTokens: int(message.Usage.OutputTokens),
			},
		}
		for _, block := range message.Content {
			if block.Type != "tool_use" {
				continue
			}
			done.ToolCalls = append(done.ToolCalls, llmSvc.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}

		p.logger.Debug("chat stream completed",
			"model", p.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"stop_reason", message.StopReason,
			"tool_calls", len(done.ToolCalls),
		)
		p.metrics.ObserveGeneration("chat", start, nil)

		send(ctx, eventChan, done)
	}()

	return eventChan, nil
}

// send delivers ev unless ctx is cancelled first
func send(ctx context.Context, ch chan<- llmSvc.StreamEvent, ev llmSvc.StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- ev:
		return true
	}
}
