package openai

import (
	"context"
	"time"

	"github.com/openai/openai-go"

	"deepmirror/internal/domain"
	llmSvc "deepmirror/internal/domain/services/llm"
)

// StreamChat streams one chat completion. Text deltas are forwarded as they
// arrive; tool calls are accumulated and reported on the final done event.
func (p *Provider) StreamChat(ctx context.Context, req *llmSvc.ChatRequest) (<-chan llmSvc.StreamEvent, error) {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: convertMessages(req.System, req.Messages),
	}
	// tool messages are accepted here without their definitions
	if len(req.Tools) > 0 && !req.ToolsDisabled {
		params.Tools = convertTools(req.Tools)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	// Buffered to prevent blocking
	eventChan := make(chan llmSvc.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		start := time.Now()
		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		acc := openai.ChatCompletionAccumulator{}

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}

			if !send(ctx, eventChan, llmSvc.StreamEvent{Type: llmSvc.StreamEventText, Delta: chunk.Choices[0].Delta.Content}) {
				p.metrics.ObserveGeneration("chat", start, ctx.Err())
				return
			}
		}

		if err := stream.Err(); err != nil {
			p.logger.Warn("chat stream failed",
				"model", p.model,
				"retryable", IsRetryable(err),
				"error", err,
			)
			p.metrics.ObserveGeneration("chat", start, err)
			send(ctx, eventChan, llmSvc.StreamEvent{
				Type: llmSvc.StreamEventError,
				Err:  domain.NewGenerationError("chat", err),
			})
			return
		}

		done := llmSvc.StreamEvent{
			Type: llmSvc.StreamEventDone,
			Usage: llmSvc.Usage{
				PromptTokens:     int(acc.Usage.PromptTokens),
				CompletionTokens: int(acc.Usage.CompletionTokens),
			},
		}
		if len(acc.Choices) > 0 {
			choice := acc.Choices[0]
			done.FinishReason = string(choice.FinishReason)
			for _, tc := range choice.Message.ToolCalls {
				done.ToolCalls = append(done.ToolCalls, llmSvc.ToolCall{
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}
		}

		p.logger.Debug("chat stream completed",
			"model", p.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"finish_reason", done.FinishReason,
			"tool_calls", len(done.ToolCalls),
		)
		p.metrics.ObserveGeneration("chat", start, nil)

		send(ctx, eventChan, done)
	}()

	return eventChan, nil
}

// send delivers ev unless ctx is cancelled first. A consumer that stops
// reading must cancel ctx, otherwise the stream goroutine blocks.
func send(ctx context.Context, ch chan<- llmSvc.StreamEvent, ev llmSvc.StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- ev:
		return true
	}
}
