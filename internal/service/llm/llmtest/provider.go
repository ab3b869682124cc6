// Package llmtest provides a scriptable Provider for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	llmSvc "deepmirror/internal/domain/services/llm"
)

// TextCall records one GenerateText invocation
type TextCall struct {
	System string
	Prompt string
}

// Provider is an in-memory llm.Provider. Structured and text replies come
// from the configured functions; StreamChat replays Streams in order, one
// script per call, and falls back to an empty done event when exhausted.
type Provider struct {
	Structured func(req *llmSvc.StructuredRequest) (json.RawMessage, error)
	Text       func(system, prompt string) (string, error)
	Streams    [][]llmSvc.StreamEvent
	StreamErr  error // returned by StreamChat before any stream is opened

	mu              sync.Mutex
	structuredCalls []llmSvc.StructuredRequest
	chatCalls       []llmSvc.ChatRequest
	textCalls       []TextCall
}

var _ llmSvc.Provider = (*Provider)(nil)

// ReplyJSON returns a Structured func that always answers with body
func ReplyJSON(body string) func(*llmSvc.StructuredRequest) (json.RawMessage, error) {
	return func(*llmSvc.StructuredRequest) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}
}

// TextStream builds a script streaming chunks then finishing without tools
func TextStream(chunks ...string) []llmSvc.StreamEvent {
	events := make([]llmSvc.StreamEvent, 0, len(chunks)+1)
	for _, c := range chunks {
		events = append(events, llmSvc.StreamEvent{Type: llmSvc.StreamEventText, Delta: c})
	}
	return append(events, llmSvc.StreamEvent{Type: llmSvc.StreamEventDone, FinishReason: "stop"})
}

// ToolStream builds a script that optionally streams text and then requests tools
func ToolStream(text string, calls ...llmSvc.ToolCall) []llmSvc.StreamEvent {
	var events []llmSvc.StreamEvent
	if text != "" {
		events = append(events, llmSvc.StreamEvent{Type: llmSvc.StreamEventText, Delta: text})
	}
	return append(events, llmSvc.StreamEvent{
		Type:         llmSvc.StreamEventDone,
		FinishReason: "tool_calls",
		ToolCalls:    calls,
	})
}

func (p *Provider) GenerateStructured(ctx context.Context, req *llmSvc.StructuredRequest) (json.RawMessage, error) {
	p.mu.Lock()
	p.structuredCalls = append(p.structuredCalls, cloneStructured(req))
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Structured == nil {
		return nil, errors.New("llmtest: no structured reply configured")
	}
	return p.Structured(req)
}

func (p *Provider) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	p.mu.Lock()
	p.textCalls = append(p.textCalls, TextCall{System: system, Prompt: prompt})
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.Text == nil {
		return "", errors.New("llmtest: no text reply configured")
	}
	return p.Text(system, prompt)
}

func (p *Provider) StreamChat(ctx context.Context, req *llmSvc.ChatRequest) (<-chan llmSvc.StreamEvent, error) {
	p.mu.Lock()
	p.chatCalls = append(p.chatCalls, cloneChat(req))
	var script []llmSvc.StreamEvent
	if len(p.Streams) > 0 {
		script, p.Streams = p.Streams[0], p.Streams[1:]
	} else {
		script = []llmSvc.StreamEvent{{Type: llmSvc.StreamEventDone, FinishReason: "stop"}}
	}
	p.mu.Unlock()

	if p.StreamErr != nil {
		return nil, p.StreamErr
	}

	ch := make(chan llmSvc.StreamEvent)
	go func() {
		defer close(ch)
		for _, ev := range script {
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (p *Provider) Model() string { return "llmtest" }

// StructuredCalls returns copies of every structured request received
func (p *Provider) StructuredCalls() []llmSvc.StructuredRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llmSvc.StructuredRequest(nil), p.structuredCalls...)
}

// ChatCalls returns copies of every chat request received
func (p *Provider) ChatCalls() []llmSvc.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llmSvc.ChatRequest(nil), p.chatCalls...)
}

// TextCalls returns every text request received
func (p *Provider) TextCalls() []TextCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]TextCall(nil), p.textCalls...)
}

// Calls is the total number of provider calls of any kind
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.structuredCalls) + len(p.chatCalls) + len(p.textCalls)
}

func cloneStructured(req *llmSvc.StructuredRequest) llmSvc.StructuredRequest {
	c := *req
	c.Messages = append([]llmSvc.Message(nil), req.Messages...)
	return c
}

func cloneChat(req *llmSvc.ChatRequest) llmSvc.ChatRequest {
	c := *req
	c.Messages = append([]llmSvc.Message(nil), req.Messages...)
	c.Tools = append([]llmSvc.ToolDefinition(nil), req.Tools...)
	return c
}
