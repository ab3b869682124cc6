package llm

import (
	"context"
	"encoding/json"
)

// Provider is the structured-generation client: every call to the language
// model goes through it. Any failure (network, provider, timeout, output that
// cannot be parsed) is returned as a *domain.GenerationError. Timeouts are
// applied by callers through ctx.
type Provider interface {
	// GenerateStructured returns a JSON object produced for the given schema.
	// The object is syntactically valid JSON; conformance to the schema is
	// delegated to the provider and checked by the caller on decode.
	GenerateStructured(ctx context.Context, req *StructuredRequest) (json.RawMessage, error)

	// StreamChat streams a single completion. Text arrives as StreamEventText
	// events; the channel ends with exactly one StreamEventDone or
	// StreamEventError and is then closed. Tool calls requested by the model
	// are reported on the done event; running them is the caller's job.
	StreamChat(ctx context.Context, req *ChatRequest) (<-chan StreamEvent, error)

	// GenerateText returns a short free-text completion
	GenerateText(ctx context.Context, system, prompt string) (string, error)

	// Model returns the model identifier requests are sent to
	Model() string
}

// Message roles understood by providers
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a provider-level conversation entry. Assistant messages may
// carry tool calls; tool messages answer one of them by ToolCallID.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a tool invocation requested by the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded arguments
}

// ToolDefinition declares a tool the model may call
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  any // JSON Schema object
}

// StructuredRequest asks for a JSON object conforming to Schema
type StructuredRequest struct {
	Op         string // short name used in errors and metrics, e.g. "report"
	System     string
	Messages   []Message
	SchemaName string
	Schema     any
	MaxTokens  int
}

// ChatRequest is one streamed completion, optionally with tools
type ChatRequest struct {
	System    string
	Messages  []Message
	Tools     []ToolDefinition
	MaxTokens int
	// ToolsDisabled forbids new tool calls while Tools still describe the
	// calls already in Messages
	ToolsDisabled bool
}

// StreamEventType discriminates StreamEvent
type StreamEventType string

const (
	StreamEventText  StreamEventType = "text"
	StreamEventDone  StreamEventType = "done"
	StreamEventError StreamEventType = "error"
)

// StreamEvent is one item of a chat stream
type StreamEvent struct {
	Type         StreamEventType
	Delta        string     // text
	ToolCalls    []ToolCall // done
	FinishReason string     // done
	Usage        Usage      // done
	Err          error      // error
}

// Usage reports token counts for a completion
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}
