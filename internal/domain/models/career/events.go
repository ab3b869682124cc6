package career

// Chat stream event names, used as the SSE "event:" line
const (
	EventText     = "text"      // incremental assistant text
	EventToolCall = "tool_call" // a tool finished running
	EventFinish   = "finish"    // turn complete, carries the final message
	EventError    = "error"     // turn failed
)

// ChatEvent is one item of a streamed chat turn.
// SSE format:
//
//	event: text
//	data: {"delta": "..."}
type ChatEvent struct {
	Event string `json:"-"`
	Data  any    `json:"data"`
}

// TextEvent carries an incremental piece of assistant text
type TextEvent struct {
	Delta string `json:"delta"`
}

// ToolCallEvent reports a completed tool invocation
type ToolCallEvent struct {
	ToolCall
}

// FinishEvent carries the complete assistant message of the turn
type FinishEvent struct {
	Message Message `json:"message"`
}

// ErrorEvent reports a failed turn
type ErrorEvent struct {
	Error string `json:"error"`
}

// NewTextEvent builds a text event
func NewTextEvent(delta string) ChatEvent {
	return ChatEvent{Event: EventText, Data: TextEvent{Delta: delta}}
}

// NewToolCallEvent builds a tool_call event
func NewToolCallEvent(call ToolCall) ChatEvent {
	return ChatEvent{Event: EventToolCall, Data: ToolCallEvent{ToolCall: call}}
}

// NewFinishEvent builds a finish event
func NewFinishEvent(msg Message) ChatEvent {
	return ChatEvent{Event: EventFinish, Data: FinishEvent{Message: msg}}
}

// NewErrorEvent builds an error event
func NewErrorEvent(message string) ChatEvent {
	return ChatEvent{Event: EventError, Data: ErrorEvent{Error: message}}
}
