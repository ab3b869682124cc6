package tools

import "context"

// ToolExecutor defines the interface for executing a tool.
// Implementations must be thread-safe and respect context cancellation.
type ToolExecutor interface {
	// Execute runs the tool with the decoded argument object.
	// The returned value must be JSON-serializable.
	Execute(ctx context.Context, input map[string]interface{}) (interface{}, error)
}

// ToolExecutorFunc adapts a function to ToolExecutor
type ToolExecutorFunc func(ctx context.Context, input map[string]interface{}) (interface{}, error)

// Execute calls f
func (f ToolExecutorFunc) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	return f(ctx, input)
}

// stringArg reads a required string argument
func stringArg(input map[string]interface{}, key string) (string, bool) {
	v, ok := input[key].(string)
	return v, ok
}
