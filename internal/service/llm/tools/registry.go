package tools

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/metrics"
)

// ToolCall represents a single tool invocation request.
type ToolCall struct {
	ID    string                 `json:"id"`    // tool call id from the model
	Name  string                 `json:"name"`  // tool name
	Input map[string]interface{} `json:"input"` // decoded arguments
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	ID      string      `json:"id"`       // matches ToolCall.ID
	Name    string      `json:"name"`     // matches ToolCall.Name
	Result  interface{} `json:"result"`   // execution result (nil if error)
	Error   error       `json:"error"`    // execution error (nil if success)
	IsError bool        `json:"is_error"` // whether execution failed
}

// ToolRegistry manages tool executors and their definitions.
// It is thread-safe and can be used concurrently.
type ToolRegistry struct {
	mu          sync.RWMutex
	executors   map[string]ToolExecutor
	definitions []llmSvc.ToolDefinition
	metrics     *metrics.Metrics
}

// NewToolRegistry creates a new tool registry. m may be nil.
func NewToolRegistry(m *metrics.Metrics) *ToolRegistry {
	return &ToolRegistry{
		executors: make(map[string]ToolExecutor),
		metrics:   m,
	}
}

// Register adds a tool. A tool with the same name is replaced; definitions
// keep their original registration order.
func (r *ToolRegistry) Register(def llmSvc.ToolDefinition, executor ToolExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.executors[def.Name]; exists {
		for i := range r.definitions {
			if r.definitions[i].Name == def.Name {
				r.definitions[i] = def
			}
		}
	} else {
		r.definitions = append(r.definitions, def)
	}
	r.executors[def.Name] = executor
}

// Get retrieves a tool executor by name.
// Returns nil if the tool is not registered.
func (r *ToolRegistry) Get(name string) ToolExecutor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.executors[name]
}

// Definitions returns the declarations to send to the model
func (r *ToolRegistry) Definitions() []llmSvc.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]llmSvc.ToolDefinition, len(r.definitions))
	copy(defs, r.definitions)
	return defs
}

// Execute runs a single tool and returns the result.
// Unknown tools and execution failures are reported on the result.
func (r *ToolRegistry) Execute(ctx context.Context, call ToolCall) ToolResult {
	executor := r.Get(call.Name)
	if executor == nil {
		r.metrics.IncToolInvocation(call.Name, true)
		return ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Error:   fmt.Errorf("tool not found: %s", call.Name),
			IsError: true,
		}
	}

	result, err := executor.Execute(ctx, call.Input)
	r.metrics.IncToolInvocation(call.Name, err != nil)
	if err != nil {
		return ToolResult{
			ID:      call.ID,
			Name:    call.Name,
			Error:   err,
			IsError: true,
		}
	}

	return ToolResult{
		ID:     call.ID,
		Name:   call.Name,
		Result: result,
	}
}

// ExecuteParallel runs the calls of one model turn concurrently. Results keep
// the order of calls; a call that starts after ctx is done is reported as
// cancelled without running.
func (r *ToolRegistry) ExecuteParallel(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, len(calls))

	var g errgroup.Group
	for i, call := range calls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = ToolResult{ID: call.ID, Name: call.Name, Error: err, IsError: true}
				return nil
			}
			results[i] = r.Execute(ctx, call)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
