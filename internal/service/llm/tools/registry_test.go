package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/metrics"
)

// stubTool records how often it ran and echoes its input.
type stubTool struct {
	name   string
	delay  time.Duration
	fail   bool
	mu     sync.Mutex
	counts int
}

func (s *stubTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	s.mu.Lock()
	s.counts++
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fail {
		return nil, errors.New("stub tool failed")
	}
	return map[string]interface{}{"tool": s.name, "input": input}, nil
}

func (s *stubTool) runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

func register(r *ToolRegistry, tool *stubTool) {
	r.Register(llmSvc.ToolDefinition{Name: tool.name, Description: tool.name + " tool"}, tool)
}

func TestToolRegistry_RegisterAndDefinitions(t *testing.T) {
	r := NewToolRegistry(nil)
	first := &stubTool{name: "first"}
	register(r, first)
	register(r, &stubTool{name: "second"})

	assert.Same(t, first, r.Get("first"))
	assert.Nil(t, r.Get("missing"))

	// re-registering keeps the original position
	replacement := &stubTool{name: "first"}
	r.Register(llmSvc.ToolDefinition{Name: "first", Description: "updated"}, replacement)

	defs := r.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "first", defs[0].Name)
	assert.Equal(t, "updated", defs[0].Description)
	assert.Equal(t, "second", defs[1].Name)
	assert.Same(t, replacement, r.Get("first"))

	// callers get a copy
	defs[0].Name = "mutated"
	assert.Equal(t, "first", r.Definitions()[0].Name)
}

func TestToolRegistry_Execute(t *testing.T) {
	r := NewToolRegistry(nil)
	register(r, &stubTool{name: "ok"})
	register(r, &stubTool{name: "broken", fail: true})
	register(r, &stubTool{name: "slow", delay: 500 * time.Millisecond})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		call    ToolCall
		wantErr error
	}{
		{name: "success", ctx: context.Background(), call: ToolCall{ID: "c1", Name: "ok", Input: map[string]interface{}{"a": "b"}}},
		{name: "unknown tool", ctx: context.Background(), call: ToolCall{ID: "c2", Name: "nope"}},
		{name: "execution failure", ctx: context.Background(), call: ToolCall{ID: "c3", Name: "broken"}},
		{name: "cancelled", ctx: cancelled, call: ToolCall{ID: "c4", Name: "slow"}, wantErr: context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.Execute(tt.ctx, tt.call)
			assert.Equal(t, tt.call.ID, result.ID)
			assert.Equal(t, tt.call.Name, result.Name)

			if tt.name == "success" {
				assert.False(t, result.IsError)
				assert.NoError(t, result.Error)
				assert.NotNil(t, result.Result)
				return
			}
			assert.True(t, result.IsError)
			assert.Error(t, result.Error)
			if tt.wantErr != nil {
				assert.ErrorIs(t, result.Error, tt.wantErr)
			}
		})
	}
}

func TestToolRegistry_ExecuteCountsInvocations(t *testing.T) {
	m := metrics.New()
	r := NewToolRegistry(m)
	register(r, &stubTool{name: "ok"})
	register(r, &stubTool{name: "broken", fail: true})

	r.Execute(context.Background(), ToolCall{Name: "ok"})
	r.Execute(context.Background(), ToolCall{Name: "ok"})
	r.Execute(context.Background(), ToolCall{Name: "broken"})

	count, err := testutil.GatherAndCount(m.Registry(), "deepmirror_tool_invocations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestToolRegistry_ExecuteParallel(t *testing.T) {
	t.Run("empty calls", func(t *testing.T) {
		results := NewToolRegistry(nil).ExecuteParallel(context.Background(), nil)
		assert.Empty(t, results)
	})

	t.Run("runs concurrently and preserves order", func(t *testing.T) {
		r := NewToolRegistry(nil)
		delays := []time.Duration{50 * time.Millisecond, 10 * time.Millisecond, 100 * time.Millisecond}
		calls := make([]ToolCall, len(delays))
		for i, d := range delays {
			name := fmt.Sprintf("tool_%d", i)
			register(r, &stubTool{name: name, delay: d})
			calls[i] = ToolCall{ID: fmt.Sprintf("call_%d", i), Name: name}
		}

		start := time.Now()
		results := r.ExecuteParallel(context.Background(), calls)
		assert.Less(t, time.Since(start), 160*time.Millisecond)

		require.Len(t, results, 3)
		for i, result := range results {
			assert.Equal(t, fmt.Sprintf("call_%d", i), result.ID)
			require.False(t, result.IsError, "result %d: %v", i, result.Error)
			out, ok := result.Result.(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, fmt.Sprintf("tool_%d", i), out["tool"])
		}
	})

	t.Run("cancelled context fails every call", func(t *testing.T) {
		r := NewToolRegistry(nil)
		register(r, &stubTool{name: "slow", delay: 500 * time.Millisecond})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results := r.ExecuteParallel(ctx, []ToolCall{{ID: "a", Name: "slow"}, {ID: "b", Name: "slow"}})
		for _, result := range results {
			assert.True(t, result.IsError)
			assert.ErrorIs(t, result.Error, context.Canceled)
		}
	})

	t.Run("mixed outcomes", func(t *testing.T) {
		r := NewToolRegistry(nil)
		register(r, &stubTool{name: "ok"})
		register(r, &stubTool{name: "broken", fail: true})

		results := r.ExecuteParallel(context.Background(), []ToolCall{
			{ID: "0", Name: "ok"},
			{ID: "1", Name: "broken"},
			{ID: "2", Name: "missing"},
			{ID: "3", Name: "ok"},
		})
		require.Len(t, results, 4)
		assert.False(t, results[0].IsError)
		assert.True(t, results[1].IsError)
		assert.True(t, results[2].IsError)
		assert.False(t, results[3].IsError)
	})

	t.Run("high concurrency", func(t *testing.T) {
		r := NewToolRegistry(nil)
		tool := &stubTool{name: "shared"}
		register(r, tool)

		calls := make([]ToolCall, 100)
		for i := range calls {
			calls[i] = ToolCall{ID: fmt.Sprintf("call_%d", i), Name: "shared", Input: map[string]interface{}{"i": i}}
		}

		results := r.ExecuteParallel(context.Background(), calls)
		require.Len(t, results, 100)
		for i, result := range results {
			assert.Equal(t, fmt.Sprintf("call_%d", i), result.ID)
			assert.False(t, result.IsError)
		}
		assert.Equal(t, 100, tool.runs())
	})
}

func TestToolRegistry_ConcurrentRegisterAndGet(t *testing.T) {
	r := NewToolRegistry(nil)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			register(r, &stubTool{name: fmt.Sprintf("tool_%d", i)})
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = r.Get(fmt.Sprintf("tool_%d", i))
			_ = r.Definitions()
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Definitions(), 50)
}
