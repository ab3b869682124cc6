package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/service/llm/llmtest"
)

const chatBody = `{"messages":[{"id":"welcome","role":"assistant","content":"你好"},{"id":"u1","role":"user","content":"我做了五年运营"}]}`

func TestStreamChat_Text(t *testing.T) {
	p := &llmtest.Provider{Streams: [][]llmSvc.StreamEvent{llmtest.TextStream("听起来", "很充实。")}}
	rec := do(newTestMux(t, p, nil), http.MethodPost, "/api/chat", chatBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "text", events[0].name)
	assert.JSONEq(t, `{"delta":"听起来"}`, events[0].data)
	assert.Equal(t, "finish", events[2].name)

	var finish struct {
		Message struct {
			ID      string `json:"id"`
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(events[2].data), &finish))
	assert.Equal(t, "assistant", finish.Message.Role)
	assert.Equal(t, "听起来很充实。", finish.Message.Content)
	assert.NotEmpty(t, finish.Message.ID)
}

func TestStreamChat_ToolCallEvent(t *testing.T) {
	p := &llmtest.Provider{Streams: [][]llmSvc.StreamEvent{
		llmtest.ToolStream("", llmSvc.ToolCall{ID: "c1", Name: "enableReportButton", Arguments: `{"reason":"信息足够"}`}),
		llmtest.TextStream("可以生成报告了。"),
	}}
	rec := do(newTestMux(t, p, nil), http.MethodPost, "/api/chat", chatBody)

	require.Equal(t, http.StatusOK, rec.Code)
	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "tool_call", events[0].name)
	assert.JSONEq(t,
		`{"toolName":"enableReportButton","args":{"reason":"信息足够"},"result":{"status":"enabled","reason":"信息足够"}}`,
		events[0].data)
	assert.Equal(t, "text", events[1].name)
	assert.Equal(t, "finish", events[2].name)
}

func TestStreamChat_ProviderFailure(t *testing.T) {
	p := &llmtest.Provider{Streams: [][]llmSvc.StreamEvent{
		{{Type: llmSvc.StreamEventText, Delta: "嗯"}, {Type: llmSvc.StreamEventError, Err: errors.New("reset")}},
	}}
	rec := do(newTestMux(t, p, nil), http.MethodPost, "/api/chat", chatBody)

	require.Equal(t, http.StatusOK, rec.Code)
	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, "error", events[1].name)
	assert.JSONEq(t, `{"error":"Failed to process request"}`, events[1].data)
}

func TestStreamChat_FailureBeforeFirstEvent(t *testing.T) {
	p := &llmtest.Provider{StreamErr: errors.New("connection refused")}
	rec := do(newTestMux(t, p, nil), http.MethodPost, "/api/chat", chatBody)

	// the error event starts the stream
	require.Equal(t, http.StatusOK, rec.Code)
	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].name)
}

func TestStreamChat_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no messages", `{"messages":[]}`},
		{"malformed", `{"messages":[`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &llmtest.Provider{}
			rec := do(newTestMux(t, p, nil), http.MethodPost, "/api/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Zero(t, p.Calls())
		})
	}
}
