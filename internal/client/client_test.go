package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepmirror/internal/config"
	"deepmirror/internal/domain"
	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/handler"
	"deepmirror/internal/prompts"
	careerService "deepmirror/internal/service/llm/career"
	chatService "deepmirror/internal/service/llm/chat"
	"deepmirror/internal/service/llm/llmtest"
	"deepmirror/internal/service/llm/tools"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newAPIServer serves the real handlers over a scripted provider
func newAPIServer(t *testing.T, p *llmtest.Provider) *Client {
	t.Helper()
	catalog, err := prompts.Default()
	require.NoError(t, err)
	cfg := &config.Config{StructuredTimeout: 5 * time.Second, ChatTimeout: 5 * time.Second, MaxToolSteps: 5}
	registry := tools.NewToolRegistryBuilder(nil).
		WithRandom(func(int) int { return 0 }).
		WithInterviewTools().
		Build()

	routes := &handler.Routes{
		Health: handler.NewHealthHandler(p.Model()),
		Career: handler.NewCareerHandler(careerService.NewService(p, catalog, cfg, testLogger()), testLogger()),
		Chat: handler.NewChatHandler(
			chatService.NewService(p, registry, catalog, cfg, testLogger()),
			0,
			testLogger(),
		),
	}
	mux := http.NewServeMux()
	routes.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL, "", testLogger())
}

func transcript() []career.Message {
	return []career.Message{
		career.NewWelcomeMessage(),
		{ID: "u1", Role: career.RoleUser, Content: "我做了五年运营"},
	}
}

func collect(t *testing.T, c *Client, req *llmSvc.ChatTurnRequest) ([]career.ChatEvent, error) {
	t.Helper()
	var events []career.ChatEvent
	err := c.StreamTurn(context.Background(), req, func(ev career.ChatEvent) error {
		events = append(events, ev)
		return nil
	})
	return events, err
}

func TestStreamTurn_Text(t *testing.T) {
	p := &llmtest.Provider{Streams: [][]llmSvc.StreamEvent{llmtest.TextStream("你好，", "继续说。")}}
	c := newAPIServer(t, p)

	events, err := collect(t, c, &llmSvc.ChatTurnRequest{Messages: transcript()})
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, career.NewTextEvent("你好，"), events[0])
	assert.Equal(t, career.NewTextEvent("继续说。"), events[1])
	finish, ok := events[2].Data.(career.FinishEvent)
	require.True(t, ok)
	assert.Equal(t, "你好，继续说。", finish.Message.Content)
	assert.Equal(t, career.RoleAssistant, finish.Message.Role)
}

func TestStreamTurn_ToolCall(t *testing.T) {
	p := &llmtest.Provider{Streams: [][]llmSvc.StreamEvent{
		llmtest.ToolStream("", llmSvc.ToolCall{
			ID:        "call_1",
			Name:      career.ToolEnableReportButton,
			Arguments: `{"reason":"够了"}`,
		}),
		llmtest.TextStream("可以生成报告了。"),
	}}
	c := newAPIServer(t, p)

	events, err := collect(t, c, &llmSvc.ChatTurnRequest{Messages: transcript()})
	require.NoError(t, err)
	require.Len(t, events, 3)

	call, ok := events[0].Data.(career.ToolCallEvent)
	require.True(t, ok)
	assert.Equal(t, career.ToolEnableReportButton, call.ToolName)
	assert.Equal(t, "够了", call.Arguments["reason"])

	finish := events[2].Data.(career.FinishEvent)
	assert.True(t, finish.Message.UnlocksReport())
}

func TestStreamTurn_ErrorEvent(t *testing.T) {
	p := &llmtest.Provider{StreamErr: errors.New("upstream down")}
	c := newAPIServer(t, p)

	events, err := collect(t, c, &llmSvc.ChatTurnRequest{Messages: transcript()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)

	require.Len(t, events, 1)
	assert.Equal(t, career.NewErrorEvent(chatService.ErrorMessage), events[0])
}

func TestStreamTurn_Validation(t *testing.T) {
	c := newAPIServer(t, &llmtest.Provider{})

	events, err := collect(t, c, &llmSvc.ChatTurnRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, events)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestStreamTurn_Truncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "event: text\ndata: {\"delta\":\"半句\"}\n\n")
	}))
	defer srv.Close()

	c := New(srv.URL, "", testLogger())
	events, err := collect(t, c, &llmSvc.ChatTurnRequest{Messages: transcript()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, errStreamTruncated)
	require.Len(t, events, 1)
	assert.Equal(t, career.NewTextEvent("半句"), events[0])
}

func TestStreamTurn_EmitErrorAborts(t *testing.T) {
	p := &llmtest.Provider{Streams: [][]llmSvc.StreamEvent{llmtest.TextStream("a", "b", "c")}}
	c := newAPIServer(t, p)

	stop := errors.New("stop")
	calls := 0
	err := c.StreamTurn(context.Background(), &llmSvc.ChatTurnRequest{Messages: transcript()},
		func(career.ChatEvent) error {
			calls++
			return stop
		})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

const reportJSON = `{
	"archetype": "温柔的架构师",
	"skills": ["沟通", "写作", "系统思维"],
	"rpg_stats": [{"name": "共情", "value": 88}],
	"superpowers": ["倾听", {"name": "翻译者", "description": "d", "potential_roles": ["产品经理"]}],
	"summary": "你是连接者。"
}`

func TestCareerEndpoints(t *testing.T) {
	ctx := context.Background()
	p := &llmtest.Provider{
		Structured: func(req *llmSvc.StructuredRequest) (json.RawMessage, error) {
			switch req.SchemaName {
			case "report":
				return json.RawMessage(reportJSON), nil
			case "plan":
				return json.RawMessage(`{"goal":"g","duration":"6 Weeks","phases":[]}`), nil
			case "role_analysis":
				return json.RawMessage(`{"why_fit":"适合","salary_range":"15k-25k"}`), nil
			case "role_comparison":
				return json.RawMessage(`{"recommendation":"先做产品"}`), nil
			}
			return nil, errors.New("unexpected schema")
		},
		Text: func(string, string) (string, error) { return "职业探索", nil },
	}
	c := newAPIServer(t, p)

	report, err := c.GenerateReport(ctx, &llmSvc.GenerateReportRequest{Messages: transcript()})
	require.NoError(t, err)
	assert.Equal(t, "温柔的架构师", report.Archetype)
	require.Len(t, report.Superpowers, 2)
	assert.Equal(t, career.SuperpowerPlain, report.Superpowers[0].Kind)

	plan, err := c.GeneratePlan(ctx, &llmSvc.GeneratePlanRequest{Report: report, Messages: transcript()})
	require.NoError(t, err)
	assert.Equal(t, "6 Weeks", plan.Duration)

	analysis, err := c.AnalyzeRole(ctx, &llmSvc.AnalyzeRoleRequest{Role: "产品经理", Archetype: report.Archetype})
	require.NoError(t, err)
	assert.Equal(t, "15k-25k", analysis.SalaryRange)

	comparison, err := c.CompareRoles(ctx, &llmSvc.CompareRolesRequest{
		Roles:   []string{"产品经理", "用户研究员"},
		Context: report.Superpowers,
	})
	require.NoError(t, err)
	assert.Equal(t, "先做产品", comparison.Recommendation)

	title, err := c.Summarize(ctx, &llmSvc.SummarizeRequest{Messages: transcript()})
	require.NoError(t, err)
	assert.Equal(t, "职业探索", title)
}

func TestCareerEndpoints_Errors(t *testing.T) {
	ctx := context.Background()
	p := &llmtest.Provider{}
	c := newAPIServer(t, p)

	_, err := c.CompareRoles(ctx, &llmSvc.CompareRolesRequest{Roles: []string{"只有一个"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = c.GenerateReport(ctx, &llmSvc.GenerateReportRequest{Messages: transcript()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Failed to generate report", apiErr.Message)

	_, err = c.GeneratePlan(ctx, &llmSvc.GeneratePlanRequest{Report: &career.Report{Archetype: "a"}})
	require.ErrorAs(t, err, &apiErr)
	assert.NotEmpty(t, apiErr.Details)

	assert.Zero(t, len(p.TextCalls()))
}

// recordedRequest is one call seen by the fake conversation server
type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

func newConversationServer(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	mux := http.NewServeMux()
	record := func(r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()
	}
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /api/conversations", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, []career.Conversation{{ID: "c2", Title: "新"}, {ID: "c1", Title: "旧"}})
	})
	mux.HandleFunc("POST /api/conversations", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusCreated, career.Conversation{ID: "c3", Title: career.PlaceholderTitle})
	})
	mux.HandleFunc("PATCH /api/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, career.Conversation{ID: r.PathValue("id")})
	})
	mux.HandleFunc("DELETE /api/conversations/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.PathValue("id") == "missing" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Resource not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, []career.ConversationMessage{
			{ID: "m1", Role: career.RoleUser, Content: "一"},
			{ID: "m2", Role: career.RoleAssistant, Content: "二"},
		})
	})
	mux.HandleFunc("POST /api/conversations/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusCreated, career.ConversationMessage{ID: "m3"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func TestConversations(t *testing.T) {
	ctx := context.Background()
	srv, requests := newConversationServer(t)
	c := New(srv.URL+"/", "token-123", testLogger())
	require.True(t, c.Authenticated())

	list, err := c.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].ID)

	conv, err := c.CreateConversation(ctx, career.PlaceholderTitle)
	require.NoError(t, err)
	assert.Equal(t, "c3", conv.ID)

	require.NoError(t, c.AppendMessage(ctx, "c3", career.RoleUser, "你好"))
	require.NoError(t, c.RenameConversation(ctx, "c3", "职业探索"))

	msgs, err := c.ListMessages(ctx, "c3")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "一", msgs[0].ToMessage().Content)

	require.NoError(t, c.DeleteConversation(ctx, "c3"))
	err = c.DeleteConversation(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got := requests()
	require.Len(t, got, 7)
	for _, r := range got {
		assert.Equal(t, "Bearer token-123", r.Auth)
	}
	assert.Equal(t, career.PlaceholderTitle, got[1].Body["title"])
	assert.Equal(t, "/api/conversations/c3/messages", got[2].Path)
	assert.Equal(t, "user", got[2].Body["role"])
	assert.Equal(t, "你好", got[2].Body["content"])
	assert.Equal(t, http.MethodPatch, got[3].Method)
	assert.Equal(t, "职业探索", got[3].Body["title"])
}

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusBadRequest, domain.ErrValidation},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusInternalServerError, domain.ErrGeneration},
		{http.StatusBadGateway, domain.ErrGeneration},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := error(&APIError{Status: tt.status, Message: "x"})
			assert.ErrorIs(t, err, tt.target)
		})
	}

	assert.NotErrorIs(t, &APIError{Status: http.StatusBadRequest}, domain.ErrGeneration)
	assert.Equal(t, "bad (500): why", (&APIError{Status: 500, Message: "bad", Details: "why"}).Error())
}
