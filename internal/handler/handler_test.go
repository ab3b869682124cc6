package handler

import (
	"bufio"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"deepmirror/internal/config"
	"deepmirror/internal/prompts"
	"deepmirror/internal/service/llm/career"
	"deepmirror/internal/service/llm/chat"
	"deepmirror/internal/service/llm/llmtest"
	"deepmirror/internal/service/llm/tools"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestMux wires real services over a scripted provider
func newTestMux(t *testing.T, p *llmtest.Provider, conversations *ConversationHandler) *http.ServeMux {
	t.Helper()
	catalog, err := prompts.Default()
	require.NoError(t, err)

	cfg := &config.Config{
		StructuredTimeout: 5 * time.Second,
		ChatTimeout:       5 * time.Second,
		MaxToolSteps:      5,
	}
	registry := tools.NewToolRegistryBuilder(nil).
		WithRandom(func(int) int { return 0 }).
		WithInterviewTools().
		Build()

	routes := &Routes{
		Health:       NewHealthHandler(p.Model()),
		Career:       NewCareerHandler(career.NewService(p, catalog, cfg, testLogger()), testLogger()),
		Chat:         NewChatHandler(chat.NewService(p, registry, catalog, cfg, testLogger()), 0, testLogger()),
		Conversation: conversations,
	}
	mux := http.NewServeMux()
	routes.Register(mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

type sseEvent struct {
	name string
	data string
}

// parseSSE splits a recorded stream into events, skipping comments
func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if current.name != "" {
				events = append(events, current)
			}
			current = sseEvent{}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, scanner.Err())
	return events
}
