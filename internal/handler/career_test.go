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

const reportBody = `{
	"archetype": "The 'Bridge' Builder",
	"skills": ["沟通"],
	"rpg_stats": [{"name": "共情", "value": 88}],
	"superpowers": ["读懂人心"],
	"summary": "你是连接者。"
}`

func failing(*llmSvc.StructuredRequest) (json.RawMessage, error) {
	return nil, errors.New("upstream timeout")
}

func TestCareerHandler_Success(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		body  string
		reply string
		check func(t *testing.T, got map[string]any)
	}{
		{
			name:  "report",
			path:  "/api/report",
			body:  `{"messages":[{"role":"user","content":"我喜欢写作"}]}`,
			reply: reportBody,
			check: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "The “Bridge” Builder", got["archetype"])
			},
		},
		{
			name:  "plan",
			path:  "/api/plan",
			body:  `{"report":` + reportBody + `,"messages":[]}`,
			reply: `{"goal":"成为产品经理","duration":"6 Weeks","phases":[{"week":"Week 1-2","theme":"探索","tasks":[{"day":"Day 1","action":"读一本书","type":"learning"}]}]}`,
			check: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "6 Weeks", got["duration"])
			},
		},
		{
			name:  "analyze role",
			path:  "/api/analyze-role",
			body:  `{"role":"产品经理","archetype":"连接者"}`,
			reply: `{"responsibilities":["需求分析"],"daily_routine":"上午：会\n下午：写\n晚上：读","why_fit":"适合","salary_range":"15k-25k","industries_companies":["互联网"],"core_competencies":["沟通"],"selection_advice":"试试"}`,
			check: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "15k-25k", got["salary_range"])
			},
		},
		{
			name:  "compare roles",
			path:  "/api/compare-roles",
			body:  `{"roles":["产品经理","运营"],"archetype":"连接者","context":["读懂人心"]}`,
			reply: `{"role1_analysis":{"role_name":"产品经理","salary_range":"20k","match_score":85,"pros":["a"],"cons":["b"]},"role2_analysis":{"role_name":"运营","salary_range":"15k","match_score":70,"pros":["c"],"cons":["d"]},"comparison_summary":"各有所长","recommendation":"先做产品"}`,
			check: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "先做产品", got["recommendation"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &llmtest.Provider{Structured: llmtest.ReplyJSON(tt.reply)}
			rec := do(newTestMux(t, p, nil), http.MethodPost, tt.path, tt.body)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var got map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			tt.check(t, got)
			assert.Len(t, p.StructuredCalls(), 1)
		})
	}
}

func TestCareerHandler_ValidationMakesNoCall(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantBody string
	}{
		{"report without messages", "/api/report", `{"messages":[]}`, ""},
		{"plan without report", "/api/plan", `{"messages":[]}`, ""},
		{"blank role", "/api/analyze-role", `{"role":"  "}`, ""},
		{"no roles", "/api/compare-roles", `{"roles":[]}`, `{"error":"Exactly two roles are required for comparison"}`},
		{"roles missing", "/api/compare-roles", `{"archetype":"连接者"}`, `{"error":"Exactly two roles are required for comparison"}`},
		{"one role", "/api/compare-roles", `{"roles":["产品经理"]}`, `{"error":"Exactly two roles are required for comparison"}`},
		{"three roles", "/api/compare-roles", `{"roles":["a","b","c"]}`, `{"error":"Exactly two roles are required for comparison"}`},
		{"malformed body", "/api/report", `{"messages":`, `{"error":"Invalid request body"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &llmtest.Provider{Structured: failing}
			rec := do(newTestMux(t, p, nil), http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			assert.Zero(t, p.Calls())
		})
	}
}

func TestCareerHandler_GenerationFailure(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantBody string
	}{
		{"report", "/api/report", `{"messages":[{"role":"user","content":"hi"}]}`, `{"error":"Failed to generate report"}`},
		{"analyze role", "/api/analyze-role", `{"role":"产品经理"}`, `{"error":"Failed to analyze role"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &llmtest.Provider{Structured: failing}
			rec := do(newTestMux(t, p, nil), http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestCareerHandler_FailureDetails(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		body      string
		wantError string
	}{
		{"plan", "/api/plan", `{"report":` + reportBody + `}`, "Failed to generate plan"},
		{"compare roles", "/api/compare-roles", `{"roles":["a","b"]}`, "Failed to compare roles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &llmtest.Provider{Structured: failing}
			rec := do(newTestMux(t, p, nil), http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			var got map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantError, got["error"])
			assert.Contains(t, got["details"], "upstream timeout")
		})
	}
}

func TestCareerHandler_Summarize(t *testing.T) {
	p := &llmtest.Provider{Text: func(string, string) (string, error) { return " 职业转型探索 \n", nil }}
	rec := do(newTestMux(t, p, nil), http.MethodPost, "/api/summarize",
		`{"messages":[{"role":"user","content":"我想转行"},{"role":"assistant","content":"聊聊看"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"职业转型探索"}`, rec.Body.String())

	p = &llmtest.Provider{}
	rec = do(newTestMux(t, p, nil), http.MethodPost, "/api/summarize", `{"messages":[{"role":"user","content":"hi"}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to generate summary"}`, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	rec := do(newTestMux(t, &llmtest.Provider{}, nil), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.Equal(t, "llmtest", got["model"])
}
