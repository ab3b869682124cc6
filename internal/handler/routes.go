package handler

import (
	"net/http"

	"deepmirror/internal/middleware"
)

// Routes bundles the handlers mounted by the server
type Routes struct {
	Health       *HealthHandler
	Career       *CareerHandler
	Chat         *ChatHandler
	Conversation *ConversationHandler // nil when no database is configured
}

// Register mounts every route on mux (Go 1.22+ method patterns)
func (rt *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", rt.Health.HealthCheck)

	// Generation routes (public)
	mux.HandleFunc("POST /api/report", rt.Career.GenerateReport)
	mux.HandleFunc("POST /api/plan", rt.Career.GeneratePlan)
	mux.HandleFunc("POST /api/analyze-role", rt.Career.AnalyzeRole)
	mux.HandleFunc("POST /api/compare-roles", rt.Career.CompareRoles)
	mux.HandleFunc("POST /api/summarize", rt.Career.Summarize)
	mux.HandleFunc("POST /api/chat", rt.Chat.StreamChat)

	if rt.Conversation == nil {
		return
	}

	// Hosted conversation routes (bearer token required)
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireUser(h) }
	mux.Handle("GET /api/conversations", authed(rt.Conversation.ListConversations))
	mux.Handle("POST /api/conversations", authed(rt.Conversation.CreateConversation))
	mux.Handle("PATCH /api/conversations/{id}", authed(rt.Conversation.UpdateConversation))
	mux.Handle("DELETE /api/conversations/{id}", authed(rt.Conversation.DeleteConversation))
	mux.Handle("GET /api/conversations/{id}/messages", authed(rt.Conversation.ListMessages))
	mux.Handle("POST /api/conversations/{id}/messages", authed(rt.Conversation.AppendMessage))
}
