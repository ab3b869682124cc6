package handler

import (
	"log/slog"
	"net/http"

	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/httputil"
)

// CareerHandler serves the structured generation endpoints
type CareerHandler struct {
	careerService llmSvc.CareerService
	logger        *slog.Logger
}

// NewCareerHandler creates a new career handler
func NewCareerHandler(careerService llmSvc.CareerService, logger *slog.Logger) *CareerHandler {
	return &CareerHandler{
		careerService: careerService,
		logger:        logger,
	}
}

// GenerateReport derives a Report from the transcript
// POST /api/report
func (h *CareerHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.GenerateReportRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report, err := h.careerService.GenerateReport(r.Context(), &req)
	if err != nil {
		handleGenerationError(w, h.logger, err, "Failed to generate report", false)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, report)
}

// GeneratePlan derives an execution plan from a Report
// POST /api/plan
func (h *CareerHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.GeneratePlanRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	plan, err := h.careerService.GeneratePlan(r.Context(), &req)
	if err != nil {
		handleGenerationError(w, h.logger, err, "Failed to generate plan", true)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, plan)
}

// AnalyzeRole returns a single-role deep dive
// POST /api/analyze-role
func (h *CareerHandler) AnalyzeRole(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.AnalyzeRoleRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	analysis, err := h.careerService.AnalyzeRole(r.Context(), &req)
	if err != nil {
		handleGenerationError(w, h.logger, err, "Failed to analyze role", false)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, analysis)
}

// CompareRoles compares exactly two roles
// POST /api/compare-roles
func (h *CareerHandler) CompareRoles(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.CompareRolesRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	comparison, err := h.careerService.CompareRoles(r.Context(), &req)
	if err != nil {
		handleGenerationError(w, h.logger, err, "Failed to compare roles", true)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, comparison)
}

// Summarize produces a conversation title
// POST /api/summarize
func (h *CareerHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.SummarizeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	title, err := h.careerService.Summarize(r.Context(), &req)
	if err != nil {
		handleGenerationError(w, h.logger, err, "Failed to generate summary", false)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, llmSvc.SummarizeResponse{Title: title})
}
