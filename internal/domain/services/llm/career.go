package llm

import (
	"context"

	"deepmirror/internal/domain/models/career"
)

// CareerService produces the structured career artifacts. Every output has
// been through the content sanitizer before it is returned.
type CareerService interface {
	// GenerateReport derives a Report from the full transcript
	GenerateReport(ctx context.Context, req *GenerateReportRequest) (*career.Report, error)

	// GeneratePlan derives an execution Plan seeded with a Report
	GeneratePlan(ctx context.Context, req *GeneratePlanRequest) (*career.Plan, error)

	// AnalyzeRole produces a single-role deep dive
	AnalyzeRole(ctx context.Context, req *AnalyzeRoleRequest) (*career.RoleAnalysis, error)

	// CompareRoles compares exactly two roles. Any other count is a
	// validation error and no generation call is made.
	CompareRoles(ctx context.Context, req *CompareRolesRequest) (*career.RoleComparison, error)

	// Summarize produces a short conversation title from the leading messages
	Summarize(ctx context.Context, req *SummarizeRequest) (string, error)
}

// GenerateReportRequest is the DTO for POST /api/report
type GenerateReportRequest struct {
	Messages []career.Message `json:"messages"`
}

// GeneratePlanRequest is the DTO for POST /api/plan
type GeneratePlanRequest struct {
	Report   *career.Report   `json:"report"`
	Messages []career.Message `json:"messages"`
}

// AnalyzeRoleRequest is the DTO for POST /api/analyze-role
type AnalyzeRoleRequest struct {
	Role      string `json:"role"`
	Archetype string `json:"archetype"`
	Context   string `json:"context"`
}

// CompareRolesRequest is the DTO for POST /api/compare-roles. Context is
// arbitrary JSON describing the user (typically the report's superpowers).
type CompareRolesRequest struct {
	Roles     []string `json:"roles"`
	Archetype string   `json:"archetype"`
	Context   any      `json:"context"`
}

// SummarizeRequest is the DTO for POST /api/summarize
type SummarizeRequest struct {
	Messages []career.Message `json:"messages"`
}

// SummarizeResponse is returned by POST /api/summarize
type SummarizeResponse struct {
	Title string `json:"title"`
}
