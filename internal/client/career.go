package client

import (
	"context"
	"net/http"

	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
)

// GenerateReport calls POST /api/report
func (c *Client) GenerateReport(ctx context.Context, req *llmSvc.GenerateReportRequest) (*career.Report, error) {
	var report career.Report
	if err := c.do(ctx, http.MethodPost, "/api/report", req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GeneratePlan calls POST /api/plan
func (c *Client) GeneratePlan(ctx context.Context, req *llmSvc.GeneratePlanRequest) (*career.Plan, error) {
	var plan career.Plan
	if err := c.do(ctx, http.MethodPost, "/api/plan", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// AnalyzeRole calls POST /api/analyze-role
func (c *Client) AnalyzeRole(ctx context.Context, req *llmSvc.AnalyzeRoleRequest) (*career.RoleAnalysis, error) {
	var analysis career.RoleAnalysis
	if err := c.do(ctx, http.MethodPost, "/api/analyze-role", req, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// CompareRoles calls POST /api/compare-roles
func (c *Client) CompareRoles(ctx context.Context, req *llmSvc.CompareRolesRequest) (*career.RoleComparison, error) {
	var comparison career.RoleComparison
	if err := c.do(ctx, http.MethodPost, "/api/compare-roles", req, &comparison); err != nil {
		return nil, err
	}
	return &comparison, nil
}

// Summarize calls POST /api/summarize
func (c *Client) Summarize(ctx context.Context, req *llmSvc.SummarizeRequest) (string, error) {
	var resp llmSvc.SummarizeResponse
	if err := c.do(ctx, http.MethodPost, "/api/summarize", req, &resp); err != nil {
		return "", err
	}
	return resp.Title, nil
}
