package tools

import (
	"context"
	"fmt"

	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/service/llm/schema"
)

type reportButtonArgs struct {
	Reason string `json:"reason" jsonschema_description:"The reason why you think the profile is complete."`
}

// ReportButtonDefinition declares enableReportButton to the model
func ReportButtonDefinition() llmSvc.ToolDefinition {
	return llmSvc.ToolDefinition{
		Name: career.ToolEnableReportButton,
		Description: "Call this tool when you have gathered enough information about the user " +
			"(Preferences, Willingness, Capabilities, Talents, Inclinations) and you have just " +
			"asked the user if they want to see the report.",
		Parameters: schema.Generate[reportButtonArgs](),
	}
}

// ReportButtonTool signals the client that the report may now be requested.
// It has no side effects on the server.
type ReportButtonTool struct{}

// NewReportButtonTool creates the enableReportButton executor
func NewReportButtonTool() *ReportButtonTool {
	return &ReportButtonTool{}
}

// Execute returns {status: "enabled", reason}
func (t *ReportButtonTool) Execute(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	reason, ok := stringArg(input, "reason")
	if !ok {
		return nil, fmt.Errorf("%s: missing or invalid 'reason' argument", career.ToolEnableReportButton)
	}
	return map[string]interface{}{
		"status": "enabled",
		"reason": reason,
	}, nil
}
