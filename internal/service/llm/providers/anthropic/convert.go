package anthropic

import (
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	llmSvc "deepmirror/internal/domain/services/llm"
)

// convertMessages maps provider-level messages onto Anthropic params.
// Consecutive tool results are grouped into one user message, since Anthropic
// expects every tool_result of a turn right after the tool_use message.
func convertMessages(msgs []llmSvc.Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(msgs))

	for i := 0; i < len(msgs); i++ {
		msg := msgs[i]
		switch msg.Role {
		case llmSvc.RoleUser:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))

		case llmSvc.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				input := json.RawMessage(tc.Arguments)
				if strings.TrimSpace(tc.Arguments) == "" || !json.Valid(input) {
					input = json.RawMessage("{}")
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: input,
					},
				})
			}
			if len(blocks) == 0 {
				continue
			}
			result = append(result, anthropic.NewAssistantMessage(blocks...))

		case llmSvc.RoleTool:
			var blocks []anthropic.ContentBlockParamUnion
			for ; i < len(msgs) && msgs[i].Role == llmSvc.RoleTool; i++ {
				blocks = append(blocks, anthropic.NewToolResultBlock(msgs[i].ToolCallID, msgs[i].Content, false))
			}
			i--
			result = append(result, anthropic.NewUserMessage(blocks...))
		}
	}

	return result
}

func convertTools(tools []llmSvc.ToolDefinition) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: inputSchema(t.Parameters),
			},
		}
	}
	return result
}

// inputSchema lifts properties and required out of a JSON Schema object
func inputSchema(schema any) anthropic.ToolInputSchemaParam {
	var param anthropic.ToolInputSchemaParam
	if schema == nil {
		return param
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return param
	}
	var decoded struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return param
	}

	if decoded.Properties != nil {
		param.Properties = decoded.Properties
	}
	param.Required = decoded.Required
	return param
}

// mapStopReason normalises Anthropic stop reasons to OpenAI-style finish reasons
func mapStopReason(reason anthropic.StopReason) string {
	switch reason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		return "stop"
	case anthropic.StopReasonToolUse:
		return "tool_calls"
	case anthropic.StopReasonMaxTokens:
		return "length"
	default:
		return string(reason)
	}
}
