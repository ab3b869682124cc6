package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"deepmirror/internal/config"
	"deepmirror/internal/domain"
	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/prompts"
	"deepmirror/internal/service/llm/tools"
)

// ErrorMessage is the user-facing text of a failed turn
const ErrorMessage = "Failed to process request"

// coachingTools are offered once a plan exists; the report is already unlocked
var coachingTools = []string{career.ToolGetSalaryInsight}

// Service implements the ChatService interface.
// A turn is a bounded loop of streamed completions: each step that ends in
// tool calls runs the tools and feeds their results back to the model.
type Service struct {
	provider llmSvc.Provider
	tools    *tools.ToolRegistry
	prompts  *prompts.Catalog
	config   *config.Config
	logger   *slog.Logger
}

// NewService creates a new chat streaming service
func NewService(
	provider llmSvc.Provider,
	registry *tools.ToolRegistry,
	catalog *prompts.Catalog,
	cfg *config.Config,
	logger *slog.Logger,
) llmSvc.ChatService {
	return &Service{
		provider: provider,
		tools:    registry,
		prompts:  catalog,
		config:   cfg,
		logger:   logger,
	}
}

// StreamTurn streams one assistant reply. Validation errors are returned
// before any event is emitted; every other failure ends the stream with an
// error event.
func (s *Service) StreamTurn(ctx context.Context, req *llmSvc.ChatTurnRequest, emit func(career.ChatEvent) error) error {
	if err := s.validateTurnRequest(req); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	system, toolDefs, err := s.resolveContext(req.PlanContext)
	if err != nil {
		return err
	}

	// cancelling on return also releases a provider stream abandoned mid-step
	var cancel context.CancelFunc
	if s.config.ChatTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.config.ChatTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	msg, err := s.runTurn(ctx, system, toolDefs, transcriptMessages(req.Messages), emit)
	if err != nil {
		var emitErr *emitError
		if errors.As(err, &emitErr) {
			// client went away; nothing left to tell it
			s.logger.Debug("chat turn aborted by consumer", "error", emitErr.err)
			return emitErr.err
		}
		s.logger.Error("chat turn failed", "error", err, "coaching", req.PlanContext != nil)
		if sendErr := emit(career.NewErrorEvent(ErrorMessage)); sendErr != nil {
			s.logger.Debug("failed to emit error event", "error", sendErr)
		}
		return domain.NewGenerationError("chat", err)
	}

	s.logger.Info("chat turn completed",
		"message_id", msg.ID,
		"tool_invocations", len(msg.ToolInvocations),
		"coaching", req.PlanContext != nil,
	)
	if err := emit(career.NewFinishEvent(*msg)); err != nil {
		return err
	}
	return nil
}

// emitError marks a failure of the event consumer rather than the model
type emitError struct{ err error }

func (e *emitError) Error() string { return e.err.Error() }

// runTurn drives the tool loop. Once MaxToolSteps tool rounds have run, the
// next step forbids tool calls so the turn always ends with text.
func (s *Service) runTurn(
	ctx context.Context,
	system string,
	toolDefs []llmSvc.ToolDefinition,
	messages []llmSvc.Message,
	emit func(career.ChatEvent) error,
) (*career.Message, error) {
	var content strings.Builder
	var invocations []career.ToolCall

	for step := 0; ; step++ {
		final := step >= s.config.MaxToolSteps

		text, calls, err := s.streamStep(ctx, &llmSvc.ChatRequest{
			System:        system,
			Messages:      messages,
			Tools:         toolDefs,
			ToolsDisabled: final,
		}, emit)
		if err != nil {
			return nil, err
		}
		content.WriteString(text)

		if len(calls) == 0 || final || len(toolDefs) == 0 {
			break
		}

		toolCalls := make([]tools.ToolCall, len(calls))
		for i, c := range calls {
			toolCalls[i] = tools.ToolCall{ID: c.ID, Name: c.Name, Input: decodeArguments(c.Arguments)}
		}
		results := s.tools.ExecuteParallel(ctx, toolCalls)

		messages = append(messages, llmSvc.Message{
			Role:      llmSvc.RoleAssistant,
			Content:   text,
			ToolCalls: calls,
		})
		for i, result := range results {
			payload := result.Result
			if result.IsError {
				s.logger.Warn("tool execution failed", "tool", result.Name, "error", result.Error)
				payload = map[string]any{"error": result.Error.Error()}
			}

			invocation := career.ToolCall{
				ToolName:  result.Name,
				Arguments: toolCalls[i].Input,
				Result:    payload,
			}
			invocations = append(invocations, invocation)
			if err := emit(career.NewToolCallEvent(invocation)); err != nil {
				return nil, &emitError{err}
			}

			encoded, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("encode %s result: %w", result.Name, err)
			}
			messages = append(messages, llmSvc.Message{
				Role:       llmSvc.RoleTool,
				Content:    string(encoded),
				ToolCallID: result.ID,
			})
		}
	}

	return &career.Message{
		ID:              uuid.NewString(),
		Role:            career.RoleAssistant,
		Content:         content.String(),
		ToolInvocations: invocations,
	}, nil
}

// streamStep runs one completion, forwarding text deltas as they arrive
func (s *Service) streamStep(
	ctx context.Context,
	req *llmSvc.ChatRequest,
	emit func(career.ChatEvent) error,
) (string, []llmSvc.ToolCall, error) {
	stream, err := s.provider.StreamChat(ctx, req)
	if err != nil {
		return "", nil, err
	}

	var text strings.Builder
	for ev := range stream {
		switch ev.Type {
		case llmSvc.StreamEventText:
			if ev.Delta == "" {
				continue
			}
			text.WriteString(ev.Delta)
			if err := emit(career.NewTextEvent(ev.Delta)); err != nil {
				return "", nil, &emitError{err}
			}
		case llmSvc.StreamEventError:
			return "", nil, ev.Err
		case llmSvc.StreamEventDone:
			return text.String(), ev.ToolCalls, nil
		}
	}

	// closed without a terminal event
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	return "", nil, errors.New("stream ended without completion")
}

// resolveContext picks the system prompt and tools. A plan context switches
// the turn into coaching mode.
func (s *Service) resolveContext(plan *career.PlanContext) (string, []llmSvc.ToolDefinition, error) {
	all := s.tools.Definitions()

	if plan != nil {
		system, err := s.prompts.Render(prompts.Coaching, plan)
		if err != nil {
			return "", nil, err
		}
		var defs []llmSvc.ToolDefinition
		for _, d := range all {
			if slices.Contains(coachingTools, d.Name) {
				defs = append(defs, d)
			}
		}
		return system, defs, nil
	}

	interview, err := s.prompts.Render(prompts.Interview, nil)
	if err != nil {
		return "", nil, err
	}
	instructions, err := s.prompts.Render(prompts.ToolInstructions, nil)
	if err != nil {
		return "", nil, err
	}
	return interview + "\n\n" + instructions, all, nil
}

func (s *Service) validateTurnRequest(req *llmSvc.ChatTurnRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Messages,
			validation.Required,
			validation.Length(1, config.MaxTranscriptMessages),
		),
	)
}

// decodeArguments parses the model's JSON arguments. Malformed arguments
// yield an empty object so the tool reports the missing fields itself.
func decodeArguments(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return map[string]any{}
	}
	return args
}

// transcriptMessages converts the client transcript into provider messages.
// Tool invocations from earlier turns are not replayed.
func transcriptMessages(msgs []career.Message) []llmSvc.Message {
	out := make([]llmSvc.Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := llmSvc.RoleUser
		if m.Role == career.RoleAssistant {
			role = llmSvc.RoleAssistant
		}
		out = append(out, llmSvc.Message{Role: role, Content: m.Content})
	}
	return out
}
