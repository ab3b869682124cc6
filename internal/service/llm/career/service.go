package career

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"deepmirror/internal/config"
	"deepmirror/internal/domain"
	careerModels "deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/prompts"
	"deepmirror/internal/sanitize"
	"deepmirror/internal/service/llm/schema"
)

const summarizeTimeout = 30 * time.Second

// Service implements the CareerService interface.
// Each operation is a single structured generation followed by sanitization.
type Service struct {
	provider llmSvc.Provider
	prompts  *prompts.Catalog
	config   *config.Config
	logger   *slog.Logger
}

// NewService creates a new career generation service
func NewService(
	provider llmSvc.Provider,
	catalog *prompts.Catalog,
	cfg *config.Config,
	logger *slog.Logger,
) llmSvc.CareerService {
	return &Service{
		provider: provider,
		prompts:  catalog,
		config:   cfg,
		logger:   logger,
	}
}

// GenerateReport derives the career report from the interview transcript
func (s *Service) GenerateReport(ctx context.Context, req *llmSvc.GenerateReportRequest) (*careerModels.Report, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Messages, validation.Required, validation.Length(1, config.MaxTranscriptMessages)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	system, err := s.prompts.Render(prompts.Report, nil)
	if err != nil {
		return nil, err
	}

	report, err := generate[careerModels.Report](ctx, s, "report", system, toProviderMessages(req.Messages))
	if err != nil {
		return nil, err
	}

	s.logger.Info("report generated",
		"archetype", report.Archetype,
		"messages", len(req.Messages),
	)
	return report, nil
}

type planPromptData struct {
	Archetype   string
	Summary     string
	Skills      []string
	Superpowers []string
	TargetRoles []string
}

// GeneratePlan derives an execution plan from the report and transcript
func (s *Service) GeneratePlan(ctx context.Context, req *llmSvc.GeneratePlanRequest) (*careerModels.Plan, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Report, validation.Required),
		validation.Field(&req.Messages, validation.Length(0, config.MaxTranscriptMessages)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	system, err := s.prompts.Render(prompts.Plan, planPromptData{
		Archetype:   req.Report.Archetype,
		Summary:     req.Report.Summary,
		Skills:      req.Report.Skills,
		Superpowers: req.Report.SuperpowerNames(),
		TargetRoles: req.Report.TargetRoles,
	})
	if err != nil {
		return nil, err
	}
	request, err := s.prompts.Render(prompts.PlanRequest, nil)
	if err != nil {
		return nil, err
	}

	messages := append(toProviderMessages(req.Messages), llmSvc.Message{Role: llmSvc.RoleUser, Content: request})
	plan, err := generate[careerModels.Plan](ctx, s, "plan", system, messages)
	if err != nil {
		return nil, err
	}

	s.logger.Info("plan generated",
		"archetype", req.Report.Archetype,
		"target_roles", req.Report.TargetRoles,
		"phases", len(plan.Phases),
	)
	return plan, nil
}

type rolePromptData struct {
	Archetype string
	Role      string
	Context   string
}

// AnalyzeRole produces a deep dive on a single role
func (s *Service) AnalyzeRole(ctx context.Context, req *llmSvc.AnalyzeRoleRequest) (*careerModels.RoleAnalysis, error) {
	req.Role = strings.TrimSpace(req.Role)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Role, validation.Required, validation.RuneLength(1, config.MaxRoleNameLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	data := rolePromptData{Archetype: req.Archetype, Role: req.Role, Context: req.Context}
	system, err := s.prompts.Render(prompts.AnalyzeRole, data)
	if err != nil {
		return nil, err
	}
	request, err := s.prompts.Render(prompts.AnalyzeRoleRequest, data)
	if err != nil {
		return nil, err
	}

	analysis, err := generate[careerModels.RoleAnalysis](ctx, s, "role_analysis", system,
		[]llmSvc.Message{{Role: llmSvc.RoleUser, Content: request}})
	if err != nil {
		return nil, err
	}

	s.logger.Info("role analyzed", "role", req.Role)
	return analysis, nil
}

type comparePromptData struct {
	Archetype string
	Context   string
	First     string
	Second    string
}

// CompareRoles compares exactly two roles side by side
func (s *Service) CompareRoles(ctx context.Context, req *llmSvc.CompareRolesRequest) (*careerModels.RoleComparison, error) {
	if len(req.Roles) != 2 {
		return nil, &domain.ValidationError{Message: "Exactly two roles are required for comparison"}
	}
	for i, role := range req.Roles {
		if err := validation.Validate(role, validation.Required, validation.RuneLength(1, config.MaxRoleNameLength)); err != nil {
			return nil, fmt.Errorf("%w: roles[%d]: %v", domain.ErrValidation, i, err)
		}
	}

	userContext, err := json.Marshal(req.Context)
	if err != nil {
		return nil, fmt.Errorf("%w: context: %v", domain.ErrValidation, err)
	}

	data := comparePromptData{
		Archetype: req.Archetype,
		Context:   string(userContext),
		First:     req.Roles[0],
		Second:    req.Roles[1],
	}
	system, err := s.prompts.Render(prompts.CompareRoles, data)
	if err != nil {
		return nil, err
	}
	request, err := s.prompts.Render(prompts.CompareRolesRequest, data)
	if err != nil {
		return nil, err
	}

	comparison, err := generate[careerModels.RoleComparison](ctx, s, "role_comparison", system,
		[]llmSvc.Message{{Role: llmSvc.RoleUser, Content: request}})
	if err != nil {
		return nil, err
	}

	s.logger.Info("roles compared", "roles", req.Roles)
	return comparison, nil
}

// Summarize produces a short title from the first few messages
func (s *Service) Summarize(ctx context.Context, req *llmSvc.SummarizeRequest) (string, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Messages, validation.Required),
	); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	ctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	leading := req.Messages
	if len(leading) > config.SummaryContextMessages {
		leading = leading[:config.SummaryContextMessages]
	}
	lines := make([]string, len(leading))
	for i, m := range leading {
		lines[i] = fmt.Sprintf("%s: %s", m.Role, m.Content)
	}

	system, err := s.prompts.Render(prompts.Summarize, nil)
	if err != nil {
		return "", err
	}
	prompt, err := s.prompts.Render(prompts.SummarizeRequest, struct{ Context string }{strings.Join(lines, "\n")})
	if err != nil {
		return "", err
	}

	text, err := s.provider.GenerateText(ctx, system, prompt)
	if err != nil {
		return "", domain.NewGenerationError("summary", err)
	}
	return strings.TrimSpace(text), nil
}

// generate runs one structured call for T and decodes the sanitized output
func generate[T any](ctx context.Context, s *Service, op, system string, messages []llmSvc.Message) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.StructuredTimeout)
	defer cancel()

	start := time.Now()
	raw, err := s.provider.GenerateStructured(ctx, &llmSvc.StructuredRequest{
		Op:         op,
		System:     system,
		Messages:   messages,
		SchemaName: op,
		Schema:     schema.Generate[T](),
	})
	if err != nil {
		s.logger.Error("structured generation failed", "op", op, "error", err, "duration", time.Since(start))
		return nil, domain.NewGenerationError(op, err)
	}

	clean, err := sanitize.JSON(raw)
	if err != nil {
		return nil, domain.NewGenerationError(op, fmt.Errorf("sanitize output: %w", err))
	}

	var out T
	if err := json.Unmarshal(clean, &out); err != nil {
		s.logger.Warn("generation output did not match schema", "op", op, "error", err)
		return nil, domain.NewGenerationError(op, fmt.Errorf("decode output: %w", err))
	}
	return &out, nil
}

// toProviderMessages keeps only the textual part of the transcript
func toProviderMessages(msgs []careerModels.Message) []llmSvc.Message {
	out := make([]llmSvc.Message, 0, len(msgs))
	for _, m := range msgs {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := llmSvc.RoleUser
		if m.Role == careerModels.RoleAssistant {
			role = llmSvc.RoleAssistant
		}
		out = append(out, llmSvc.Message{Role: role, Content: m.Content})
	}
	return out
}
