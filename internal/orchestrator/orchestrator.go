// Package orchestrator drives a career session through its phases:
// interview, report, role exploration, plan and coaching.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
	"deepmirror/internal/session"
)

var (
	// ErrInFlight is returned when a call of the same kind is still running
	ErrInFlight = errors.New("request already in progress")
	// ErrLocked is returned by GenerateReport before the report is unlocked
	ErrLocked = errors.New("report is not unlocked yet")
	// ErrNoReport is returned by operations that need a report
	ErrNoReport = errors.New("no report available")
	// ErrNoSelection is returned by AnalyzeSelection without selected roles
	ErrNoSelection = errors.New("no roles selected")
	// ErrEmptyMessage is returned by SendMessage for blank input
	ErrEmptyMessage = errors.New("message is empty")
)

// MaxSelectedRoles is how many roles can be explored at once
const MaxSelectedRoles = 2

// fallbackAnalysisContext is sent when the first superpower has no usable name
const fallbackAnalysisContext = "User selected role"

type callKind int

const (
	callChat callKind = iota
	callReport
	callPlan
	callAnalysis
)

// Config tunes the orchestrator
type Config struct {
	// UnlockAfterTurns unlocks the report after this many completed user
	// turns. 0 leaves the model's signal as the only trigger.
	UnlockAfterTurns int
	Progress         ProgressConfig
}

// Orchestrator is safe for concurrent use. Each call kind has its own
// in-flight guard, so a chat turn may stream while a plan is generated.
type Orchestrator struct {
	session *session.Session
	career  llmSvc.CareerService
	chat    llmSvc.ChatService
	syncer  *session.Syncer
	config  Config
	logger  *slog.Logger

	mu       sync.Mutex
	unlocked bool
	turns    int
	coaching bool // a turn completed while a plan was active
	cleared  bool // history was cleared; the kept report predates the transcript
	inFlight map[callKind]bool
	selected []string
}

// New creates an orchestrator over a loaded session. The unlock flag is
// recovered from the transcript. syncer may be nil.
func New(
	sess *session.Session,
	careerService llmSvc.CareerService,
	chatService llmSvc.ChatService,
	syncer *session.Syncer,
	cfg Config,
	logger *slog.Logger,
) *Orchestrator {
	o := &Orchestrator{
		session:  sess,
		career:   careerService,
		chat:     chatService,
		syncer:   syncer,
		config:   cfg,
		logger:   logger,
		inFlight: make(map[callKind]bool),
	}
	o.restore()
	return o
}

// restore derives the unlock flag and turn count from the session.
// The flag only ever moves from locked to unlocked. A stored report unlocks
// only when the transcript it came from is still there.
func (o *Orchestrator) restore() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.turns = 0
	for _, msg := range o.session.Messages() {
		if msg.Role == career.RoleUser {
			o.turns++
		}
		if msg.UnlocksReport() {
			o.unlocked = true
		}
	}
	if o.session.Report() != nil && o.turns > 0 && !o.cleared {
		o.unlocked = true
	}
	o.checkTurnUnlock()
}

// checkTurnUnlock applies the turn-count fallback. Caller must hold o.mu.
func (o *Orchestrator) checkTurnUnlock() {
	if o.config.UnlockAfterTurns > 0 && o.turns >= o.config.UnlockAfterTurns {
		o.unlocked = true
	}
}

func (o *Orchestrator) begin(kind callKind) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[kind] {
		return ErrInFlight
	}
	o.inFlight[kind] = true
	return nil
}

func (o *Orchestrator) end(kind callKind) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, kind)
}

// State returns the current phase
func (o *Orchestrator) State() State {
	plan := o.session.Plan()
	report := o.session.Report()

	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.inFlight[callReport]:
		return GeneratingReport
	case plan != nil && o.coaching:
		return Coaching
	case plan != nil:
		return PlanReady
	case report != nil && !o.cleared:
		return ReportReady
	case o.unlocked:
		return ReportUnlocked
	default:
		return Interviewing
	}
}

// Unlocked reports whether report generation is available
func (o *Orchestrator) Unlocked() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.unlocked
}

// Session returns the underlying session
func (o *Orchestrator) Session() *session.Session {
	return o.session
}

// SendMessage appends the user's message and streams the assistant's reply.
// onEvent receives every stream event in emission order and may be nil.
// On failure the user message stays in the transcript and no assistant
// message is added.
func (o *Orchestrator) SendMessage(ctx context.Context, text string, onEvent func(career.ChatEvent)) (career.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return career.Message{}, ErrEmptyMessage
	}
	if err := o.begin(callChat); err != nil {
		return career.Message{}, err
	}
	defer o.end(callChat)

	user := o.session.AppendMessage(ctx, career.Message{Role: career.RoleUser, Content: text})
	req := &llmSvc.ChatTurnRequest{
		Messages:    o.session.Messages(),
		PlanContext: o.session.Plan().Context(),
	}

	var (
		final     *career.Message
		streamErr string
	)
	err := o.chat.StreamTurn(ctx, req, func(ev career.ChatEvent) error {
		switch data := ev.Data.(type) {
		case career.ToolCallEvent:
			if data.ToolName == career.ToolEnableReportButton {
				o.mu.Lock()
				o.unlocked = true
				o.mu.Unlock()
			}
		case career.FinishEvent:
			msg := data.Message
			final = &msg
		case career.ErrorEvent:
			streamErr = data.Error
		}
		if onEvent != nil {
			onEvent(ev)
		}
		return nil
	})
	if err != nil {
		return career.Message{}, err
	}
	if final == nil {
		if streamErr != "" {
			return career.Message{}, fmt.Errorf("chat turn failed: %s", streamErr)
		}
		return career.Message{}, errors.New("chat stream ended without a reply")
	}

	final.Role = career.RoleAssistant
	assistant := o.session.AppendMessage(ctx, *final)

	o.mu.Lock()
	o.turns++
	if assistant.UnlocksReport() {
		o.unlocked = true
	}
	o.checkTurnUnlock()
	if req.PlanContext != nil {
		o.coaching = true
	}
	o.mu.Unlock()

	o.syncer.SyncTurn(ctx, o.session, user, assistant)
	return assistant, nil
}

// GenerateReport derives a report from the transcript. onProgress receives
// synthetic progress updates and may be nil. A failure leaves the previous
// state in place; nothing is retried.
func (o *Orchestrator) GenerateReport(ctx context.Context, onProgress func(Progress)) (*career.Report, error) {
	o.mu.Lock()
	unlocked := o.unlocked
	o.mu.Unlock()
	if !unlocked {
		return nil, ErrLocked
	}
	if err := o.begin(callReport); err != nil {
		return nil, err
	}
	defer o.end(callReport)

	tracker := startProgress(o.config.Progress, onProgress)
	report, err := o.career.GenerateReport(ctx, &llmSvc.GenerateReportRequest{
		Messages: o.session.Messages(),
	})
	if err != nil {
		tracker.halt()
		o.logger.Warn("report generation failed", "error", err)
		return nil, err
	}
	tracker.complete()

	o.session.SetReport(ctx, report)
	o.mu.Lock()
	o.selected = nil
	o.cleared = false
	o.mu.Unlock()
	return o.session.Report(), nil
}

// ToggleRole selects or deselects one of the report's candidate roles.
// Selecting a third role is ignored. It returns the selection afterwards.
func (o *Orchestrator) ToggleRole(role string) ([]string, error) {
	report := o.session.Report()
	if report == nil {
		return nil, ErrNoReport
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for i, r := range o.selected {
		if r == role {
			o.selected = append(o.selected[:i:i], o.selected[i+1:]...)
			return append([]string(nil), o.selected...), nil
		}
	}
	known := false
	for _, r := range report.RoleCandidates() {
		if r == role {
			known = true
			break
		}
	}
	if known && len(o.selected) < MaxSelectedRoles {
		o.selected = append(o.selected, role)
	}
	return append([]string(nil), o.selected...), nil
}

// SelectedRoles returns the roles currently selected
func (o *Orchestrator) SelectedRoles() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.selected...)
}

// AnalyzeSelection explores the selected roles: one role gets a deep dive,
// two are compared. The result is not stored; the selection is recorded on
// the report as its target roles.
func (o *Orchestrator) AnalyzeSelection(ctx context.Context) (*career.Selection, error) {
	report := o.session.Report()
	if report == nil {
		return nil, ErrNoReport
	}
	roles := o.SelectedRoles()
	if len(roles) == 0 {
		return nil, ErrNoSelection
	}
	if err := o.begin(callAnalysis); err != nil {
		return nil, err
	}
	defer o.end(callAnalysis)

	selection := &career.Selection{Roles: roles}
	if len(roles) == 1 {
		userContext := fallbackAnalysisContext
		if len(report.Superpowers) > 0 {
			if first := report.Superpowers[0]; first.Kind == career.SuperpowerDetailed && first.Name != "" {
				userContext = first.Name
			}
		}
		analysis, err := o.career.AnalyzeRole(ctx, &llmSvc.AnalyzeRoleRequest{
			Role:      roles[0],
			Archetype: report.Archetype,
			Context:   userContext,
		})
		if err != nil {
			return nil, err
		}
		selection.Analysis = analysis
	} else {
		comparison, err := o.career.CompareRoles(ctx, &llmSvc.CompareRolesRequest{
			Roles:     roles,
			Archetype: report.Archetype,
			Context:   report.Superpowers,
		})
		if err != nil {
			return nil, err
		}
		selection.Comparison = comparison
	}

	o.session.SetTargetRoles(ctx, roles)
	return selection, nil
}

// GeneratePlan derives an execution plan from the report, seeded with the
// selected target roles. Success replaces any active plan.
func (o *Orchestrator) GeneratePlan(ctx context.Context) (*career.Plan, error) {
	report := o.session.Report()
	if report == nil {
		return nil, ErrNoReport
	}
	if err := o.begin(callPlan); err != nil {
		return nil, err
	}
	defer o.end(callPlan)

	if roles := o.SelectedRoles(); len(roles) > 0 {
		report.TargetRoles = roles
	}

	plan, err := o.career.GeneratePlan(ctx, &llmSvc.GeneratePlanRequest{
		Report:   report,
		Messages: o.session.Messages(),
	})
	if err != nil {
		o.logger.Warn("plan generation failed", "error", err)
		return nil, err
	}

	o.session.SetPlan(ctx, plan)
	o.mu.Lock()
	o.coaching = false
	o.mu.Unlock()
	return o.session.Plan(), nil
}

// SelectConversation switches to a hosted conversation
func (o *Orchestrator) SelectConversation(ctx context.Context, cloud session.Cloud, id string) error {
	if err := o.session.SelectConversation(ctx, cloud, id); err != nil {
		return err
	}
	o.restore()
	return nil
}

// NewChat starts a fresh transcript. Report and plan are kept.
func (o *Orchestrator) NewChat(ctx context.Context) {
	o.session.NewChat(ctx)
	o.mu.Lock()
	o.coaching = false
	o.mu.Unlock()
	o.restore()
}

// ClearHistory wipes the stored transcript and plan once confirmed. The
// report stays stored but generation locks again until the next unlock
// signal.
func (o *Orchestrator) ClearHistory(ctx context.Context, confirmed bool) error {
	if err := o.session.Clear(ctx, confirmed); err != nil {
		return err
	}
	o.mu.Lock()
	o.unlocked = false
	o.coaching = false
	o.selected = nil
	o.cleared = true
	o.mu.Unlock()
	o.restore()
	return nil
}
