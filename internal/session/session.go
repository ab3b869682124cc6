// Package session holds the client-side state of one user's career session:
// the transcript, the latest report and the active plan. State is written
// through to a local key/value store and, for signed-in users, synced to the
// hosted conversation store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"deepmirror/internal/domain/models/career"
)

// Local storage keys
const (
	KeyTranscript = "career_chat_history_v1"
	KeyPlan       = "career_plan_v1"
	KeyReport     = "career_report_v1"
)

// ErrNotConfirmed is returned by Clear when the caller did not confirm
var ErrNotConfirmed = errors.New("clearing history requires confirmation")

// Store is the on-device key/value store. localstore.Store implements it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Session is safe for concurrent use.
//
// Lifecycle: New → Load → mutate → write-through. Mutations made before Load
// stay in memory only, so a fresh process never overwrites stored state with
// its defaults.
type Session struct {
	mu     sync.Mutex
	store  Store
	logger *slog.Logger

	loaded         bool
	messages       []career.Message
	report         *career.Report
	plan           *career.Plan
	conversationID string
}

// New creates a session holding only the welcome message
func New(store Store, logger *slog.Logger) *Session {
	return &Session{
		store:    store,
		logger:   logger,
		messages: []career.Message{career.NewWelcomeMessage()},
	}
}

// Load reads stored state. The transcript is only restored while no hosted
// conversation is bound; report and plan are always restored. Malformed
// entries are logged and treated as absent.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversationID == "" {
		var messages []career.Message
		found, err := s.read(ctx, KeyTranscript, &messages)
		if err != nil {
			return err
		}
		if found && len(messages) > 0 {
			s.messages = messages
		}
	}

	var report career.Report
	found, err := s.read(ctx, KeyReport, &report)
	if err != nil {
		return err
	}
	if found {
		s.report = &report
	}

	var plan career.Plan
	found, err = s.read(ctx, KeyPlan, &plan)
	if err != nil {
		return err
	}
	if found {
		s.plan = &plan
	}

	s.loaded = true
	return nil
}

// read decodes key into v. It returns false for absent or malformed content.
func (s *Session) read(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("discarding malformed local state", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// write persists v under key. Failures are logged; memory stays authoritative.
func (s *Session) write(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode local state", "key", key, "error", err)
		return
	}
	if err := s.store.Put(ctx, key, raw); err != nil {
		s.logger.Error("failed to persist local state", "key", key, "error", err)
	}
}

// persistTranscript saves the transcript while it is local-only.
// Caller must hold s.mu.
func (s *Session) persistTranscript(ctx context.Context) {
	if !s.loaded || s.conversationID != "" || len(s.messages) == 0 {
		return
	}
	s.write(ctx, KeyTranscript, s.messages)
}

// Messages returns a copy of the transcript in insertion order
func (s *Session) Messages() []career.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]career.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AppendMessage adds msg to the end of the transcript, assigning an ID when
// it has none. The stored message is returned.
func (s *Session) AppendMessage(ctx context.Context, msg career.Message) career.Message {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.persistTranscript(ctx)
	return msg
}

// Report returns a copy of the current report, or nil
func (s *Session) Report() *career.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return nil
	}
	r := *s.report
	return &r
}

// SetReport replaces the current report
func (s *Session) SetReport(ctx context.Context, report *career.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
	if report != nil {
		s.write(ctx, KeyReport, report)
	}
}

// SetTargetRoles records the roles the user chose to pursue. It is the only
// mutation a report allows after generation; without a report it is a no-op.
func (s *Session) SetTargetRoles(ctx context.Context, roles []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return
	}
	r := *s.report
	r.TargetRoles = append([]string(nil), roles...)
	s.report = &r
	s.write(ctx, KeyReport, s.report)
}

// Plan returns the active plan, or nil
func (s *Session) Plan() *career.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil
	}
	p := *s.plan
	return &p
}

// SetPlan replaces the active plan. A nil plan is kept in memory only.
func (s *Session) SetPlan(ctx context.Context, plan *career.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = plan
	if s.loaded && plan != nil {
		s.write(ctx, KeyPlan, plan)
	}
}

// ConversationID returns the bound hosted conversation, or ""
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// BindConversation attaches the session to a hosted conversation. From then
// on the transcript lives in the cloud and is no longer written locally.
func (s *Session) BindConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = id
}

// SelectConversation replaces the transcript with a hosted conversation's
// messages, oldest first, and binds the session to it. On failure the
// session is left unchanged.
func (s *Session) SelectConversation(ctx context.Context, cloud Cloud, id string) error {
	rows, err := cloud.ListMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("load conversation %s: %w", id, err)
	}

	messages := make([]career.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.ToMessage())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = messages
	s.conversationID = id
	return nil
}

// NewChat unbinds any hosted conversation and starts over from the welcome
// message. Report and plan are kept.
func (s *Session) NewChat(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = ""
	s.messages = []career.Message{career.NewWelcomeMessage()}
	s.persistTranscript(ctx)
}

// Clear removes the stored transcript and plan and resets the session to the
// welcome message. It refuses to run unless confirmed.
func (s *Session) Clear(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, KeyTranscript, KeyPlan); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	s.messages = []career.Message{career.NewWelcomeMessage()}
	s.plan = nil
	s.conversationID = ""
	return nil
}
