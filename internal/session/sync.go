package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"deepmirror/internal/domain/models/career"
	llmSvc "deepmirror/internal/domain/services/llm"
)

// titleTimeout bounds the background title summarisation
const titleTimeout = 30 * time.Second

// Cloud is the hosted conversation store of a signed-in user
type Cloud interface {
	// Authenticated reports whether a user is signed in
	Authenticated() bool
	CreateConversation(ctx context.Context, title string) (*career.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]career.ConversationMessage, error)
	AppendMessage(ctx context.Context, conversationID string, role career.Role, content string) error
	RenameConversation(ctx context.Context, conversationID, title string) error
}

// Summarizer produces a conversation title. CareerService implements it.
type Summarizer interface {
	Summarize(ctx context.Context, req *llmSvc.SummarizeRequest) (string, error)
}

// Syncer mirrors completed turns to the hosted conversation store.
// Sync is best-effort: every failure is logged and swallowed.
type Syncer struct {
	cloud      Cloud
	summarizer Summarizer
	logger     *slog.Logger

	wg sync.WaitGroup
}

// NewSyncer creates a syncer. A nil cloud disables syncing.
func NewSyncer(cloud Cloud, summarizer Summarizer, logger *slog.Logger) *Syncer {
	return &Syncer{cloud: cloud, summarizer: summarizer, logger: logger}
}

// SyncTurn records a completed turn. The transcript must already contain
// both messages.
//
// The first synced turn creates a conversation with the placeholder title,
// back-fills the whole transcript except the welcome message, binds the
// session to it and starts a background title summarisation. Later turns
// append the user message then the assistant message.
func (y *Syncer) SyncTurn(ctx context.Context, s *Session, user, assistant career.Message) {
	if y == nil || y.cloud == nil || !y.cloud.Authenticated() {
		return
	}

	if id := s.ConversationID(); id != "" {
		y.append(ctx, id, user)
		y.append(ctx, id, assistant)
		return
	}

	conv, err := y.cloud.CreateConversation(ctx, career.PlaceholderTitle)
	if err != nil {
		y.logger.Warn("failed to create conversation", "error", err)
		return
	}
	transcript := s.Messages()
	for _, msg := range transcript {
		if msg.ID == career.WelcomeMessageID {
			continue
		}
		y.append(ctx, conv.ID, msg)
	}
	s.BindConversation(conv.ID)

	if y.summarizer == nil {
		return
	}
	y.wg.Add(1)
	go func() {
		defer y.wg.Done()
		y.retitle(context.WithoutCancel(ctx), conv.ID, transcript)
	}()
}

func (y *Syncer) append(ctx context.Context, conversationID string, msg career.Message) {
	if err := y.cloud.AppendMessage(ctx, conversationID, msg.Role, msg.Content); err != nil {
		y.logger.Warn("failed to sync message",
			"conversation_id", conversationID,
			"message_id", msg.ID,
			"error", err)
	}
}

func (y *Syncer) retitle(ctx context.Context, conversationID string, transcript []career.Message) {
	ctx, cancel := context.WithTimeout(ctx, titleTimeout)
	defer cancel()

	title, err := y.summarizer.Summarize(ctx, &llmSvc.SummarizeRequest{Messages: transcript})
	if err != nil {
		y.logger.Warn("failed to summarize conversation", "conversation_id", conversationID, "error", err)
		return
	}
	if title == "" {
		return
	}
	if err := y.cloud.RenameConversation(ctx, conversationID, title); err != nil {
		y.logger.Warn("failed to update conversation title", "conversation_id", conversationID, "error", err)
	}
}

// Wait blocks until background title updates have finished
func (y *Syncer) Wait() {
	if y == nil {
		return
	}
	y.wg.Wait()
}
