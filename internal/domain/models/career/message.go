package career

import "time"

// Role identifies the author of a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// WelcomeMessageID marks the greeting every fresh session starts with.
// It is shown locally but never synced to the hosted backend.
const WelcomeMessageID = "welcome"

// WelcomeText is the greeting content of a fresh session
const WelcomeText = "你好。我是这里的倾听者，也是你的职业镜像。我想通过对话，帮你发现你可能忽略的职业优势。今天你的职业状态感觉如何？"

// Tool names the chat model may invoke
const (
	ToolEnableReportButton = "enableReportButton"
	ToolGetSalaryInsight   = "getSalaryInsight"
)

// Message is one transcript entry. Messages are immutable once appended;
// transcript order is insertion order.
type Message struct {
	ID              string     `json:"id,omitempty"`
	Role            Role       `json:"role"`
	Content         string     `json:"content"`
	ToolInvocations []ToolCall `json:"toolInvocations,omitempty"`
}

// ToolCall records a tool the assistant invoked while producing a message
type ToolCall struct {
	ToolName  string         `json:"toolName"`
	Arguments map[string]any `json:"args,omitempty"`
	Result    any            `json:"result,omitempty"`
}

// NewWelcomeMessage returns the greeting a fresh transcript starts with
func NewWelcomeMessage() Message {
	return Message{
		ID:      WelcomeMessageID,
		Role:    RoleAssistant,
		Content: WelcomeText,
	}
}

// UnlocksReport reports whether the message carries the report-unlock signal
func (m Message) UnlocksReport() bool {
	for _, call := range m.ToolInvocations {
		if call.ToolName == ToolEnableReportButton {
			return true
		}
	}
	return false
}

// PlaceholderTitle is the title of a conversation before summarisation
const PlaceholderTitle = "新对话"

// Conversation is a hosted, per-user transcript
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ConversationMessage is a message row of a hosted conversation
type ConversationMessage struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	Role           Role      `json:"role" db:"role"`
	Content        string    `json:"content" db:"content"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ToMessage converts a stored row back into a transcript message
func (m ConversationMessage) ToMessage() Message {
	return Message{
		ID:      m.ID,
		Role:    m.Role,
		Content: m.Content,
	}
}
