package config

const (
	// MaxConversationTitleLength is the maximum length for conversation titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxConversationTitleLength = 255

	// MaxRoleNameLength bounds a role name sent for analysis or comparison.
	MaxRoleNameLength = 200

	// MaxMessageLength bounds a single transcript message.
	MaxMessageLength = 20000

	// MaxTranscriptMessages bounds how many messages a generation request may carry.
	MaxTranscriptMessages = 400

	// SummaryContextMessages is how many leading messages feed title summarisation.
	SummaryContextMessages = 4
)
