package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one message in a footage-scoped Q&A thread.
// Turns are append-only and ordered by insertion.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
