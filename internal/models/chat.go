package models

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is one entry in the bounded conversation history.
type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// HistoryWindow is the maximum number of turns kept per session; older
// turns are discarded first.
const HistoryWindow = 20

// TrimHistory drops the oldest turns until at most HistoryWindow remain.
func TrimHistory(history []ChatTurn) []ChatTurn {
	if len(history) <= HistoryWindow {
		return history
	}
	return history[len(history)-HistoryWindow:]
}
