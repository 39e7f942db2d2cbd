package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ConversationRepository interface {
	// AddExchange appends a user/assistant pair and trims the stored history
	// to the configured window, preserving the most recent entries.
	AddExchange(ctx context.Context, conversationID string, user, assistant *schema.Message) error

	// LoadRecent retrieves at most maxTurns exchanges (2*maxTurns messages)
	// in chronological order. Unknown conversation IDs yield an empty
	// history, not an error.
	LoadRecent(ctx context.Context, conversationID string, maxTurns int) (*ConversationHistory, error)

	// LoadPreferences retrieves the accumulated preference map for the
	// conversation. Unknown IDs yield an empty map.
	LoadPreferences(ctx context.Context, conversationID string) (map[string]any, error)

	// SavePreferences merges the given preference keys into the stored map
	// (key-wise overwrite, never whole-map replace).
	SavePreferences(ctx context.Context, conversationID string, prefs map[string]any) error

	// ClearHistory removes all stored state for a conversation.
	ClearHistory(ctx context.Context, conversationID string) error
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}
