package model

import (
	"encoding/json"

	"github.com/cloudwego/eino/schema"
)

// Stage names the steps of one conversation cycle. The flow package drives
// an exhaustive switch over these values; there is no implicit callback
// chain between stages.
type Stage string

const (
	StageAssembling     Stage = "assembling"
	StagePlanning       Stage = "planning"
	StageExecutingTools Stage = "executing_tools"
	StageNarrating      Stage = "narrating"
	StageCommitting     Stage = "committing"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// ToolInvocation is one tool call requested by the planner. Arguments are
// kept raw until the registry validates them against the tool's input schema.
type ToolInvocation struct {
	CallID    string          `json:"call_id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the tagged outcome of a single tool invocation. Exactly one
// of Result/Error is meaningful; failures are data here, never a propagated
// error crossing the executor boundary.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ConversationState carries one inbound message through the cycle. It is
// constructed per message and discarded after the reply is produced; the
// durable projection lives in the conversation repository.
type ConversationState struct {
	ConversationID string
	CycleID        string
	Stage          Stage

	// Assembled context.
	History []*schema.Message // chronological, most-recent-last
	Summary string

	// This cycle's exchange.
	InboundText  string
	OutboundText string

	// CatalogContext maps tool name to that tool's last successful result
	// this cycle; repeated invocations of the same tool overwrite.
	CatalogContext map[string]any

	// Preferences accumulate across the conversation lifetime; loaded at
	// assembly, merged on extraction, persisted at commit.
	Preferences map[string]any

	PendingToolCalls []ToolInvocation
	ToolResults      []ToolResult

	// Accumulated LLM cost (USD) across model invocations for this cycle.
	TotalCostUSD float64
}

func NewConversationState(conversationID, cycleID, inbound string) *ConversationState {
	return &ConversationState{
		ConversationID: conversationID,
		CycleID:        cycleID,
		Stage:          StageAssembling,
		InboundText:    inbound,
		CatalogContext: make(map[string]any, 4),
		Preferences:    make(map[string]any, 8),
	}
}

// MergePreferences applies a partial preference mapping key-wise. Absent keys
// keep their accumulated values; present keys overwrite.
func (s *ConversationState) MergePreferences(partial map[string]any) {
	if s.Preferences == nil {
		s.Preferences = make(map[string]any, len(partial))
	}
	for k, v := range partial {
		s.Preferences[k] = v
	}
}
