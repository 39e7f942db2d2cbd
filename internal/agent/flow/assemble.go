package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	"github.com/gemlight/diamond-agent/internal/agent/tools"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

const (
	summaryFallback = "Unable to generate conversation summary."
	summaryEmpty    = "No specific interests detected yet."
)

// assemble loads the stored history and preferences and derives a short
// summary of what the customer has asked for so far. Summary derivation is
// best effort; the cycle continues with a fallback text if it breaks.
func (f *Flow) assemble(ctx context.Context, st *model.ConversationState) (model.Stage, error) {
	hist, err := f.repo.LoadRecent(ctx, st.ConversationID, f.maxTurns)
	if err != nil {
		return model.StageFailed, fmt.Errorf("load history: %w", err)
	}
	st.History = hist.Messages

	prefs, err := f.repo.LoadPreferences(ctx, st.ConversationID)
	if err != nil {
		logx.Warn().
			Str("conversation_id", st.ConversationID).
			Err(err).
			Msg("preference load failed, continuing without stored preferences")
	} else {
		st.MergePreferences(prefs)
	}

	st.Summary = deriveSummary(st.History)

	logx.Debug().
		Str("conversation_id", st.ConversationID).
		Str("cycle_id", st.CycleID).
		Int("history_messages", len(st.History)).
		Int("preference_keys", len(st.Preferences)).
		Msg("context assembled")
	return model.StagePlanning, nil
}

// deriveSummary scans the customer's prior turns for diamond attributes and
// renders them as one line. It never fails the cycle.
func deriveSummary(history []*schema.Message) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			logx.Warn().Any("panic", r).Msg("summary derivation panicked")
			summary = summaryFallback
		}
	}()

	merged := make(map[string]any, 8)
	for _, msg := range history {
		if msg == nil || msg.Role != schema.User {
			continue
		}
		for k, v := range tools.ExtractPreferences(msg.Content) {
			merged[k] = v
		}
	}
	if len(merged) == 0 {
		return summaryEmpty
	}

	parts := make([]string, 0, len(merged))
	for _, key := range []string{"shape", "cut", "color", "clarity"} {
		if vs, ok := merged[key].([]string); ok && len(vs) > 0 {
			parts = append(parts, strings.Join(vs, "/"))
		}
	}
	if carat, ok := merged["carat"].(float64); ok {
		parts = append(parts, fmt.Sprintf("around %.2f carat", carat))
	}
	if budget, ok := merged["budget"].(float64); ok {
		parts = append(parts, fmt.Sprintf("a budget near $%.0f", budget))
	}
	if len(parts) == 0 {
		return summaryEmpty
	}
	return "Customer has shown interest in diamonds with: " + strings.Join(parts, ", ") + "."
}
