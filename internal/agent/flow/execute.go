package flow

import (
	"context"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	"github.com/gemlight/diamond-agent/internal/agent/tools"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

// executeTools runs all pending tool calls concurrently and folds the
// successful results back into the state. A failed call becomes an error
// entry in ToolResults and never aborts its siblings or the cycle.
func (f *Flow) executeTools(ctx context.Context, st *model.ConversationState) (model.Stage, error) {
	st.ToolResults = f.executor.Run(ctx, st.PendingToolCalls)
	st.PendingToolCalls = nil

	failed := 0
	for _, res := range st.ToolResults {
		if res.Error != "" {
			failed++
			continue
		}
		kind, err := tools.ParseKind(res.Tool)
		if err != nil {
			continue
		}
		switch {
		case kind.IsCatalogQuery():
			// Repeated calls of the same tool overwrite; last result wins.
			st.CatalogContext[res.Tool] = res.Result
		case kind == tools.KindExtractPreferences:
			if prefs, ok := res.Result.(map[string]any); ok {
				st.MergePreferences(prefs)
			}
		}
	}

	logx.Info().
		Str("conversation_id", st.ConversationID).
		Str("cycle_id", st.CycleID).
		Int("executed", len(st.ToolResults)).
		Int("failed", failed).
		Msg("tool execution finished")
	return model.StageNarrating, nil
}
