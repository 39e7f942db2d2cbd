package flow

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

// commit persists the cycle's outcome: updated preferences first, then the
// user/assistant exchange. A cancelled context means nothing is written, so
// the stored history never ends up with a user turn missing its reply.
func (f *Flow) commit(ctx context.Context, st *model.ConversationState) (model.Stage, error) {
	if err := ctx.Err(); err != nil {
		return model.StageFailed, err
	}

	if len(st.Preferences) > 0 {
		if err := f.repo.SavePreferences(ctx, st.ConversationID, st.Preferences); err != nil {
			return model.StageFailed, fmt.Errorf("%w: save preferences: %v", errx.ErrCommitFailed, err)
		}
	}

	user := schema.UserMessage(st.InboundText)
	assistant := schema.AssistantMessage(st.OutboundText, nil)
	if err := f.repo.AddExchange(ctx, st.ConversationID, user, assistant); err != nil {
		return model.StageFailed, fmt.Errorf("%w: append exchange: %v", errx.ErrCommitFailed, err)
	}

	logx.Info().
		Str("conversation_id", st.ConversationID).
		Str("cycle_id", st.CycleID).
		Float64("cycle_cost_usd", st.TotalCostUSD).
		Msg("cycle committed")
	return model.StageDone, nil
}
