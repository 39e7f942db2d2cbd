package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	"github.com/gemlight/diamond-agent/internal/agent/prompts"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

const emptyReplyFallback = "I'm sorry, I couldn't put together a proper answer just now. Could you tell me a bit more about what you're looking for?"

// buildMessages assembles the model input in a fixed order: augmented system
// instructions, the stored history, then the new customer message.
func (f *Flow) buildMessages(ctx context.Context, st *model.ConversationState) ([]*schema.Message, error) {
	base, err := prompts.RenderSystem(ctx, f.promptCfg)
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}
	system := prompts.AugmentSystem(base, st.Summary, st.CatalogContext, st.Preferences)

	messages := make([]*schema.Message, 0, len(st.History)+2)
	messages = append(messages, schema.SystemMessage(system))
	messages = append(messages, st.History...)
	messages = append(messages, schema.UserMessage(st.InboundText))
	return messages, nil
}

// plan makes the first model call of the cycle. The model either answers
// directly or requests tool calls; requested calls are queued for the
// executor stage, untouched.
func (f *Flow) plan(ctx context.Context, st *model.ConversationState) (model.Stage, error) {
	messages, err := f.buildMessages(ctx, st)
	if err != nil {
		return model.StageFailed, err
	}

	out, err := f.generate(ctx, st, messages)
	if err != nil {
		return model.StageFailed, fmt.Errorf("%w: planning call: %v", errx.ErrModelInvoke, err)
	}

	if len(out.ToolCalls) > 0 {
		st.PendingToolCalls = make([]model.ToolInvocation, 0, len(out.ToolCalls))
		for _, tc := range out.ToolCalls {
			st.PendingToolCalls = append(st.PendingToolCalls, model.ToolInvocation{
				CallID:    tc.ID,
				Name:      tc.Function.Name,
				Arguments: json.RawMessage(tc.Function.Arguments),
			})
		}
		logx.Info().
			Str("conversation_id", st.ConversationID).
			Str("cycle_id", st.CycleID).
			Int("tool_calls", len(st.PendingToolCalls)).
			Msg("planner requested tools")
		return model.StageExecutingTools, nil
	}

	st.OutboundText = strings.TrimSpace(out.Content)
	if st.OutboundText == "" {
		st.OutboundText = emptyReplyFallback
	}
	return model.StageCommitting, nil
}
