package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
)

// narrate makes the second model call of the cycle. Raw tool results are
// surfaced to the model as a synthetic assistant turn so the reply reflects
// actual catalog data, including per-call errors the model should explain
// around rather than invent past.
func (f *Flow) narrate(ctx context.Context, st *model.ConversationState) (model.Stage, error) {
	messages, err := f.buildMessages(ctx, st)
	if err != nil {
		return model.StageFailed, err
	}

	serialized, err := json.MarshalIndent(st.ToolResults, "", "  ")
	if err != nil {
		return model.StageFailed, fmt.Errorf("serialize tool results: %w", err)
	}
	synthetic := schema.AssistantMessage(
		"I've looked up some information for you: "+string(serialized),
		nil,
	)
	messages = append(messages, synthetic)

	out, err := f.generate(ctx, st, messages)
	if err != nil {
		return model.StageFailed, fmt.Errorf("%w: narration call: %v", errx.ErrModelInvoke, err)
	}

	st.OutboundText = strings.TrimSpace(out.Content)
	if st.OutboundText == "" {
		st.OutboundText = emptyReplyFallback
	}
	return model.StageCommitting, nil
}
