package flow

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	"github.com/gemlight/diamond-agent/internal/agent/tools"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

// Flow drives one conversation cycle through an explicit state machine:
//
//	assembling -> planning -> committing -> done            (direct answer)
//	assembling -> planning -> executing_tools -> narrating -> committing -> done
//
// Stages are strictly sequential; each consumes and produces the shared
// ConversationState. There is no persisted partial cycle: a failure or
// cancellation before committing leaves the stored history untouched.
type Flow struct {
	repo      model.ConversationRepository
	chatModel einomodel.ToolCallingChatModel
	executor  *tools.Executor

	promptCfg model.PromptConfig
	modelName string
	maxTurns  int
}

type Config struct {
	Repo      model.ConversationRepository
	ChatModel einomodel.ToolCallingChatModel
	Executor  *tools.Executor
	Prompt    model.PromptConfig
	ModelName string
	MaxTurns  int
}

func New(cfg Config) (*Flow, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("conversation repository is nil")
	}
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("tool executor is nil")
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 10
	}

	return &Flow{
		repo:      cfg.Repo,
		chatModel: cfg.ChatModel,
		executor:  cfg.Executor,
		promptCfg: cfg.Prompt,
		modelName: cfg.ModelName,
		maxTurns:  cfg.MaxTurns,
	}, nil
}

// Run executes the cycle to completion. On return the state is either done
// with OutboundText set, or failed with the cause returned.
func (f *Flow) Run(ctx context.Context, st *model.ConversationState) error {
	for st.Stage != model.StageDone {
		if err := ctx.Err(); err != nil {
			st.Stage = model.StageFailed
			return err
		}

		prev := st.Stage
		var next model.Stage
		var err error

		switch st.Stage {
		case model.StageAssembling:
			next, err = f.assemble(ctx, st)
		case model.StagePlanning:
			next, err = f.plan(ctx, st)
		case model.StageExecutingTools:
			next, err = f.executeTools(ctx, st)
		case model.StageNarrating:
			next, err = f.narrate(ctx, st)
		case model.StageCommitting:
			next, err = f.commit(ctx, st)
		default:
			st.Stage = model.StageFailed
			return fmt.Errorf("invalid cycle stage %q", st.Stage)
		}

		if err != nil {
			st.Stage = model.StageFailed
			logx.Error().
				Str("conversation_id", st.ConversationID).
				Str("cycle_id", st.CycleID).
				Str("stage", string(prev)).
				Err(err).
				Msg("cycle failed")
			return err
		}

		logx.Debug().
			Str("conversation_id", st.ConversationID).
			Str("cycle_id", st.CycleID).
			Str("from", string(prev)).
			Str("to", string(next)).
			Msg("stage transition")
		st.Stage = next
	}
	return nil
}

// generate invokes the chat model and accounts token usage for the cycle.
func (f *Flow) generate(ctx context.Context, st *model.ConversationState, messages []*schema.Message) (*schema.Message, error) {
	out, err := f.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	if out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		pricing := model.ResolvePricing(f.modelName)
		inC, outC, totalC := model.ComputeCost(usage, pricing)
		st.TotalCostUSD += totalC
		logx.Debug().
			Str("conversation_id", st.ConversationID).
			Str("cycle_id", st.CycleID).
			Str("model", f.modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", st.TotalCostUSD).
			Msg("LLM usage")
	}

	return out, nil
}
