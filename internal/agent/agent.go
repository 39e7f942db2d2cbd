package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gemlight/diamond-agent/internal/agent/flow"
	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
	logx "github.com/gemlight/diamond-agent/pkg/logger"
)

// apologyReply is sent when a cycle fails past recovery. The customer always
// receives some text, never silence or a raw error.
const apologyReply = "I'm sorry, something went wrong on my side while handling your message. Please try again in a moment."

// Agent is the conversation entry point. It serializes cycles per
// conversation so concurrent messages for the same customer are processed
// one at a time, while distinct conversations proceed in parallel.
type Agent struct {
	flow *flow.Flow

	mu sync.Mutex
	// locks entries are never evicted; memory use grows with the number of
	// distinct conversation IDs seen over the process lifetime.
	locks map[string]*sync.Mutex
}

func New(f *flow.Flow) *Agent {
	return &Agent{
		flow:  f,
		locks: make(map[string]*sync.Mutex),
	}
}

func (a *Agent) conversationLock(conversationID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[conversationID] = lock
	}
	return lock
}

// HandleMessage runs one full cycle for an inbound customer message and
// returns the reply text. Validation failures return an error with no reply;
// failures inside the cycle degrade to an apology so the customer is never
// left without a response.
func (a *Agent) HandleMessage(ctx context.Context, conversationID, text string) (string, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return "", errx.ErrInvalidConversation
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errx.ErrEmptyMessage
	}

	lock := a.conversationLock(conversationID)
	lock.Lock()
	defer lock.Unlock()

	st := model.NewConversationState(conversationID, uuid.NewString(), text)
	if err := a.flow.Run(ctx, st); err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		logx.Error().
			Str("conversation_id", conversationID).
			Str("cycle_id", st.CycleID).
			Err(err).
			Msg("cycle failed, replying with apology")
		return apologyReply, nil
	}
	return st.OutboundText, nil
}
