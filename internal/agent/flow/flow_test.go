package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	"github.com/gemlight/diamond-agent/internal/agent/tools"
	"github.com/gemlight/diamond-agent/internal/catalog"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	inputs    [][]*schema.Message
	err       error
	idx       int
}

func (f *fakeToolCallingModel) Generate(_ context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(_ []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return f, nil
}

type committedExchange struct {
	user      string
	assistant string
}

type fakeRepo struct {
	history     []*schema.Message
	prefs       map[string]any
	loadErr     error
	exchangeErr error

	committed  []committedExchange
	savedPrefs map[string]any
}


func (r *fakeRepo) AddExchange(_ context.Context, _ string, user, assistant *schema.Message) error {
	if r.exchangeErr != nil {
		return r.exchangeErr
	}
	r.committed = append(r.committed, committedExchange{user: user.Content, assistant: assistant.Content})
	return nil
}

func (r *fakeRepo) LoadRecent(_ context.Context, conversationID string, _ int) (*model.ConversationHistory, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return &model.ConversationHistory{ConversationID: conversationID, Messages: r.history}, nil
}

func (r *fakeRepo) LoadPreferences(_ context.Context, _ string) (map[string]any, error) {
	if r.prefs == nil {
		return map[string]any{}, nil
	}
	return r.prefs, nil
}

func (r *fakeRepo) SavePreferences(_ context.Context, _ string, prefs map[string]any) error {
	if r.savedPrefs == nil {
		r.savedPrefs = map[string]any{}
	}
	for k, v := range prefs {
		r.savedPrefs[k] = v
	}
	return nil
}

func (r *fakeRepo) ClearHistory(_ context.Context, _ string) error { return nil }

func newTestFlow(t *testing.T, repo *fakeRepo, chatModel einomodel.ToolCallingChatModel) *Flow {
	t.Helper()

	registry := tools.NewRegistry(catalog.NewMemoryStore(nil))
	executor := tools.NewExecutor(registry, time.Second, 8)

	f, err := New(Config{
		Repo:      repo,
		ChatModel: chatModel,
		Executor:  executor,
		Prompt:    model.PromptConfig{BusinessName: "Gemlight Diamonds", BusinessType: "luxury jewelry company"},
		ModelName: "gemini-2.5-flash",
		MaxTurns:  10,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return f
}

func TestRunDirectAnswer(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	chatModel := &fakeToolCallingModel{responses: []*schema.Message{
		schema.AssistantMessage("We carry diamonds from 0.5 to 2.5 carats.", nil),
	}}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-1", "cycle-1", "What sizes do you carry?")
	if err := f.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if st.Stage != model.StageDone {
		t.Fatalf("stage = %s, want done", st.Stage)
	}
	if st.OutboundText != "We carry diamonds from 0.5 to 2.5 carats." {
		t.Fatalf("unexpected reply: %q", st.OutboundText)
	}
	if len(chatModel.inputs) != 1 {
		t.Fatalf("expected a single model call, got %d", len(chatModel.inputs))
	}
	if len(repo.committed) != 1 {
		t.Fatalf("expected one committed exchange, got %d", len(repo.committed))
	}
	if repo.committed[0].user != "What sizes do you carry?" || repo.committed[0].assistant != st.OutboundText {
		t.Fatalf("unexpected committed pair: %+v", repo.committed[0])
	}
}

func TestRunZeroHistoryCycle(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	chatModel := &fakeToolCallingModel{responses: []*schema.Message{
		schema.AssistantMessage("Welcome! How can I help?", nil),
	}}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-new", "cycle-1", "Hello")
	if err := f.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if st.Summary != summaryEmpty {
		t.Fatalf("summary = %q, want %q", st.Summary, summaryEmpty)
	}
	input := chatModel.inputs[0]
	if len(input) != 2 {
		t.Fatalf("expected system + user, got %d messages", len(input))
	}
	if input[0].Role != schema.System || input[1].Role != schema.User {
		t.Fatalf("unexpected roles: %s, %s", input[0].Role, input[1].Role)
	}
	if st.OutboundText == "" {
		t.Fatal("zero-history cycle must still produce a reply")
	}
}

func TestRunToolPath(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	chatModel := &fakeToolCallingModel{responses: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{
			{ID: "call-1", Function: schema.FunctionCall{Name: "recommend_diamonds", Arguments: `{"budget": 5000, "preferences": {"shape": ["Round"], "carat": 1.0}}`}},
			{ID: "call-2", Function: schema.FunctionCall{Name: "extract_preferences", Arguments: `{"message": "I want a round diamond, around 1 carat, with a budget of $5,000"}`}},
		}),
		schema.AssistantMessage("Within $5,000 I'd suggest our 1.01 carat round, $4,850.", nil),
	}}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-1", "cycle-1", "I want a round diamond, around 1 carat, with a budget of $5,000")
	if err := f.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(chatModel.inputs) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(chatModel.inputs))
	}
	if len(st.PendingToolCalls) != 0 {
		t.Fatalf("pending calls must be cleared, got %d", len(st.PendingToolCalls))
	}
	if _, ok := st.CatalogContext["recommend_diamonds"]; !ok {
		t.Fatal("recommendation result missing from catalog context")
	}
	if st.Preferences["carat"] != 1.0 {
		t.Fatalf("extracted carat not merged: %v", st.Preferences["carat"])
	}
	if repo.savedPrefs == nil || repo.savedPrefs["budget"] != 5000.0 {
		t.Fatalf("preferences not persisted: %v", repo.savedPrefs)
	}

	// The narration call must see the raw tool results as a trailing
	// assistant turn.
	narrateInput := chatModel.inputs[1]
	last := narrateInput[len(narrateInput)-1]
	if last.Role != schema.Assistant || !strings.Contains(last.Content, "recommend_diamonds") {
		t.Fatalf("narration input missing tool results: %q", last.Content)
	}
	if st.OutboundText != "Within $5,000 I'd suggest our 1.01 carat round, $4,850." {
		t.Fatalf("unexpected reply: %q", st.OutboundText)
	}
}

func TestRunPartialToolFailureStillNarrates(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	chatModel := &fakeToolCallingModel{responses: []*schema.Message{
		schema.AssistantMessage("", []schema.ToolCall{
			{ID: "call-1", Function: schema.FunctionCall{Name: "search_diamonds", Arguments: `{"fluorescence": "strong"}`}},
			{ID: "call-2", Function: schema.FunctionCall{Name: "search_diamonds", Arguments: `{"shape": ["Round"]}`}},
		}),
		schema.AssistantMessage("Here are the round diamonds we have in stock.", nil),
	}}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-1", "cycle-1", "Show me round diamonds")
	if err := f.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(st.ToolResults) != 2 {
		t.Fatalf("expected 2 tool results, got %d", len(st.ToolResults))
	}
	if st.ToolResults[0].Error == "" {
		t.Fatal("invalid criteria call should carry an error")
	}
	if st.ToolResults[1].Error != "" {
		t.Fatalf("sibling call should succeed: %s", st.ToolResults[1].Error)
	}

	// The failed call's error is surfaced to the narrator alongside the
	// sibling's data.
	narrateInput := chatModel.inputs[1]
	last := narrateInput[len(narrateInput)-1]
	if !strings.Contains(last.Content, "error") {
		t.Fatalf("narration input missing error attribution: %q", last.Content)
	}
	if len(repo.committed) != 1 {
		t.Fatalf("cycle should still commit, got %d exchanges", len(repo.committed))
	}
}

func TestRunModelFailureNoCommit(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	chatModel := &fakeToolCallingModel{err: errors.New("model unavailable")}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-1", "cycle-1", "Hello")
	if err := f.Run(context.Background(), st); err == nil {
		t.Fatal("expected error")
	}

	if st.Stage != model.StageFailed {
		t.Fatalf("stage = %s, want failed", st.Stage)
	}
	if len(repo.committed) != 0 {
		t.Fatal("failed cycle must not commit")
	}
}

func TestRunCancelledContextNoCommit(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &fakeRepo{}
	chatModel := &fakeToolCallingModel{responses: []*schema.Message{
		schema.AssistantMessage("never used", nil),
	}}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-1", "cycle-1", "Hello")
	if err := f.Run(ctx, st); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(repo.committed) != 0 {
		t.Fatal("cancelled cycle must not commit")
	}
}

func TestRunHistoryLoadFailure(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{loadErr: errors.New("redis down")}
	chatModel := &fakeToolCallingModel{responses: []*schema.Message{
		schema.AssistantMessage("never used", nil),
	}}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-1", "cycle-1", "Hello")
	if err := f.Run(context.Background(), st); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.committed) != 0 {
		t.Fatal("failed cycle must not commit")
	}
}

func TestRunEmptyModelReplyFallsBack(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	chatModel := &fakeToolCallingModel{responses: []*schema.Message{
		schema.AssistantMessage("   ", nil),
	}}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-1", "cycle-1", "Hello")
	if err := f.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if st.OutboundText != emptyReplyFallback {
		t.Fatalf("reply = %q, want fallback", st.OutboundText)
	}
}

func TestRunSummaryFromHistory(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{history: []*schema.Message{
		schema.UserMessage("I'm after a round diamond around 1 carat"),
		schema.AssistantMessage("Great choice, rounds are our most popular shape.", nil),
	}}
	chatModel := &fakeToolCallingModel{responses: []*schema.Message{
		schema.AssistantMessage("We have several.", nil),
	}}
	f := newTestFlow(t, repo, chatModel)

	st := model.NewConversationState("conv-1", "cycle-1", "What do you have?")
	if err := f.Run(context.Background(), st); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(st.Summary, "Round") {
		t.Fatalf("summary should mention Round: %q", st.Summary)
	}
	if !strings.Contains(st.Summary, "1.00 carat") {
		t.Fatalf("summary should mention the carat target: %q", st.Summary)
	}

	// History precedes the inbound message in the planner input.
	input := chatModel.inputs[0]
	if len(input) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d", len(input))
	}
	if input[1].Content != "I'm after a round diamond around 1 carat" {
		t.Fatalf("history out of order: %q", input[1].Content)
	}
}
