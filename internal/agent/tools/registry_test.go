package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
)

// fakeStore records the arguments it was called with and returns canned data.
type fakeStore struct {
	searchCriteria *model.SearchCriteria
	searchOut      []model.Diamond
	searchErr      error

	getID  string
	getOut *model.Diamond
	getErr error

	recommendBudget float64
	recommendPrefs  map[string]any
	recommendOut    []model.Diamond
	recommendErr    error
}

func (f *fakeStore) Search(_ context.Context, criteria *model.SearchCriteria) ([]model.Diamond, error) {
	f.searchCriteria = criteria
	return f.searchOut, f.searchErr
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.Diamond, error) {
	f.getID = id
	return f.getOut, f.getErr
}

func (f *fakeStore) Recommend(_ context.Context, budget float64, prefs map[string]any) ([]model.Diamond, error) {
	f.recommendBudget = budget
	f.recommendPrefs = prefs
	return f.recommendOut, f.recommendErr
}

func TestParseKindClosedSet(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"search_diamonds", "get_diamond_details", "recommend_diamonds", "extract_preferences"} {
		if _, err := ParseKind(name); err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", name, err)
		}
	}

	_, err := ParseKind("delete_inventory")
	if !errors.Is(err, errx.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestDispatchRejectsUnknownArgumentKeys(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeStore{})
	args := json.RawMessage(`{"shape": ["Round"], "fluorescence": "none"}`)

	_, err := r.Dispatch(context.Background(), KindSearchDiamonds, args)
	if !errors.Is(err, errx.ErrToolArguments) {
		t.Fatalf("expected ErrToolArguments, got %v", err)
	}
}

func TestDispatchSearchPassesCriteria(t *testing.T) {
	t.Parallel()

	store := &fakeStore{searchOut: []model.Diamond{{ID: "dia-001"}}}
	r := NewRegistry(store)

	out, err := r.Dispatch(context.Background(), KindSearchDiamonds, json.RawMessage(`{"shape": ["Round"], "price": {"max": 5000}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, ok := out.(*SearchDiamondsOutput)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if result.Total != 1 || result.Diamonds[0].ID != "dia-001" {
		t.Fatalf("unexpected output: %+v", result)
	}
	if store.searchCriteria == nil || len(store.searchCriteria.Shape) != 1 {
		t.Fatalf("criteria not passed through: %+v", store.searchCriteria)
	}
	if store.searchCriteria.Price == nil || store.searchCriteria.Price.Max == nil || *store.searchCriteria.Price.Max != 5000 {
		t.Fatalf("price range not passed through: %+v", store.searchCriteria.Price)
	}
}

func TestDispatchSearchInvalidRange(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeStore{})

	cases := []struct {
		name string
		args string
	}{
		{"empty range", `{"price": {}}`},
		{"min above max", `{"carat": {"min": 2.0, "max": 1.0}}`},
	}
	for _, tc := range cases {
		_, err := r.Dispatch(context.Background(), KindSearchDiamonds, json.RawMessage(tc.args))
		if !errors.Is(err, errx.ErrToolArguments) {
			t.Fatalf("%s: expected ErrToolArguments, got %v", tc.name, err)
		}
	}
}

func TestDispatchDetailsAbsentIsSuccess(t *testing.T) {
	t.Parallel()

	store := &fakeStore{getOut: nil}
	r := NewRegistry(store)

	out, err := r.Dispatch(context.Background(), KindGetDiamondDetails, json.RawMessage(`{"diamond_id": "dia-999"}`))
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}

	result := out.(*GetDiamondDetailsOutput)
	if result.Found || result.Diamond != nil {
		t.Fatalf("expected not-found payload, got %+v", result)
	}
	if store.getID != "dia-999" {
		t.Fatalf("id not passed through: %q", store.getID)
	}
}

func TestDispatchDetailsRequiresID(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeStore{})
	_, err := r.Dispatch(context.Background(), KindGetDiamondDetails, json.RawMessage(`{"diamond_id": "   "}`))
	if !errors.Is(err, errx.ErrToolArguments) {
		t.Fatalf("expected ErrToolArguments, got %v", err)
	}
}

func TestDispatchRecommendRequiresPositiveBudget(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeStore{})
	for _, args := range []string{`{}`, `{"budget": 0}`, `{"budget": -100}`} {
		_, err := r.Dispatch(context.Background(), KindRecommendDiamonds, json.RawMessage(args))
		if !errors.Is(err, errx.ErrToolArguments) {
			t.Fatalf("args %s: expected ErrToolArguments, got %v", args, err)
		}
	}
}

func TestDispatchRecommendPassesPreferences(t *testing.T) {
	t.Parallel()

	store := &fakeStore{recommendOut: []model.Diamond{{ID: "dia-002"}, {ID: "dia-001"}}}
	r := NewRegistry(store)

	out, err := r.Dispatch(context.Background(), KindRecommendDiamonds, json.RawMessage(`{"budget": 5000, "preferences": {"shape": ["Round"], "carat": 1.0}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.recommendBudget != 5000 {
		t.Fatalf("budget not passed through: %v", store.recommendBudget)
	}
	if _, ok := store.recommendPrefs["shape"]; !ok {
		t.Fatalf("preferences not passed through: %+v", store.recommendPrefs)
	}
	if result := out.(*RecommendDiamondsOutput); result.Total != 2 {
		t.Fatalf("unexpected total: %d", result.Total)
	}
}

func TestInfosDeclaresAllTools(t *testing.T) {
	t.Parallel()

	infos := Infos()
	if len(infos) != 4 {
		t.Fatalf("expected 4 tool infos, got %d", len(infos))
	}

	seen := map[string]bool{}
	for _, info := range infos {
		seen[info.Name] = true
	}
	for _, name := range []string{"search_diamonds", "get_diamond_details", "recommend_diamonds", "extract_preferences"} {
		if !seen[name] {
			t.Fatalf("tool %q missing from infos", name)
		}
	}
}
