package catalog

import (
	"context"
	"testing"

	"github.com/gemlight/diamond-agent/internal/agent/model"
)

func TestMemorySearchPriceAscendingCapped(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	got, err := store.Search(context.Background(), &model.SearchCriteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != SearchLimit {
		t.Fatalf("expected %d results, got %d", SearchLimit, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Price < got[i-1].Price {
			t.Fatalf("results not price ascending at %d: %v after %v", i, got[i].Price, got[i-1].Price)
		}
	}
}

func TestMemorySearchAppliesFilters(t *testing.T) {
	t.Parallel()

	min, max := 4000.0, 5000.0
	store := NewMemoryStore(nil)
	got, err := store.Search(context.Background(), &model.SearchCriteria{
		Shape: []string{"Round"},
		Price: &model.Range{Min: &min, Max: &max},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected matches in seed inventory")
	}
	for _, d := range got {
		if d.Shape != "Round" {
			t.Fatalf("unexpected shape %q for %s", d.Shape, d.ID)
		}
		if d.Price < min || d.Price > max {
			t.Fatalf("price %v outside [%v, %v] for %s", d.Price, min, max, d.ID)
		}
	}
}

func TestMemoryGetByIDAbsentIsNilNil(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)

	d, err := store.GetByID(context.Background(), "dia-001")
	if err != nil || d == nil {
		t.Fatalf("expected dia-001, got %v err %v", d, err)
	}

	d, err = store.GetByID(context.Background(), "dia-999")
	if err != nil {
		t.Fatalf("absence must not be an error, got %v", err)
	}
	if d != nil {
		t.Fatalf("expected nil diamond, got %v", d)
	}
}

func TestMemoryRecommendBudgetHardFilter(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	got, err := store.Recommend(context.Background(), 5000, map[string]any{
		"shape": []string{"Round"},
		"carat": 1.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected recommendations under budget")
	}
	if len(got) > RecommendLimit {
		t.Fatalf("expected at most %d results, got %d", RecommendLimit, len(got))
	}
	for _, d := range got {
		if d.Price > 5000 {
			t.Fatalf("diamond %s priced %v exceeds budget", d.ID, d.Price)
		}
	}
	// dia-001 is the closest round to 1.0 carat under budget.
	if got[0].ID != "dia-001" {
		t.Fatalf("top recommendation = %s, want dia-001", got[0].ID)
	}
}

func TestMemoryRecommendNothingUnderBudget(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	got, err := store.Recommend(context.Background(), 100, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestMemoryStoreRespectsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore(nil)
	if _, err := store.Search(ctx, &model.SearchCriteria{}); err == nil {
		t.Fatal("expected context error")
	}
}
