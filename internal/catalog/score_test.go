package catalog

import (
	"math"
	"testing"

	"github.com/gemlight/diamond-agent/internal/agent/model"
)

func TestMatchScoreCategoricalAndCarat(t *testing.T) {
	t.Parallel()

	d := &model.Diamond{ID: "d1", Carat: 1.01, Cut: "Excellent", Color: "H", Clarity: "VS2", Shape: "Round", Price: 4850}
	prefs := map[string]any{
		"shape": "Round",
		"color": []string{"H"},
		"carat": 1.0,
	}

	got := MatchScore(d, prefs)
	want := 10.0 + 10.0 + (10.0 - 0.01)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", got, want)
	}
}

func TestMatchScoreDecodedJSONPreferences(t *testing.T) {
	t.Parallel()

	d := &model.Diamond{ID: "d1", Cut: "Very Good", Color: "G", Clarity: "VS1", Shape: "Princess"}
	// Preferences decoded from JSON arrive as []any, not []string.
	prefs := map[string]any{
		"cut":     []any{"very good"},
		"clarity": []any{"vs1", "vs2"},
	}

	if got := MatchScore(d, prefs); got != 20.0 {
		t.Fatalf("score = %v, want 20", got)
	}
}

func TestMatchScoreBudgetNeverScores(t *testing.T) {
	t.Parallel()

	d := &model.Diamond{ID: "d1", Price: 100}
	if got := MatchScore(d, map[string]any{"budget": 5000.0}); got != 0 {
		t.Fatalf("score = %v, want 0", got)
	}
}

func TestRankByScoreOrderAndTies(t *testing.T) {
	t.Parallel()

	diamonds := []model.Diamond{
		{ID: "cheap-miss", Shape: "Oval", Price: 1000},
		{ID: "match-expensive", Shape: "Round", Price: 5000},
		{ID: "match-cheap", Shape: "Round", Price: 3000},
		{ID: "miss", Shape: "Pear", Price: 2000},
	}
	prefs := map[string]any{"shape": "Round"}

	ranked := RankByScore(diamonds, prefs, 3)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 results, got %d", len(ranked))
	}

	wantOrder := []string{"match-cheap", "match-expensive", "cheap-miss"}
	for i, want := range wantOrder {
		if ranked[i].ID != want {
			t.Fatalf("position %d = %s, want %s", i, ranked[i].ID, want)
		}
	}
}

func TestRankByScoreDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	diamonds := []model.Diamond{
		{ID: "b", Shape: "Pear", Price: 2000},
		{ID: "a", Shape: "Round", Price: 1000},
	}

	RankByScore(diamonds, map[string]any{"shape": "Round"}, 0)
	if diamonds[0].ID != "b" || diamonds[1].ID != "a" {
		t.Fatalf("input slice was reordered: %s, %s", diamonds[0].ID, diamonds[1].ID)
	}
}
