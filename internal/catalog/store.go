package catalog

import (
	"context"

	"github.com/gemlight/diamond-agent/internal/agent/model"
)

const (
	// SearchLimit caps criteria search results; matches are returned price
	// ascending.
	SearchLimit = 10
	// RecommendLimit caps recommendation results; candidates are ranked by
	// match score descending, price ascending.
	RecommendLimit = 5
)

// Store is the catalog persistence contract used by the tool registry.
type Store interface {
	// Search returns diamonds matching the criteria, price ascending,
	// capped at SearchLimit.
	Search(ctx context.Context, criteria *model.SearchCriteria) ([]model.Diamond, error)

	// GetByID returns one diamond or (nil, nil) when absent. Absence is not
	// an error at this boundary.
	GetByID(ctx context.Context, id string) (*model.Diamond, error)

	// Recommend returns up to RecommendLimit diamonds priced at or under
	// budget, ranked by preference match score descending then price
	// ascending. Budget is a hard filter, never a penalty.
	Recommend(ctx context.Context, budget float64, prefs map[string]any) ([]model.Diamond, error)
}
