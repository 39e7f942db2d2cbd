package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
)

// SearchDiamondsInput mirrors the fixed criteria set: numeric ranges for
// carat and price, set membership for the categorical grades. Unknown keys
// are rejected during decoding.
type SearchDiamondsInput struct {
	Carat   *model.Range `json:"carat,omitempty"`
	Price   *model.Range `json:"price,omitempty"`
	Color   []string     `json:"color,omitempty"`
	Clarity []string     `json:"clarity,omitempty"`
	Cut     []string     `json:"cut,omitempty"`
	Shape   []string     `json:"shape,omitempty"`
}

type SearchDiamondsOutput struct {
	Diamonds []model.Diamond `json:"diamonds"`
	Total    int             `json:"total"`
}

func decodeSearchInput(raw json.RawMessage) (*SearchDiamondsInput, error) {
	var in SearchDiamondsInput
	if err := decodeStrict(raw, &in); err != nil {
		return nil, err
	}
	if err := validateRange(in.Carat, "carat"); err != nil {
		return nil, err
	}
	if err := validateRange(in.Price, "price"); err != nil {
		return nil, err
	}
	return &in, nil
}

func validateRange(r *model.Range, name string) error {
	if r == nil {
		return nil
	}
	if r.Min == nil && r.Max == nil {
		return fmt.Errorf("%w: %s range needs min or max", errx.ErrToolArguments, name)
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%w: %s range min exceeds max", errx.ErrToolArguments, name)
	}
	return nil
}

func (r *Registry) searchDiamonds(ctx context.Context, in *SearchDiamondsInput) (*SearchDiamondsOutput, error) {
	criteria := &model.SearchCriteria{
		Carat:   in.Carat,
		Price:   in.Price,
		Color:   in.Color,
		Clarity: in.Clarity,
		Cut:     in.Cut,
		Shape:   in.Shape,
	}

	diamonds, err := r.store.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return &SearchDiamondsOutput{Diamonds: diamonds, Total: len(diamonds)}, nil
}
