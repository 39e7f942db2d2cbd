package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
)

type RecommendDiamondsInput struct {
	Budget      float64        `json:"budget"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

type RecommendDiamondsOutput struct {
	Diamonds []model.Diamond `json:"diamonds"`
	Total    int             `json:"total"`
}

func decodeRecommendInput(raw json.RawMessage) (*RecommendDiamondsInput, error) {
	var in RecommendDiamondsInput
	if err := decodeStrict(raw, &in); err != nil {
		return nil, err
	}
	if in.Budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive", errx.ErrToolArguments)
	}
	return &in, nil
}

func (r *Registry) recommendDiamonds(ctx context.Context, in *RecommendDiamondsInput) (*RecommendDiamondsOutput, error) {
	diamonds, err := r.store.Recommend(ctx, in.Budget, in.Preferences)
	if err != nil {
		return nil, err
	}
	return &RecommendDiamondsOutput{Diamonds: diamonds, Total: len(diamonds)}, nil
}
