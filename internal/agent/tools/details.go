package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
)

type GetDiamondDetailsInput struct {
	DiamondID string `json:"diamond_id"`
}

// GetDiamondDetailsOutput reports absence as a successful empty payload, not
// an error; the narrator explains "not found" to the customer.
type GetDiamondDetailsOutput struct {
	Found   bool           `json:"found"`
	Diamond *model.Diamond `json:"diamond,omitempty"`
}

func decodeDetailsInput(raw json.RawMessage) (*GetDiamondDetailsInput, error) {
	var in GetDiamondDetailsInput
	if err := decodeStrict(raw, &in); err != nil {
		return nil, err
	}
	in.DiamondID = strings.TrimSpace(in.DiamondID)
	if in.DiamondID == "" {
		return nil, fmt.Errorf("%w: diamond_id is required", errx.ErrToolArguments)
	}
	return &in, nil
}

func (r *Registry) getDiamondDetails(ctx context.Context, in *GetDiamondDetailsInput) (*GetDiamondDetailsOutput, error) {
	d, err := r.store.GetByID(ctx, in.DiamondID)
	if err != nil {
		return nil, err
	}
	return &GetDiamondDetailsOutput{Found: d != nil, Diamond: d}, nil
}
