package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	"github.com/gemlight/diamond-agent/internal/catalog"
	errx "github.com/gemlight/diamond-agent/internal/core/error"
)

// Kind is the closed set of tools the planner may request. Dispatch is an
// exhaustive switch over these values; an unknown name fails before any tool
// body runs.
type Kind string

const (
	KindSearchDiamonds     Kind = "search_diamonds"
	KindGetDiamondDetails  Kind = "get_diamond_details"
	KindRecommendDiamonds  Kind = "recommend_diamonds"
	KindExtractPreferences Kind = "extract_preferences"
)

// ParseKind maps a requested tool name onto the closed Kind set.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindSearchDiamonds, KindGetDiamondDetails, KindRecommendDiamonds, KindExtractPreferences:
		return Kind(name), nil
	default:
		return "", fmt.Errorf("%w: %q", errx.ErrUnknownTool, name)
	}
}

// IsCatalogQuery reports whether successful results of this tool belong in
// the cycle's catalog context.
func (k Kind) IsCatalogQuery() bool {
	switch k {
	case KindSearchDiamonds, KindGetDiamondDetails, KindRecommendDiamonds:
		return true
	}
	return false
}

// Registry validates and executes tool invocations against the catalog store.
type Registry struct {
	store catalog.Store
}

func NewRegistry(store catalog.Store) *Registry {
	return &Registry{store: store}
}

// Dispatch validates arguments against the tool's input schema and runs the
// tool. Validation failures surface before execution, wrapped in
// errx.ErrToolArguments.
func (r *Registry) Dispatch(ctx context.Context, kind Kind, args json.RawMessage) (any, error) {
	switch kind {
	case KindSearchDiamonds:
		in, err := decodeSearchInput(args)
		if err != nil {
			return nil, err
		}
		return r.searchDiamonds(ctx, in)
	case KindGetDiamondDetails:
		in, err := decodeDetailsInput(args)
		if err != nil {
			return nil, err
		}
		return r.getDiamondDetails(ctx, in)
	case KindRecommendDiamonds:
		in, err := decodeRecommendInput(args)
		if err != nil {
			return nil, err
		}
		return r.recommendDiamonds(ctx, in)
	case KindExtractPreferences:
		in, err := decodeExtractInput(args)
		if err != nil {
			return nil, err
		}
		return ExtractPreferences(in.Message), nil
	default:
		return nil, fmt.Errorf("%w: %q", errx.ErrUnknownTool, string(kind))
	}
}

// decodeStrict rejects unknown argument keys instead of silently ignoring
// them, so malformed criteria never reach the store.
func decodeStrict(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errx.ErrToolArguments, err)
	}
	return nil
}

// Infos declares the tool schemas bound to the response model.
func Infos() []*schema.ToolInfo {
	rangeParam := func(desc string) *schema.ParameterInfo {
		return &schema.ParameterInfo{
			Type: schema.Object,
			Desc: desc,
			SubParams: map[string]*schema.ParameterInfo{
				"min": {Type: schema.Number, Desc: "Lower bound, inclusive"},
				"max": {Type: schema.Number, Desc: "Upper bound, inclusive"},
			},
		}
	}
	enumArray := func(desc string, values []string) *schema.ParameterInfo {
		return &schema.ParameterInfo{
			Type:     schema.Array,
			Desc:     desc,
			ElemInfo: &schema.ParameterInfo{Type: schema.String, Enum: values},
		}
	}

	return []*schema.ToolInfo{
		{
			Name: string(KindSearchDiamonds),
			Desc: "Search the diamond inventory by filter criteria. Returns up to 10 matches, cheapest first. Use whenever the customer asks what is available.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"carat":   rangeParam("Carat weight range, e.g. {\"min\": 1.0, \"max\": 2.0}"),
				"price":   rangeParam("Price range in USD, e.g. {\"min\": 5000, \"max\": 15000}"),
				"color":   enumArray("Color grades to include", model.Colors),
				"clarity": enumArray("Clarity grades to include", model.Clarities),
				"cut":     enumArray("Cut grades to include", model.Cuts),
				"shape":   enumArray("Shapes to include", model.Shapes),
			}),
		},
		{
			Name: string(KindGetDiamondDetails),
			Desc: "Get full details for one diamond by its inventory ID (e.g. dia-001). Use when the customer asks about a specific stone.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"diamond_id": {Type: schema.String, Desc: "Inventory ID from earlier search results", Required: true},
			}),
		},
		{
			Name: string(KindRecommendDiamonds),
			Desc: "Recommend up to 5 diamonds within a hard budget ceiling, ranked by how well they match the customer's stated preferences.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"budget":      {Type: schema.Number, Desc: "Maximum price in USD; diamonds above it are excluded", Required: true},
				"preferences": {Type: schema.Object, Desc: "Preference map: carat (number), color/clarity/cut/shape (arrays of strings)"},
			}),
		},
		{
			Name: string(KindExtractPreferences),
			Desc: "Extract diamond preferences (carat, budget, color, clarity, cut, shape) from a free-text customer message. Returns only the keys actually mentioned.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"message": {Type: schema.String, Desc: "Customer message to extract preferences from", Required: true},
			}),
		},
	}
}
