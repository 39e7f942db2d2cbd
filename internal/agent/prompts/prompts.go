package prompts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/gemlight/diamond-agent/internal/agent/model"
	"github.com/gemlight/diamond-agent/internal/agent/tools"
)

//go:embed template/system_prompt.txt
var coreSystemPrompt string

// RenderSystem renders the base system prompt via the Eino prompt component.
func RenderSystem(ctx context.Context, config model.PromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	vars := map[string]any{
		"BusinessName":  config.BusinessName,
		"BusinessType":  config.BusinessType,
		"SearchTool":    string(tools.KindSearchDiamonds),
		"DetailsTool":   string(tools.KindGetDiamondDetails),
		"RecommendTool": string(tools.KindRecommendDiamonds),
		"ExtractTool":   string(tools.KindExtractPreferences),
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}

// AugmentSystem appends the dynamic context pieces to the base instructions
// in a fixed order: summary, catalog context, preferences. Empty pieces are
// skipped; JSON key order is stable, so the assembled prompt is
// deterministic for a given state.
func AugmentSystem(base, summary string, catalogContext, preferences map[string]any) string {
	var b strings.Builder
	b.WriteString(base)

	if strings.TrimSpace(summary) != "" {
		b.WriteString("\n\nConversation summary: ")
		b.WriteString(summary)
	}
	if len(catalogContext) > 0 {
		b.WriteString("\n\nCatalog context: ")
		b.WriteString(marshalIndent(catalogContext))
	}
	if len(preferences) > 0 {
		b.WriteString("\n\nCustomer preferences: ")
		b.WriteString(marshalIndent(preferences))
	}

	return b.String()
}

func marshalIndent(m map[string]any) string {
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", m)
	}
	return string(out)
}
