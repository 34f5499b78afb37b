// Package prompts renders the system instructions for the decision and
// formatting steps. Rendering goes through the Eino prompt component so
// prompt callbacks fire for observability.
package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/salesvoice-poc/server/internal/agent/graph/tools"
	"github.com/salesvoice-poc/server/internal/agent/model"
)

//go:embed template/decision_prompt.txt
var decisionSystemPrompt string

//go:embed template/answer_prompt.txt
var answerSystemPrompt string

// AnswerToolName is the synthetic tool the formatter model is constrained to
// call; its arguments are the structured final answer.
const AnswerToolName = "final_answer"

// RenderDecisionSystem renders the decision-step system prompt. Exactly one
// such message exists per decision step; it is rebuilt fresh every time.
func RenderDecisionSystem(ctx context.Context, cfg model.PromptConfig, lang string, productContextIDs []string) (string, error) {
	productContext := "None"
	if len(productContextIDs) > 0 {
		productContext = strings.Join(productContextIDs, ", ")
	}

	return render(ctx, decisionSystemPrompt, map[string]any{
		"BusinessType":   cfg.BusinessType,
		"BusinessName":   cfg.BusinessName,
		"Language":       strings.ToUpper(lang),
		"ProductContext": productContext,
		"SearchTool":     tools.ToolFindProduct,
		"DealTool":       tools.ToolGetDeal,
	})
}

// RenderAnswerSystem renders the formatting-step system prompt mandating the
// carried language.
func RenderAnswerSystem(ctx context.Context, lang string) (string, error) {
	return render(ctx, answerSystemPrompt, map[string]any{
		"Language":   strings.ToUpper(lang),
		"AnswerTool": AnswerToolName,
		"SearchTool": tools.ToolFindProduct,
	})
}

func render(ctx context.Context, template string, vars map[string]any) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(template),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt render: empty result")
	}
	return msgs[0].Content, nil
}
