package nodes

import (
	"github.com/cloudwego/eino/schema"

	"github.com/salesvoice-poc/server/internal/agent/model"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

const DefaultMaxDecideSteps = 6

// normalizeMaxDecideSteps returns a sane default when the provided value is invalid.
func normalizeMaxDecideSteps(n int) int {
	if n <= 0 {
		return DefaultMaxDecideSteps
	}
	return n
}

// nonSystemMessages filters system messages out of history. Every decision
// and formatting step rebuilds its own single system message instead.
func nonSystemMessages(messages []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		if m == nil || m.Role == schema.System {
			continue
		}
		out = append(out, m)
	}
	return out
}

// lastUserMessage returns the content of the most recent user-authored
// message, ok=false when none exists.
func lastUserMessage(messages []*schema.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m == nil {
			continue
		}
		if m.Role == schema.User {
			return m.Content, true
		}
	}
	return "", false
}

type callNames struct {
	byID    map[string]string
	ordered []string
}

// toolCallNames indexes the pending tool invocations of the most recent
// assistant message by correlation id and by position.
func toolCallNames(history []*schema.Message) callNames {
	names := callNames{byID: make(map[string]string)}
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		if m == nil || m.Role != schema.Assistant || len(m.ToolCalls) == 0 {
			continue
		}
		for _, tc := range m.ToolCalls {
			names.byID[tc.ID] = tc.Function.Name
			names.ordered = append(names.ordered, tc.Function.Name)
		}
		break
	}
	return names
}

// applyUsageCost computes and logs USD cost for a model call and accumulates
// the running total into state.
func applyUsageCost(out *schema.Message, modelName string, s *model.AppState) {
	if !model.CostEnabled() || out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}

	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
	if out.Extra == nil {
		out.Extra = map[string]any{}
	}
	out.Extra["usage_cost"] = map[string]any{
		"currency":          "USD",
		"model":             modelName,
		"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
		"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
		"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
		"input_cost":        inC,
		"output_cost":       outC,
		"total_cost":        totalC,
	}

	s.TotalCostUSD += totalC
	out.Extra["usage_cost_total_usd"] = s.TotalCostUSD

	logx.Debug().
		Str("model", modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}
