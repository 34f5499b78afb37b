package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/salesvoice-poc/server/internal/agent/graph/prompts"
	"github.com/salesvoice-poc/server/internal/agent/graph/tools"
	"github.com/salesvoice-poc/server/internal/agent/model"
	"github.com/salesvoice-poc/server/internal/catalog"
	errx "github.com/salesvoice-poc/server/internal/core/error"
	"github.com/salesvoice-poc/server/internal/language"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

// Node names used across the graph definition.
const (
	NodeInputConverter  = "InputConverter"
	NodeDecisionModel   = "DecisionChatModel"
	NodeToolExecutor    = "ToolExecutor"
	NodeAnswerAssembler = "AnswerAssembler"
	NodeFormatterModel  = "FormatterChatModel"
	NodeAnswerParser    = "AnswerParser"
)

// NewInputConverterPreHandler resets per-turn state before the seed messages
// are built.
func NewInputConverterPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.History = nil
		s.RetrievedProducts = make(map[string]catalog.Product)
		s.ProductContextIDs = nil
		s.DecideSteps = 0
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputConverterNode converts the caller-supplied turn into the seed
// message sequence. Malformed history roles are rejected, never coerced.
func NewInputConverterNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		if strings.TrimSpace(input.UserMessage) == "" {
			return nil, errx.New(fmt.Errorf("empty user message"), http.StatusBadRequest, "user_message is required")
		}

		messages := make([]*schema.Message, 0, len(input.History)+1)
		for i, turn := range input.History {
			switch turn.Role {
			case model.RoleUser:
				messages = append(messages, schema.UserMessage(turn.Content))
			case model.RoleAssistant:
				messages = append(messages, schema.AssistantMessage(turn.Content, nil))
			default:
				return nil, errx.New(
					fmt.Errorf("history[%d] has role %q", i, turn.Role),
					http.StatusBadRequest,
					"history roles must be user or assistant",
				)
			}
		}
		messages = append(messages, schema.UserMessage(input.UserMessage))

		lang := input.Language
		if lang == "" {
			lang = language.DefaultTag
		}
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			s.DetectedLanguage = lang
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("seed conversation state: %w", err)
		}

		return messages, nil
	})
}

// NewDecisionPreHandler prepares each decision step: it appends the incoming
// messages (seed history or tool results) to state, re-detects the language
// from the most recent user message, enforces the decide-step bound, and
// rebuilds exactly one fresh system message in front of the non-system
// history. System messages are never accumulated.
func NewDecisionPreHandler(promptCfg *model.PromptConfig, maxDecideSteps int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, s *model.AppState) ([]*schema.Message, error) {
		s.History = append(s.History, in...)

		if content, ok := lastUserMessage(s.History); ok {
			s.DetectedLanguage = language.Detect(content)
		} else if s.DetectedLanguage == "" {
			s.DetectedLanguage = language.DefaultTag
		}

		s.DecideSteps++
		if s.DecideSteps > normalizeMaxDecideSteps(maxDecideSteps) {
			logx.Warn().
				Int("decide_steps", s.DecideSteps).
				Msg("decide/act cycle did not converge")
			return nil, errx.NewToolLoopExceeded(normalizeMaxDecideSteps(maxDecideSteps))
		}

		systemPrompt, err := prompts.RenderDecisionSystem(ctx, *promptCfg, s.DetectedLanguage, s.ProductContextIDs)
		if err != nil {
			return nil, fmt.Errorf("render decision prompt: %w", err)
		}

		out := make([]*schema.Message, 0, len(s.History)+1)
		out = append(out, schema.SystemMessage(systemPrompt))
		out = append(out, nonSystemMessages(s.History)...)

		logx.Debug().
			Int("decide_steps", s.DecideSteps).
			Str("language", s.DetectedLanguage).
			Msg("decision step")

		return out, nil
	}
}

// NewDecisionPostHandler records usage cost, synthesizes missing tool call
// ids, and appends the model output to history.
func NewDecisionPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, s *model.AppState) (*schema.Message, error) {
		applyUsageCost(out, modelName, s)

		// Some providers omit tool_call ids; synthesize them so results can
		// be correlated back to requests.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					s.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", s.ToolCallIDSeq)
				}
			}
		}

		s.History = append(s.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("model requested tools")
		} else {
			logx.Debug().Msg("model answered directly")
		}
		return out, nil
	}
}

// NewToolExecutorCondition routes to the tool executor when the decision
// carries tool invocations, otherwise on to answer formatting.
func NewToolExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		if len(input.ToolCalls) > 0 {
			return NodeToolExecutor, nil
		}
		return NodeAnswerAssembler, nil
	}
}

// NewToolExecutorPostHandler merges product search results into state: the
// context id list is replaced by the latest search, retrieved products are
// union-merged. Other tools leave orchestrator state untouched.
func NewToolExecutorPostHandler() func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, out []*schema.Message, s *model.AppState) ([]*schema.Message, error) {
		names := toolCallNames(s.History)

		for i, msg := range out {
			if msg == nil || msg.Role != schema.Tool {
				continue
			}
			name := names.byID[msg.ToolCallID]
			if name == "" && i < len(names.ordered) {
				// Fall back to positional correlation: results are emitted in
				// invocation order.
				name = names.ordered[i]
			}
			if name != tools.ToolFindProduct {
				continue
			}

			var result tools.FindProductOutput
			if err := json.Unmarshal([]byte(msg.Content), &result); err != nil {
				logx.Error().Err(err).Msg("failed to decode product search output")
				return nil, fmt.Errorf("decode %s output: %w", tools.ToolFindProduct, err)
			}
			s.MergeSearchResults(result.Products)

			logx.Debug().
				Int("results", len(result.Products)).
				Int("retrieved_total", len(s.RetrievedProducts)).
				Msg("merged product search results")
		}

		return out, nil
	}
}

// NewAnswerAssemblerNode builds the formatting-step messages: one fresh
// system instruction mandating the carried language, then the non-system
// history.
func NewAnswerAssemblerNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ *schema.Message) ([]*schema.Message, error) {
		var (
			history []*schema.Message
			lang    string
		)
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			history = nonSystemMessages(s.History)
			lang = s.DetectedLanguage
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		systemPrompt, err := prompts.RenderAnswerSystem(ctx, lang)
		if err != nil {
			return nil, fmt.Errorf("render answer prompt: %w", err)
		}

		messages := make([]*schema.Message, 0, len(history)+1)
		messages = append(messages, schema.SystemMessage(systemPrompt))
		messages = append(messages, history...)
		return messages, nil
	})
}

// NewFormatterPostHandler records usage cost for the formatting call.
func NewFormatterPostHandler(modelName string) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, s *model.AppState) (*schema.Message, error) {
		applyUsageCost(out, modelName, s)
		return out, nil
	}
}

// NewAnswerParserNode extracts the structured final answer from the formatter
// output and resolves it against the turn's retrieved products.
func NewAnswerParserNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, resp *schema.Message) (*model.TurnOutcome, error) {
		answer, err := extractFinalAnswer(resp)
		if err != nil {
			logx.Error().Err(err).Msg("failed to extract final answer")
			return nil, err
		}

		var outcome *model.TurnOutcome
		err = compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			outcome = model.ResolveOutcome(*answer, s.RetrievedProducts, s.DetectedLanguage)
			outcome.TotalCostUSD = s.TotalCostUSD
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return outcome, nil
	})
}

// extractFinalAnswer reads the answer from the synthetic tool call, falling
// back to parsing the message content as JSON when the model answered inline.
func extractFinalAnswer(resp *schema.Message) (*model.FinalAnswer, error) {
	if resp == nil {
		return nil, fmt.Errorf("formatter returned no message")
	}

	for _, tc := range resp.ToolCalls {
		if tc.Function.Name != prompts.AnswerToolName {
			continue
		}
		var answer model.FinalAnswer
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &answer); err != nil {
			return nil, fmt.Errorf("decode %s arguments: %w", prompts.AnswerToolName, err)
		}
		return &answer, nil
	}

	content := strings.TrimSpace(resp.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "{") {
		var answer model.FinalAnswer
		if err := json.Unmarshal([]byte(content), &answer); err == nil && answer.Text != "" {
			return &answer, nil
		}
	}

	return nil, fmt.Errorf("formatter did not produce a structured answer")
}
