package nodes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesvoice-poc/server/internal/agent/graph/tools"
	"github.com/salesvoice-poc/server/internal/agent/model"
	"github.com/salesvoice-poc/server/internal/catalog"
	errx "github.com/salesvoice-poc/server/internal/core/error"
)

func testPromptConfig() *model.PromptConfig {
	return &model.PromptConfig{BusinessType: "mobile phone store", BusinessName: "MobileMart"}
}

func TestInputConverterPreHandlerResetsState(t *testing.T) {
	s := &model.AppState{
		History:           []*schema.Message{schema.UserMessage("stale")},
		RetrievedProducts: map[string]catalog.Product{"x": {}},
		ProductContextIDs: []string{"x"},
		DecideSteps:       3,
		ToolCallIDSeq:     2,
		TotalCostUSD:      0.5,
	}

	_, err := NewInputConverterPreHandler()(context.Background(), model.QueryInput{}, s)
	require.NoError(t, err)

	assert.Empty(t, s.History)
	assert.Empty(t, s.RetrievedProducts)
	assert.Empty(t, s.ProductContextIDs)
	assert.Zero(t, s.DecideSteps)
	assert.Zero(t, s.ToolCallIDSeq)
	assert.Zero(t, s.TotalCostUSD)
}

func TestDecisionPreHandlerBuildsFreshSystemMessage(t *testing.T) {
	handler := NewDecisionPreHandler(testPromptConfig(), 6)
	s := &model.AppState{
		History: []*schema.Message{schema.SystemMessage("previous system")},
	}

	out, err := handler(context.Background(), []*schema.Message{schema.UserMessage("show me phones")}, s)
	require.NoError(t, err)

	// Exactly one system message, at the front, freshly rendered.
	require.NotEmpty(t, out)
	assert.Equal(t, schema.System, out[0].Role)
	assert.NotEqual(t, "previous system", out[0].Content)
	for _, m := range out[1:] {
		assert.NotEqual(t, schema.System, m.Role)
	}
	assert.Equal(t, "show me phones", out[len(out)-1].Content)
}

func TestDecisionPreHandlerAppendsIncomingToHistory(t *testing.T) {
	handler := NewDecisionPreHandler(testPromptConfig(), 6)
	s := &model.AppState{}

	_, err := handler(context.Background(), []*schema.Message{schema.UserMessage("hi")}, s)
	require.NoError(t, err)
	require.Len(t, s.History, 1)
	assert.Equal(t, 1, s.DecideSteps)
}

func TestDecisionPreHandlerDetectsLanguage(t *testing.T) {
	handler := NewDecisionPreHandler(testPromptConfig(), 6)
	s := &model.AppState{}

	_, err := handler(context.Background(), []*schema.Message{schema.UserMessage("전화기 보여줘")}, s)
	require.NoError(t, err)
	assert.Equal(t, "ko-KR", s.DetectedLanguage)
}

func TestDecisionPreHandlerEnforcesStepBound(t *testing.T) {
	handler := NewDecisionPreHandler(testPromptConfig(), 2)
	s := &model.AppState{}

	for i := 0; i < 2; i++ {
		_, err := handler(context.Background(), []*schema.Message{schema.UserMessage("more")}, s)
		require.NoError(t, err)
	}

	_, err := handler(context.Background(), nil, s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrToolLoopExceeded))
}

func TestDecisionPostHandlerSynthesizesToolCallIDs(t *testing.T) {
	handler := NewDecisionPostHandler("gemini-2.5-flash")
	s := &model.AppState{}

	out := schema.AssistantMessage("", []schema.ToolCall{
		{Function: schema.FunctionCall{Name: tools.ToolFindProduct, Arguments: "{}"}},
		{ID: "call_abc", Function: schema.FunctionCall{Name: tools.ToolGetDeal, Arguments: "{}"}},
	})

	got, err := handler(context.Background(), out, s)
	require.NoError(t, err)
	assert.Equal(t, "call_1", got.ToolCalls[0].ID)
	assert.Equal(t, "call_abc", got.ToolCalls[1].ID)
	require.Len(t, s.History, 1)
}

func TestToolExecutorCondition(t *testing.T) {
	cond := NewToolExecutorCondition()

	withTools := schema.AssistantMessage("", []schema.ToolCall{{ID: "1"}})
	node, err := cond(context.Background(), withTools)
	require.NoError(t, err)
	assert.Equal(t, NodeToolExecutor, node)

	plain := schema.AssistantMessage("done", nil)
	node, err = cond(context.Background(), plain)
	require.NoError(t, err)
	assert.Equal(t, NodeAnswerAssembler, node)
}

func TestToolExecutorPostHandlerMergesSearchResults(t *testing.T) {
	handler := NewToolExecutorPostHandler()

	searchOutput, err := json.Marshal(tools.FindProductOutput{
		Products: []catalog.Product{{ID: "mobile_08"}, {ID: "mobile_09"}},
		Total:    2,
	})
	require.NoError(t, err)

	s := &model.AppState{
		History: []*schema.Message{
			schema.UserMessage("find me a phone"),
			schema.AssistantMessage("", []schema.ToolCall{
				{ID: "call_1", Function: schema.FunctionCall{Name: tools.ToolFindProduct}},
			}),
		},
	}

	out := []*schema.Message{schema.ToolMessage(string(searchOutput), "call_1")}
	_, err = handler(context.Background(), out, s)
	require.NoError(t, err)

	assert.Equal(t, []string{"mobile_08", "mobile_09"}, s.ProductContextIDs)
	assert.Len(t, s.RetrievedProducts, 2)
}

func TestToolExecutorPostHandlerIgnoresOtherTools(t *testing.T) {
	handler := NewToolExecutorPostHandler()

	s := &model.AppState{
		History: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{
				{ID: "call_1", Function: schema.FunctionCall{Name: tools.ToolGetDeal}},
			}),
		},
	}

	out := []*schema.Message{schema.ToolMessage(`{"heading":"Deal"}`, "call_1")}
	_, err := handler(context.Background(), out, s)
	require.NoError(t, err)
	assert.Empty(t, s.ProductContextIDs)
	assert.Empty(t, s.RetrievedProducts)
}

func TestToolExecutorPostHandlerPositionalFallback(t *testing.T) {
	handler := NewToolExecutorPostHandler()

	searchOutput, err := json.Marshal(tools.FindProductOutput{
		Products: []catalog.Product{{ID: "mobile_10"}},
		Total:    1,
	})
	require.NoError(t, err)

	s := &model.AppState{
		History: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{
				{Function: schema.FunctionCall{Name: tools.ToolFindProduct}},
			}),
		},
	}

	// The tool result carries no correlation id; position decides.
	out := []*schema.Message{schema.ToolMessage(string(searchOutput), "")}
	_, err = handler(context.Background(), out, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"mobile_10"}, s.ProductContextIDs)
}

func TestExtractFinalAnswerFromToolCall(t *testing.T) {
	args, err := json.Marshal(model.FinalAnswer{Text: "here", ProductIDs: []string{"mobile_08"}})
	require.NoError(t, err)

	resp := schema.AssistantMessage("", []schema.ToolCall{
		{ID: "1", Function: schema.FunctionCall{Name: "final_answer", Arguments: string(args)}},
	})

	answer, err := extractFinalAnswer(resp)
	require.NoError(t, err)
	assert.Equal(t, "here", answer.Text)
	assert.Equal(t, []string{"mobile_08"}, answer.ProductIDs)
}

func TestExtractFinalAnswerFromFencedContent(t *testing.T) {
	resp := schema.AssistantMessage("```json\n{\"text\":\"inline answer\"}\n```", nil)

	answer, err := extractFinalAnswer(resp)
	require.NoError(t, err)
	assert.Equal(t, "inline answer", answer.Text)
}

func TestExtractFinalAnswerRejectsUnstructured(t *testing.T) {
	_, err := extractFinalAnswer(schema.AssistantMessage("just prose", nil))
	assert.Error(t, err)

	_, err = extractFinalAnswer(nil)
	assert.Error(t, err)
}

func TestNonSystemMessages(t *testing.T) {
	messages := []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("u"),
		nil,
		schema.AssistantMessage("a", nil),
	}

	got := nonSystemMessages(messages)
	require.Len(t, got, 2)
	assert.Equal(t, schema.User, got[0].Role)
	assert.Equal(t, schema.Assistant, got[1].Role)
}

func TestLastUserMessage(t *testing.T) {
	messages := []*schema.Message{
		schema.UserMessage("first"),
		schema.AssistantMessage("a", nil),
		schema.UserMessage("last"),
		schema.AssistantMessage("b", nil),
	}

	content, ok := lastUserMessage(messages)
	require.True(t, ok)
	assert.Equal(t, "last", content)

	_, ok = lastUserMessage(nil)
	assert.False(t, ok)
}

func TestApplyUsageCostAccumulates(t *testing.T) {
	s := &model.AppState{}
	out := &schema.Message{
		Role: schema.Assistant,
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 0, TotalTokens: 1_000_000},
		},
	}

	applyUsageCost(out, "gemini-2.5-flash", s)
	assert.InDelta(t, 0.30, s.TotalCostUSD, 1e-9)
	require.NotNil(t, out.Extra)
	assert.Contains(t, out.Extra, "usage_cost")

	applyUsageCost(out, "gemini-2.5-flash", s)
	assert.InDelta(t, 0.60, s.TotalCostUSD, 1e-9)
}

func TestApplyUsageCostNoMeta(t *testing.T) {
	s := &model.AppState{}
	applyUsageCost(schema.AssistantMessage("x", nil), "gemini-2.5-flash", s)
	assert.Zero(t, s.TotalCostUSD)
}
