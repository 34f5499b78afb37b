package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/salesvoice-poc/server/internal/agent/graph/prompts"
	"github.com/salesvoice-poc/server/internal/agent/model"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	Client          *genai.Client
	DecisionConfig  *model.DecisionModelConfig
	FormatterConfig *model.FormatterModelConfig
}

// ChatModels holds the decision and formatter chat models. The decision model
// carries the business tools; the formatter model carries only the synthetic
// final-answer tool that produces the structured output.
type ChatModels struct {
	Decision           *gemini.ChatModel
	Formatter          *gemini.ChatModel
	DecisionModelName  string
	FormatterModelName string
}

// NewChatModels creates both chat models on a shared Gemini client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	decision, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      config.Client,
		Model:       config.DecisionConfig.Model,
		Temperature: &config.DecisionConfig.Temperature,
		MaxTokens:   &config.DecisionConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating decision model")
		return nil, fmt.Errorf("error creating decision model: %w", err)
	}

	formatter, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      config.Client,
		Model:       config.FormatterConfig.Model,
		Temperature: &config.FormatterConfig.Temperature,
		MaxTokens:   &config.FormatterConfig.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating formatter model")
		return nil, fmt.Errorf("error creating formatter model: %w", err)
	}

	return &ChatModels{
		Decision:           decision,
		Formatter:          formatter,
		DecisionModelName:  config.DecisionConfig.Model,
		FormatterModelName: config.FormatterConfig.Model,
	}, nil
}

// BindToolsToDecisionModel binds the business tools to the decision model.
func (cm *ChatModels) BindToolsToDecisionModel(ctx context.Context, tools []*schema.ToolInfo) error {
	if err := cm.Decision.BindTools(tools); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to decision model")
		return fmt.Errorf("failed to bind tools: %w", err)
	}
	logx.Debug().Msg("Successfully bound tools to decision model")
	return nil
}

// BindAnswerSchemaToFormatter constrains the formatter model to the
// final-answer shape by binding it as the model's only tool.
func (cm *ChatModels) BindAnswerSchemaToFormatter(ctx context.Context) error {
	if err := cm.Formatter.BindTools([]*schema.ToolInfo{AnswerToolInfo()}); err != nil {
		logx.Error().Err(err).Msg("Failed to bind answer schema to formatter model")
		return fmt.Errorf("failed to bind answer schema: %w", err)
	}
	return nil
}

// AnswerToolInfo describes the structured final answer as a tool schema.
func AnswerToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: prompts.AnswerToolName,
		Desc: "Emit the final structured answer for the customer. Must be called exactly once with the complete response.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"text": {
				Type:     "string",
				Desc:     "The response text, in the customer's language.",
				Required: true,
			},
			"product_ids": {
				Type:     "array",
				Desc:     "Ids of retrieved products the response refers to.",
				ElemInfo: &schema.ParameterInfo{Type: "string"},
			},
			"deal_heading": {
				Type: "string",
				Desc: "Headline for a special deal, when one is offered.",
			},
			"deal_price": {
				Type: "number",
				Desc: "Discounted price of the deal.",
			},
			"deal_product_ids": {
				Type:     "array",
				Desc:     "Ids of products the deal covers.",
				ElemInfo: &schema.ParameterInfo{Type: "string"},
			},
		}),
	}
}
