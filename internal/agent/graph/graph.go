// Package graph composes the dialogue orchestrator: a state machine that
// alternates between a decision step, tool execution and a structured
// formatting step, threading conversation state across iterations.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"google.golang.org/genai"

	"github.com/salesvoice-poc/server/internal/agent/graph/nodes"
	"github.com/salesvoice-poc/server/internal/agent/graph/observers"
	"github.com/salesvoice-poc/server/internal/agent/graph/tools"
	"github.com/salesvoice-poc/server/internal/agent/model"
	"github.com/salesvoice-poc/server/internal/catalog"
	errx "github.com/salesvoice-poc/server/internal/core/error"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

// Runner executes one complete chat turn against the compiled graph.
type Runner interface {
	Run(ctx context.Context, in model.QueryInput) (*model.TurnOutcome, error)
}

// Config holds everything needed to compose the full sales graph end-to-end.
type Config struct {
	Client         *genai.Client
	DecisionModel  model.DecisionModelConfig
	FormatterModel model.FormatterModelConfig
	Prompt         model.PromptConfig
	Conversation   model.ConversationConfig
	Catalog        *catalog.Client
}

// GraphConfig holds all configuration needed to build the graph.
type GraphConfig struct {
	ChatModels     *nodes.ChatModels
	Catalog        *catalog.Client
	PromptConfig   *model.PromptConfig
	MaxDecideSteps int
	ToolMaxCalls   int
}

// GraphBuilder handles the construction of the dialogue graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.TurnOutcome]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.TurnOutcome]
}

func (r *graphRunner) Run(ctx context.Context, in model.QueryInput) (*model.TurnOutcome, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("graph returned no outcome")
	}
	return out, nil
}

// BuildSalesGraph composes chat models, builds the graph, and returns a Runner.
func BuildSalesGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog client is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		Client:          cfg.Client,
		DecisionConfig:  &cfg.DecisionModel,
		FormatterConfig: &cfg.FormatterModel,
	})
	if err != nil {
		return nil, err
	}

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:     cms,
		Catalog:        cfg.Catalog,
		PromptConfig:   &cfg.Prompt,
		MaxDecideSteps: cfg.Conversation.MaxDecideSteps,
		ToolMaxCalls:   cfg.Conversation.Tools.MaxCalls,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Sales graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled dialogue graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.TurnOutcome], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Decision == nil || config.ChatModels.Formatter == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.Catalog == nil || config.PromptConfig == nil {
		return nil, fmt.Errorf("catalog/prompt config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.TurnOutcome](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools configures business tools, binds them to the decision model and
// adds the tool executor node.
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	businessTools := tools.GetQueryTools(b.config.Catalog)
	toolInfos, err := tools.GetToolInfos(ctx, businessTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModels.BindToolsToDecisionModel(ctx, toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to decision model")
		return fmt.Errorf("failed to bind tools to decision model: %w", err)
	}
	if err := b.config.ChatModels.BindAnswerSchemaToFormatter(ctx); err != nil {
		logx.Error().Err(err).Msg("Failed to bind answer schema")
		return fmt.Errorf("failed to bind answer schema: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               businessTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// A nonexistent tool name fails the turn; there is no silent
			// fallback and no partial state corruption.
			logx.Warn().Str("tool_name", name).Str("arguments", input).Msg("Unknown tool requested")
			return "", errx.NewUnknownTool(name)
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			// Best-effort sanitize; never fail hard here
			var m map[string]any
			if err := json.Unmarshal([]byte(arguments), &m); err != nil {
				return arguments, nil
			}

			switch name {
			case tools.ToolFindProduct:
				if v, ok := m["query"]; ok {
					m["query"] = strings.TrimSpace(fmt.Sprint(v))
				}
			case tools.ToolGetDeal:
				if v, ok := m["product_id"]; ok {
					m["product_id"] = strings.TrimSpace(fmt.Sprint(v))
				}
			}

			b, err := json.Marshal(m)
			if err != nil {
				return arguments, nil
			}
			return string(b), nil
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePostHandler(nodes.NewToolExecutorPostHandler()),
	)

	return nil
}

// addNodes adds all processing nodes to the graph.
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeDecisionModel,
		b.config.ChatModels.Decision,
		compose.WithStatePreHandler(nodes.NewDecisionPreHandler(b.config.PromptConfig, b.config.MaxDecideSteps)),
		compose.WithStatePostHandler(nodes.NewDecisionPostHandler(b.config.ChatModels.DecisionModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeAnswerAssembler,
		nodes.NewAnswerAssemblerNode(),
	)

	b.graph.AddChatModelNode(nodes.NodeFormatterModel,
		b.config.ChatModels.Formatter,
		compose.WithStatePostHandler(nodes.NewFormatterPostHandler(b.config.ChatModels.FormatterModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeAnswerParser,
		nodes.NewAnswerParserNode(),
	)
}

// addEdges creates the main flow connections between nodes.
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeDecisionModel},
		{nodes.NodeToolExecutor, nodes.NodeDecisionModel},
		{nodes.NodeAnswerAssembler, nodes.NodeFormatterModel},
		{nodes.NodeFormatterModel, nodes.NodeAnswerParser},
		{nodes.NodeAnswerParser, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the decision branch: tools when requested, otherwise
// answer formatting.
func (b *GraphBuilder) addBranches() error {
	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolExecutorCondition(),
		map[string]bool{
			nodes.NodeToolExecutor:    true,
			nodes.NodeAnswerAssembler: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeDecisionModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding decision branch")
		return fmt.Errorf("error adding decision branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph.
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.TurnOutcome], error) {
	// Limit total run steps as a backstop on top of the decide-step bound.
	maxSteps := 10 + b.config.ToolMaxCalls*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
