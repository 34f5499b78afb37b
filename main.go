package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"google.golang.org/genai"

	"github.com/salesvoice-poc/server/internal/agent/graph"
	"github.com/salesvoice-poc/server/internal/agent/model"
	"github.com/salesvoice-poc/server/internal/api"
	"github.com/salesvoice-poc/server/internal/catalog"
	"github.com/salesvoice-poc/server/internal/core"
	"github.com/salesvoice-poc/server/internal/speech"
	logx "github.com/salesvoice-poc/server/pkg/logger"
	pkgredis "github.com/salesvoice-poc/server/pkg/redis"
)

type AppConfig struct {
	Environment string `envconfig:"APP_ENVIRONMENT" default:"development"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8000"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" required:"true"`

	Redis pkgredis.Config `envconfig:"REDIS"`

	Decision     model.DecisionModelConfig
	Formatter    model.FormatterModelConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig
	Catalog      catalog.Config
	Speech       speech.Config
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("Failed to load configuration")
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to create genai client")
	}

	embedder := catalog.NewGenAIEmbedder(client, cfg.Catalog.EmbeddingModel)
	index := catalog.NewIndex()
	catalogClient := catalog.NewClient(embedder, index, cfg.Catalog.TopK)

	// The catalog must be fully seeded before the first request is served.
	if err := catalogClient.Seed(ctx); err != nil {
		logx.Fatal().Err(err).Msg("Failed to seed product catalog")
	}

	runner, err := graph.BuildSalesGraph(ctx, graph.Config{
		Client:         client,
		DecisionModel:  cfg.Decision,
		FormatterModel: cfg.Formatter,
		Prompt:         cfg.Prompt,
		Conversation:   cfg.Conversation,
		Catalog:        catalogClient,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build sales graph")
	}

	var speechCache *speech.Cache
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		ttl, err := time.ParseDuration(cfg.Speech.CacheTTL)
		if err != nil {
			logx.Warn().Err(err).Str("ttl", cfg.Speech.CacheTTL).Msg("Invalid speech cache TTL, using 24h")
			ttl = 24 * time.Hour
		}
		speechCache = speech.NewCache(rdb, ttl)
		logx.Info().Dur("ttl", ttl).Msg("Speech cache enabled")
	}

	synthesizer := speech.NewSynthesizer(cfg.Speech, speechCache)
	if !synthesizer.Enabled() {
		logx.Warn().Msg("MURF_API_KEY not set, speech synthesis disabled")
	}

	handlers := api.NewHandlers(runner, synthesizer)
	router := api.NewRouter(handlers)

	logx.Info().
		Str("addr", cfg.HTTPAddr).
		Str("environment", env.String()).
		Str("decision_model", cfg.Decision.Model).
		Str("formatter_model", cfg.Formatter.Model).
		Msg("Server starting")

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		logx.Fatal().Err(err).Msg("Server stopped")
	}
}
