package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fathom0/fathom/internal/agent"
	"github.com/fathom0/fathom/internal/analytics"
	"github.com/fathom0/fathom/internal/api"
	"github.com/fathom0/fathom/internal/artifact"
	"github.com/fathom0/fathom/internal/chat"
	"github.com/fathom0/fathom/internal/config"
	"github.com/fathom0/fathom/internal/database"
	"github.com/fathom0/fathom/internal/observability"
	"github.com/fathom0/fathom/internal/tools"
)

// Setup builds the application. On error everything already initialized is
// released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, retErr error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	// Tracing first: Genkit captures the TracerProvider state at Init.
	otelShutdown, err := observability.Setup(ctx, cfg.Otel, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}
	a.otelShutdown = otelShutdown

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	g, err := provideGenkit(ctx, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	a.Chats = chat.NewStore(pool, logger.With("component", "chat-store"))
	a.Documents = artifact.NewStore(pool, logger.With("component", "artifact-store"))
	a.Analytics = analytics.NewStore(pool, logger.With("component", "analytics-store"))

	registry, err := provideTools(a)
	if err != nil {
		return nil, err
	}

	orchestrator, err := agent.New(agent.Config{
		Genkit:         g,
		Tools:          registry,
		Logger:         logger.With("component", "agent"),
		ReasoningModel: cfg.QualifiedModel(cfg.ReasoningModel),
		TitleModel:     cfg.QualifiedModel(cfg.TitleModel),
		MaxTurns:       cfg.MaxTurns,
	})
	if err != nil {
		return nil, fmt.Errorf("creating agent: %w", err)
	}
	a.Agent = orchestrator

	server, err := provideServer(a)
	if err != nil {
		return nil, err
	}
	a.Server = server

	return a, nil
}

// provideDBPool runs migrations and opens the connection pool.
// Migrations run over their own short-lived connection so a failed migration
// never leaves a half-open pool behind.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := database.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := database.Open(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return pool, nil
}

// provideGenkit initializes Genkit with the Gemini provider. The plugin
// reads GEMINI_API_KEY from the environment on its own.
func provideGenkit(ctx context.Context, logger *slog.Logger) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	logger.Debug("genkit initialized", "provider", "googleai")
	return g, nil
}

// provideTools builds the tool handler on the app's stores, registers every
// tool with Genkit and returns the per-model registry.
func provideTools(a *App) (*tools.Registry, error) {
	cfg := a.Config

	gen := tools.NewGenkitGenerator(a.Genkit,
		cfg.QualifiedModel(cfg.ArtifactModel), cfg.QualifiedModel(cfg.ImageModel))
	handler := tools.NewHandler(
		tools.Config{
			WeatherBaseURL:  cfg.WeatherBaseURL,
			FinanceBaseURL:  cfg.FinanceBaseURL,
			SearchBaseURL:   cfg.SearchBaseURL,
			AlphaVantageKey: cfg.AlphaVantageKey,
		},
		nil, // default HTTP client
		a.Analytics,
		a.Documents,
		gen,
		a.Logger.With("component", "tools"),
	)

	if err := tools.RegisterAll(a.Genkit, handler); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	a.Logger.Info("tools registered", "count", len(tools.ToolNames()))

	return tools.NewRegistry(a.Genkit, cfg.QualifiedModel(cfg.ReasoningModel)), nil
}

// provideServer wires the HTTP front end.
func provideServer(a *App) (*api.Server, error) {
	cfg := a.Config

	auth, err := api.NewAuth([]byte(cfg.HMACSecret), cfg.IsDev())
	if err != nil {
		return nil, fmt.Errorf("creating auth: %w", err)
	}

	server, err := api.NewServer(api.Config{
		Orchestrator:       a.Agent,
		Chats:              a.Chats,
		Documents:          a.Documents,
		Auth:               auth,
		Logger:             a.Logger.With("component", "api"),
		ChatModel:          cfg.QualifiedModel(cfg.ChatModel),
		ReasoningModel:     cfg.QualifiedModel(cfg.ReasoningModel),
		MaxHistoryMessages: cfg.MaxHistoryMessages,
	})
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	return server, nil
}
