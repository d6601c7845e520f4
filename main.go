package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"

	"writer-studio/internal/collection"
	"writer-studio/internal/config"
	"writer-studio/internal/gateway"
	"writer-studio/internal/generate"
	"writer-studio/internal/gmail"
	"writer-studio/internal/handler"
	"writer-studio/internal/localstore"
	"writer-studio/internal/logger"
	"writer-studio/internal/repository"
	"writer-studio/internal/repository/memory"
	"writer-studio/internal/repository/postgres"
	"writer-studio/internal/router"
	"writer-studio/internal/sse"
	"writer-studio/internal/workspace"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	if err := newCLIApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type stores struct {
	artifacts     repository.ArtifactRepository
	conversations repository.ConversationRepository
	templates     repository.TemplateRepository
}

// repositories opens the configured stores. The returned close func
// releases whatever was opened.
func repositories(cfg *config.Config, appLogger *logger.Logger) (stores, func(), error) {
	var st stores
	var closers []func() error

	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return st, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, db.Close)

		if err := postgres.InitializeDatabase(db); err != nil {
			db.Close()
			return st, nil, fmt.Errorf("failed to initialize database: %w", err)
		}

		st.artifacts = postgres.NewPostgresArtifactRepository(db)
		st.conversations = postgres.NewPostgresConversationRepository(db)
		st.templates = postgres.NewPostgresTemplateRepository(db)
		appLogger.Info("Using PostgreSQL repositories")
	} else {
		st.artifacts = memory.NewInMemoryArtifactRepository()
		st.conversations = memory.NewInMemoryConversationRepository()
		st.templates = memory.NewInMemoryTemplateRepository()
		appLogger.Info("Using in-memory repositories")
	}

	if cfg.ConversationBackend == config.BackendLocal {
		kv, err := localstore.Open(cfg.LocalDBPath)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return st, nil, fmt.Errorf("failed to open local store: %w", err)
		}
		closers = append(closers, kv.Close)
		st.conversations = localstore.NewConversationRepository(kv)
		appLogger.Info("Keeping conversations in", cfg.LocalDBPath)
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				appLogger.Warn("Failed to close store:", err)
			}
		}
	}
	return st, closeAll, nil
}

func serve(cfg *config.Config, appLogger *logger.Logger) error {
	st, closeStores, err := repositories(cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeStores()

	artifacts := gateway.NewArtifacts(st.artifacts, cfg.RemoteTimeout, appLogger)
	conversations := gateway.NewConversations(st.conversations, cfg.RemoteTimeout, appLogger)
	templates := gateway.NewTemplates(st.templates, cfg.RemoteTimeout, appLogger)

	var promptGenerator generate.Generator = generate.NewWebhookClient(cfg.PromptWebhookURL, cfg.GeneratorTimeout, appLogger)
	if cfg.PromptWebhookURL == "" {
		appLogger.Warn("PROMPT_WEBHOOK_URL not set, using the built-in prompt enhancer")
		promptGenerator = generate.FallbackPromptGenerator{}
	}
	pipeline := generate.NewPipeline(
		generate.NewWebhookClient(cfg.EmailWebhookURL, cfg.GeneratorTimeout, appLogger),
		promptGenerator,
		appLogger,
	)

	// SSE manager for pushing collection changes to open tabs
	events := sse.NewManager(appLogger)
	defer events.Close()

	registry := workspace.NewRegistry(workspace.Deps{
		Artifacts:     artifacts,
		Conversations: conversations,
		Events:        events,
		PollInterval:  cfg.AuthPollInterval,
		Logger:        appLogger,
		MaxWorkspaces: cfg.MaxWorkspaces,
	})
	defer registry.Close()

	reaper := workspace.NewReaper(registry, events, cfg.WorkspaceIdleTTL, cfg.WorkspaceSweepInterval, appLogger)
	go reaper.Start()
	defer reaper.Stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	store := handler.NewSessionStore([]byte(cfg.SessionSecret), cfg.IsProduction())

	router.SetupRoutes(e, handler.NewSessions(store), registry, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, store, e.Logger),
		Artifacts:     handler.NewArtifactHandler(gmail.NewFactory(appLogger), e.Logger),
		Generate:      handler.NewGenerateHandler(pipeline, e.Logger),
		Conversations: handler.NewConversationHandler(e.Logger),
		Events:        handler.NewEventsHandler(events, e.Logger),
		Templates:     handler.NewTemplateHandler(templates, e.Logger),
		DevLogin:      !cfg.IsProduction() && !cfg.OAuthEnabled(),
	})

	appLogger.Info("Starting server on port", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		appLogger.Error("Failed to start server:", err)
		return err
	}
	return nil
}

func migrate(cfg *config.Config, appLogger *logger.Logger) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required to migrate")
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.InitializeDatabase(db); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	appLogger.Info("Database tables are up to date")
	return nil
}

var (
	_ collection.ArtifactGateway     = (*gateway.Artifacts)(nil)
	_ collection.ConversationGateway = (*gateway.Conversations)(nil)
	_ handler.TemplateGateway        = (*gateway.Templates)(nil)
	_ generate.Checker               = (*generate.WebhookClient)(nil)
)
