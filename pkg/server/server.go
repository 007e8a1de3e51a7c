// Package server provides the public entry point for initializing the
// LexMitra backend server.
//
// This package exists in pkg/ (not internal/) so a hosting repo can
// import it and compose the full server with its own overrides.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lexmitra/lexmitra/backend/internal/api"
	"github.com/lexmitra/lexmitra/backend/internal/api/handlers"
	"github.com/lexmitra/lexmitra/backend/internal/casectx"
	"github.com/lexmitra/lexmitra/backend/internal/config"
	"github.com/lexmitra/lexmitra/backend/internal/embeddings"
	"github.com/lexmitra/lexmitra/backend/internal/pipeline"
	"github.com/lexmitra/lexmitra/backend/internal/retention"
	"github.com/lexmitra/lexmitra/backend/internal/retrieval"
	"github.com/lexmitra/lexmitra/backend/internal/router"
	"github.com/lexmitra/lexmitra/backend/internal/store"
	"github.com/lexmitra/lexmitra/backend/internal/telemetry"
	"github.com/lexmitra/lexmitra/backend/internal/vectorstore"
	"github.com/lexmitra/lexmitra/backend/pkg/contracts"
)

// Server holds the initialized LexMitra backend.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Store is the data store (in-memory when no DATABASE_URL).
	Store store.Store

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes all components from the environment and returns a
// ready Server.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the backend with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	dataStore, pg, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend, err := buildBackend(cfg)
	if err != nil {
		return nil, err
	}

	augmenter, ingestor, err := buildRetrieval(ctx, cfg, pg)
	if err != nil {
		return nil, err
	}

	var routerOpts []router.Option
	if cfg.AI.Model != "" {
		routerOpts = append(routerOpts, router.WithModel(cfg.AI.Model))
	}
	tiered := router.New(backend, dataStore, routerOpts...)

	p := pipeline.New(casectx.NewAssembler(dataStore), augmenter, tiered, dataStore)
	h := handlers.New(dataStore, p, ingestor)

	janitor := retention.NewJanitor(dataStore, 6*time.Hour, time.Duration(cfg.RetentionDays)*24*time.Hour)
	go janitor.Start(ctx)

	return &Server{
		Handler:      api.NewRouter(cfg, h),
		Store:        dataStore,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// buildStore picks PostgreSQL when DATABASE_URL is set, otherwise the
// in-memory store. The pg handle is nil in memory mode.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, *store.PostgresStore, error) {
	if cfg.Database.URL == "" {
		log.Info().Msg("In-memory store initialized (no DATABASE_URL)")
		return store.NewMemoryStore(), nil, nil
	}
	pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("init postgres: %w", err)
	}
	return pg, pg, nil
}

func buildBackend(cfg *config.Config) (contracts.AIBackend, error) {
	switch cfg.AI.Backend {
	case "openai":
		return router.NewOpenAIBackend(cfg.AI.APIKey, cfg.AI.BaseURL), nil
	case "anthropic":
		return router.NewAnthropicBackend(cfg.AI.APIKey, cfg.AI.BaseURL), nil
	case "gemini":
		return router.NewGeminiBackend(cfg.AI.APIKey, cfg.AI.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown AI backend: %q", cfg.AI.Backend)
	}
}

// buildRetrieval wires the augmenter and the document ingestor when an
// embedding driver is configured. pgvector in postgres mode,
// brute-force in memory mode; both stores serve search and indexing.
func buildRetrieval(ctx context.Context, cfg *config.Config, pg *store.PostgresStore) (*retrieval.Augmenter, *retrieval.Ingestor, error) {
	var embedder contracts.EmbeddingDriver
	switch cfg.Retrieval.Driver {
	case "":
		log.Info().Msg("Retrieval disabled (no embedding driver configured)")
		return nil, nil, nil
	case "gemini":
		embedder = embeddings.NewGeminiDriver(cfg.Retrieval.APIKey)
	case "openai":
		embedder = embeddings.NewOpenAIDriver(cfg.Retrieval.APIKey, "")
	default:
		return nil, nil, fmt.Errorf("unknown embedding driver: %q", cfg.Retrieval.Driver)
	}

	var searcher interface {
		contracts.VectorSearcher
		retrieval.DocumentIndexer
	}
	if pg != nil {
		s, err := vectorstore.NewPgvectorSearcher(ctx, pg.Pool(), embedder.Dimensions())
		if err != nil {
			return nil, nil, fmt.Errorf("init pgvector: %w", err)
		}
		searcher = s
	} else {
		searcher = vectorstore.NewEmbeddedSearcher()
	}

	return retrieval.NewAugmenter(embedder, searcher), retrieval.NewIngestor(embedder, searcher), nil
}
