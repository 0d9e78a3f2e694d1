package app

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/domain/repositories"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/graph"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/analysis"
	"github.com/johnquangdev/meeting-insights/internal/usecase/ingest"
	pkgai "github.com/johnquangdev/meeting-insights/pkg/ai"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

const statusKeyPrefix = "meeting-insights:"

// App holds the wired services shared by the API server and the CLI
type App struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB

	QueueRepo      repositories.QueueRepository
	AnalysisRepo   repositories.AnalysisRepository
	PromptRepo     repositories.PromptRepository
	TranscriptRepo repositories.TranscriptRepository

	Processor *analysis.Processor
	Requeuer  *analysis.Requeuer
	Dashboard *analysis.Dashboard
	Ingest    *ingest.Service

	closers []func(ctx context.Context) error
}

// NewLogger returns a production logger in production and a development one otherwise
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Build connects to Postgres and the optional Redis, MinIO and graph backends,
// then wires repositories and use cases
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	db, err := database.NewPostgresDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func(context.Context) error { return database.CloseDB(db) })

	a.QueueRepo = repository.NewQueueRepository(db)
	a.AnalysisRepo = repository.NewAnalysisRepository(db)
	a.PromptRepo = repository.NewPromptRepository(db)
	a.TranscriptRepo = repository.NewTranscriptRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	llm, err := pkgai.NewClient(ctx, cfg.LLM)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init llm client: %w", err)
	}

	opts, err := a.sideEffects(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	prompts := analysis.NewPromptResolver(a.PromptRepo)
	parser := analysis.NewParser()
	retriever := analysis.NewContextRetriever(docRepo, cfg.Analysis.ContextChunks, cfg.Analysis.ContextChunkChars, logger)

	a.Processor = analysis.NewProcessor(
		a.QueueRepo,
		a.AnalysisRepo,
		analysis.NewRoomAnalyzer(prompts, retriever, llm, parser, logger),
		analysis.NewSynthesizer(prompts, llm, parser, logger),
		analysis.ProcessorConfig{
			BatchSize:     cfg.Analysis.BatchSize,
			SummaryWindow: cfg.Analysis.SummaryWindow,
			GroupTimeout:  cfg.Analysis.GroupTimeout,
		},
		logger,
		opts...,
	)
	a.Requeuer = analysis.NewRequeuer(a.QueueRepo, cfg.Analysis.MaxRetries, cfg.Analysis.RequeueBaseDelay, cfg.Analysis.StaleClaimAfter, logger)
	a.Dashboard = analysis.NewDashboard(a.QueueRepo, a.AnalysisRepo, a.PromptRepo)
	a.Ingest = ingest.NewService(a.TranscriptRepo, a.QueueRepo, logger)

	if logger != nil {
		logger.Info("✅ Analysis pipeline wired",
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.String("llm_model", cfg.LLM.Model),
			zap.Bool("redis", cfg.Redis.Enabled),
			zap.Bool("storage", cfg.Storage.Enabled),
			zap.Bool("graph", cfg.Graph.Enabled),
		)
	}
	return a, nil
}

// sideEffects connects the optional live, archive and graph backends
func (a *App) sideEffects(ctx context.Context) ([]analysis.ProcessorOption, error) {
	cfg := a.Config
	var opts []analysis.ProcessorOption

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		opts = append(opts,
			analysis.WithStatusStore(cache.NewRedisStore(client, statusKeyPrefix, a.Logger)),
			analysis.WithPublisher(cache.NewRedisPublisher(client, cfg.Redis.Channel)),
		)
	} else {
		store := cache.NewMemoryStore(time.Minute)
		a.closers = append(a.closers, func(context.Context) error { store.Close(); return nil })
		opts = append(opts, analysis.WithStatusStore(store))
	}

	if cfg.Storage.Enabled {
		archive, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init response archive: %w", err)
		}
		opts = append(opts, analysis.WithArchive(archive))
	}

	if cfg.Graph.Enabled {
		driver, err := connectGraph(ctx, cfg.Graph, a.Logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, driver.Close)
		projector := graph.NewTopicProjector(driver, a.Logger)
		if err := projector.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure graph schema: %w", err)
		}
		opts = append(opts, analysis.WithGraphProjector(projector))
	}
	return opts, nil
}

func connectGraph(ctx context.Context, cfg config.GraphConfig, logger *zap.Logger) (*graph.Neo4jDriver, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxElapsedTime = 30 * time.Second

	var driver *graph.Neo4jDriver
	connect := func() error {
		d, err := graph.NewNeo4jDriver(ctx, cfg.URI, cfg.Username, cfg.Password)
		if err != nil {
			return err
		}
		driver = d
		return nil
	}
	notify := func(err error, wait time.Duration) {
		if logger != nil {
			logger.Warn("⚠️ Graph database not reachable, retrying", zap.Duration("wait", wait), zap.Error(err))
		}
	}
	if err := backoff.RetryNotify(connect, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, fmt.Errorf("connect graph database at %s: %w", cfg.URI, err)
	}
	if logger != nil {
		logger.Info("✅ Graph database connected", zap.String("uri", cfg.URI))
	}
	return driver, nil
}

// SeedPromptsFromFile loads TOML prompt seeds and upserts them by name
func (a *App) SeedPromptsFromFile(ctx context.Context, path string) (*analysis.SeedReport, error) {
	seeds, err := config.LoadPromptSeeds(path)
	if err != nil {
		return nil, err
	}
	inputs := make([]analysis.PromptInput, 0, len(seeds))
	for _, s := range seeds {
		inputs = append(inputs, analysis.PromptInput{
			Scope:      entities.PromptScope(s.Scope),
			RoomNumber: s.RoomNumber,
			Name:       s.Name,
			PromptText: s.Text,
			IsActive:   s.IsActive(),
		})
	}
	return a.Dashboard.SeedPrompts(ctx, inputs)
}

// Close releases connections in reverse order of creation
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("⚠️ Shutdown step failed", zap.Error(err))
		}
	}
	a.closers = nil
}

