package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-insights/pkg/validator"

	"github.com/johnquangdev/meeting-insights/internal/adapter/handler"
	"github.com/johnquangdev/meeting-insights/internal/app"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/internal/usecase/analysis"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// @title           Meeting Insights API
// @version         1.0
// @description     Transcript ingestion, queue processing and dashboard reads for multi-room meeting analysis
// @BasePath        /api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	logger.Info("🔧 Initializing dependencies...")
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close(context.Background())

	if cfg.Database.MigrateOnStart {
		if _, err := database.Migrate(a.DB, cfg.Database.MigrationsDir, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	} else {
		logger.Info("🔄 Skipping migrations; run `insightsctl migrate` in CI/CD")
	}

	if cfg.Analysis.PromptSeedFile != "" {
		report, err := a.SeedPromptsFromFile(ctx, cfg.Analysis.PromptSeedFile)
		if err != nil {
			logger.Fatal("Failed to seed prompts", zap.String("file", cfg.Analysis.PromptSeedFile), zap.Error(err))
		}
		logger.Info("🌱 Prompts seeded", zap.Int("created", report.Created), zap.Int("updated", report.Updated))
	}

	var scheduler *analysis.Scheduler
	if cfg.Analysis.Interval > 0 {
		scheduler = analysis.NewScheduler(a.Processor, cfg.Analysis.Interval, logger)
		if err := scheduler.Start(ctx); err != nil {
			logger.Fatal("Failed to start analysis scheduler", zap.Error(err))
		}
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Signature"},
	}))

	router := handler.NewRouter(
		cfg,
		handler.NewIngestHandler(a.Ingest, logger),
		handler.NewAnalysisHandler(a.Processor, a.Requeuer, a.Dashboard, logger),
		logger,
	)
	router.Setup(e)

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("🚀 Server starting", zap.String("addr", addr), zap.String("environment", cfg.Server.Environment))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("🛑 Shutting down server...")

	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			logger.Warn("Scheduler stop failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("✅ Server exited gracefully")
}
