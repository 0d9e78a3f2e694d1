package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg      *config.Config
	ingest   *Ingest
	analysis *Analysis
	logger   *zap.Logger
	started  time.Time
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, ingest *Ingest, analysis *Analysis, logger *zap.Logger) *Router {
	return &Router{
		cfg:      cfg,
		ingest:   ingest,
		analysis: analysis,
		logger:   logger,
		started:  time.Now(),
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)

	v1 := e.Group("/api/v1")

	rt.setupIngestRoutes(v1)
	rt.setupAnalysisRoutes(v1)
	rt.setupPromptRoutes(v1)
}

// setupIngestRoutes accepts transcript lines, HMAC-signed when a secret is configured
func (rt *Router) setupIngestRoutes(g *echo.Group) {
	if rt.ingest == nil {
		g.POST("/transcripts", rt.notImplemented)
		return
	}
	g.POST("/transcripts", rt.ingest.IngestTranscript, middleware.RequireSignature(rt.cfg.Server.IngestSecret, rt.logger))
}

func (rt *Router) setupAnalysisRoutes(g *echo.Group) {
	a := g.Group("/analysis")
	if rt.analysis == nil {
		a.Any("/*", rt.notImplemented)
		return
	}
	a.POST("/process", rt.analysis.ProcessQueue)
	a.POST("/requeue", rt.analysis.Requeue)
	a.GET("/status", rt.analysis.Status)
	a.GET("/queue", rt.analysis.QueueStats)
	a.GET("/queue/items", rt.analysis.QueueItems)
	a.GET("/summaries", rt.analysis.Summaries)
	a.GET("/insights", rt.analysis.Insights)
	a.GET("/topics", rt.analysis.Topics)
	a.GET("/edges", rt.analysis.Edges)
}

func (rt *Router) setupPromptRoutes(g *echo.Group) {
	p := g.Group("/prompts")
	if rt.analysis == nil {
		p.Any("*", rt.notImplemented)
		return
	}
	p.GET("", rt.analysis.Prompts)
	p.POST("", rt.analysis.SavePrompt)
	p.PUT("/:id", rt.analysis.SavePrompt)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not yet implemented",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
		"llm":         rt.cfg.LLM.Provider,
		"uptime":      time.Since(rt.started).Round(time.Second).String(),
	})
}
