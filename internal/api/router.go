package api

import (
	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/launchpad/internal/api/handler"
	"github.com/launchpadhq/launchpad/internal/api/middleware"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/logger"
	"github.com/launchpadhq/launchpad/internal/repository"
	"github.com/launchpadhq/launchpad/internal/service"
)

// RouterConfig bundles everything the HTTP surface needs.
type RouterConfig struct {
	Mode           string
	AllowedOrigins []string

	Manager    *jobs.Manager
	Dispatcher *jobs.Dispatcher
	Executor   *jobs.Executor

	Funnels  *repository.FunnelRepository
	Products *repository.ProductRepository

	Similarity *service.SimilarityService

	Log *logger.Logger
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(cfg *RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	log := cfg.Log
	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.AllowedOrigins,
		AllowAllOrigins: len(cfg.AllowedOrigins) == 0,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	jobHandler := handler.NewJobHandler(cfg.Manager, cfg.Dispatcher, cfg.Executor, cfg.Products)
	workerHandler := handler.NewWorkerHandler(cfg.Manager, cfg.Executor, cfg.Products, cfg.Funnels)
	funnelHandler := handler.NewFunnelHandler(cfg.Funnels, cfg.Products)
	searchHandler := handler.NewSearchHandler(cfg.Similarity)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Generation jobs
		v1.POST("/start/:job_type", jobHandler.StartJob)
		v1.GET("/jobs/:id/status", jobHandler.Status)

		// Funnels
		v1.GET("/funnels", funnelHandler.List)
		v1.GET("/funnels/:id", funnelHandler.Get)
		v1.POST("/funnels", funnelHandler.Create)

		// Idea search
		v1.POST("/search/ideas", searchHandler.SearchIdeas)
	}

	// Worker entry point; not part of the public API surface
	internal := r.Group("/internal")
	{
		internal.POST("/jobs/:id/execute", workerHandler.Execute)
	}

	return r
}
