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

	"github.com/launchpadhq/launchpad/internal/api"
	"github.com/launchpadhq/launchpad/internal/config"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/logger"
	"github.com/launchpadhq/launchpad/internal/provider"
	"github.com/launchpadhq/launchpad/internal/repository"
	"github.com/launchpadhq/launchpad/internal/service"
	"github.com/launchpadhq/launchpad/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLog := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "launchpad",
		File:        cfg.Log.File,
		FileOnly:    cfg.Log.FileOnly,
		MaxSize:     cfg.Log.MaxSize,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAge:      cfg.Log.MaxAge,
		Compress:    cfg.Log.Compress,
	})
	logger.SetDefaultLogger(appLog)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database")
	}
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			appLog.WithError(err).Fatal("Failed to run migrations")
		}
	}

	// Initialize repositories
	jobRepo := repository.NewJobRepository(db)
	funnelRepo := repository.NewFunnelRepository(db)
	productRepo := repository.NewProductRepository(db)
	embeddingRepo := repository.NewEmbeddingRepository(db)

	// Initialize object storage (supports R2, S3, and compatible endpoints)
	artifacts, err := storage.New(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize storage")
	}

	// Ensure bucket exists
	ctx := context.Background()
	if err := artifacts.EnsureBucket(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	// Initialize provider clients
	llm := provider.NewAnthropicClient(&provider.AnthropicConfig{
		APIKey:    cfg.Anthropic.APIKey,
		Model:     cfg.Anthropic.Model,
		BaseURL:   cfg.Anthropic.BaseURL,
		MaxTokens: cfg.Anthropic.MaxTokens,
		Timeout:   cfg.Anthropic.Timeout,
	})
	embedder := provider.NewEmbeddingClient(&provider.EmbeddingConfig{
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})
	renderer := provider.NewRendererClient(&provider.RendererConfig{
		BaseURL: cfg.Renderer.BaseURL,
		APIKey:  cfg.Renderer.APIKey,
		Timeout: cfg.Renderer.Timeout,
	})

	// Initialize the job protocol
	manager := jobs.NewManager(jobRepo, appLog)

	workerBaseURL := cfg.Dispatch.WorkerBaseURL
	if workerBaseURL == "" {
		// Single-process deployment: dispatch to our own worker endpoint
		workerBaseURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	}
	dispatcher := jobs.NewDispatcher(&jobs.DispatcherConfig{
		WorkerBaseURL: workerBaseURL,
		AckTimeout:    cfg.Dispatch.AckTimeout,
	}, manager, appLog)

	executor := jobs.NewExecutor(&jobs.ExecutorConfig{
		MaxAttempts: cfg.Jobs.MaxAttempts,
		RetryDelay:  cfg.Jobs.RetryDelay,
		UnitTimeout: cfg.Jobs.UnitTimeout,
	}, manager, appLog)

	// Register a runner per job type
	executor.Register(service.NewLeadMagnetRunner(llm, productRepo, cfg.Jobs.MinSectionWords))
	executor.Register(service.NewSupplementRunner(llm, productRepo))
	executor.Register(service.NewCoverDesignRunner(llm, renderer, artifacts, productRepo))
	executor.Register(service.NewFunnelIdeasRunner(llm, embedder, embeddingRepo))
	executor.Register(service.NewPDFRenderRunner(renderer, artifacts, productRepo))

	similarity := service.NewSimilarityService(embedder, embeddingRepo,
		cfg.Search.ScoreThreshold, cfg.Search.DefaultTopK)

	// Setup router
	router := api.SetupRouter(&api.RouterConfig{
		Mode:           cfg.Server.Mode,
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
		Manager:        manager,
		Dispatcher:     dispatcher,
		Executor:       executor,
		Funnels:        funnelRepo,
		Products:       productRepo,
		Similarity:     similarity,
		Log:            appLog,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLog.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server...")

	// Graceful shutdown with timeout. In-flight jobs run on detached
	// contexts; the timeout bounds only the HTTP drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Fatal("Server forced to shutdown")
	}

	appLog.Info("Server exited")
}
