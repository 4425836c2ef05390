package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dzlegal-backend/cache"
	"dzlegal-backend/config"
	"dzlegal-backend/gemini"
	"dzlegal-backend/handlers"
	"dzlegal-backend/middleware"
	"dzlegal-backend/pkg/logger"
	"dzlegal-backend/repository"
	"dzlegal-backend/service"
	"dzlegal-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := initPostgres(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	// Initialize storage
	fileStorage, err := storage.NewStorage(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info(ctx, "storage initialized", "type", cfg.Storage.Type)

	// Redis is optional; without it transcripts, radar results and rate
	// limits are kept in process memory
	var (
		transcripts service.TranscriptStore = cache.NewMemoryTranscripts(cfg.Redis.TranscriptTTL)
		radarCache  service.RadarCache      = cache.NewMemoryRadarCache()
		limiter     middleware.Limiter      = middleware.NewMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		redisCache, err := cache.NewRedisCache(ctx, client, cfg.Redis.TranscriptTTL)
		if err != nil {
			logger.Warn(ctx, "redis unavailable, using in-memory stores", "addr", cfg.Redis.Addr, "error", err)
			client.Close()
		} else {
			defer redisCache.Close()
			transcripts = redisCache
			radarCache = redisCache
			limiter = middleware.NewRedisLimiter(client, cfg.RateLimit.Requests, cfg.RateLimit.Window)
			logger.Info(ctx, "redis connection established", "addr", cfg.Redis.Addr)
		}
	}

	// Initialize Gemini client
	sdk, err := gemini.NewSDKClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}
	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:    cfg.Gemini.APIKey,
		Model:     cfg.Gemini.Model,
		BaseURL:   cfg.Gemini.BaseURL,
		Grounding: cfg.Gemini.GroundingEnabled(),
		Timeout:   cfg.Gemini.Timeout,
	}, gemini.WithSDKClient(sdk))
	defer geminiClient.Close()

	// Initialize repositories
	correctionRepo := repository.NewCorrectionRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	researchJobRepo := repository.NewResearchJobRepository(db)
	preferencesRepo := repository.NewPreferencesRepository(db)

	// Jobs left running by a previous process can never finish
	if n, err := researchJobRepo.FailInterrupted(ctx, "interrupted by server restart"); err != nil {
		logger.Warn(ctx, "failed to close interrupted research jobs", "error", err)
	} else if n > 0 {
		logger.Info(ctx, "closed interrupted research jobs", "count", n)
	}

	// Initialize services
	deadlineService := service.NewDeadlineService(
		service.DeadlineWithTable(cfg.Deadlines.Days, cfg.Deadlines.Policy),
	)
	consultationService := service.NewConsultationService(
		service.ConsultationWithGenerator(geminiClient),
		service.ConsultationWithCorrectionStore(correctionRepo),
		service.ConsultationWithTranscriptStore(transcripts),
		service.ConsultationWithReplayLimit(cfg.Corrections.ReplayLimit),
	)
	correctionService := service.NewCorrectionService(
		service.CorrectionWithGenerator(geminiClient),
		service.CorrectionWithStore(correctionRepo),
	)
	contractService := service.NewContractService(
		service.ContractWithGenerator(geminiClient),
	)
	documentService := service.NewDocumentService(
		service.DocumentWithStore(documentRepo),
		service.DocumentWithStorage(fileStorage),
		service.DocumentWithGenerator(geminiClient),
	)
	researchService := service.NewResearchService(
		service.ResearchWithGenerator(geminiClient),
		service.ResearchWithJobStore(researchJobRepo),
	)
	preferencesService := service.NewPreferencesService(preferencesRepo)
	radarService := service.NewRadarService(
		service.RadarWithGenerator(geminiClient),
		service.RadarWithCache(radarCache, cfg.Radar.CacheTTL),
		service.RadarWithPreferences(preferencesService),
	)

	// Reload the deadline table when the config file changes
	if _, err := os.Stat(configPath); err == nil {
		watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
			if err := deadlineService.SetTable(next.Deadlines.Days, next.Deadlines.Policy); err != nil {
				logger.Warn(ctx, "deadline table reload rejected", "error", err)
			}
		})
		if err != nil {
			logger.Warn(ctx, "config watcher disabled", "error", err)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler()
	deadlineHandler := handlers.NewDeadlineHandler(deadlineService)
	consultationHandler := handlers.NewConsultationHandler(consultationService)
	correctionHandler := handlers.NewCorrectionHandler(correctionService, cfg.Corrections.ReplayLimit)
	contractHandler := handlers.NewContractHandler(contractService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	researchHandler := handlers.NewResearchHandler(researchService)
	radarHandler := handlers.NewRadarHandler(radarService, preferencesService)

	// Setup Gin router
	r := gin.New()
	r.MaxMultipartMemory = documentService.MaxFileSize()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.RequestLogger())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Catalog endpoints
		api.GET("/sections", catalogHandler.ListSections)
		api.GET("/sections/:key", catalogHandler.GetSection)
		api.GET("/resources", catalogHandler.ListResources)

		// Deadline endpoints
		api.GET("/deadlines/procedures", deadlineHandler.ListProcedures)
		api.POST("/deadlines/calculate", deadlineHandler.Calculate)

		// Read-only endpoints that do not call the model
		api.GET("/consultations/:session_id", consultationHandler.GetTranscript)
		api.GET("/corrections", correctionHandler.List)
		api.GET("/contracts/templates", contractHandler.ListTemplates)
		api.GET("/documents/:id", documentHandler.Download)
		api.GET("/research/jobs/:id", researchHandler.GetJob)
		api.GET("/preferences/:client_id", radarHandler.GetPreferences)
		api.PUT("/preferences/:client_id", radarHandler.UpdatePreferences)
	}

	// Model-backed endpoints are rate limited per client
	ai := r.Group("/api", middleware.RateLimit(limiter))
	{
		ai.POST("/consultations", consultationHandler.Consult)
		ai.POST("/corrections", correctionHandler.Submit)
		ai.POST("/contracts/draft", contractHandler.Draft)
		ai.POST("/documents/upload", documentHandler.Upload)
		ai.POST("/documents/analyze", documentHandler.Analyze)
		ai.POST("/research", researchHandler.StartResearch)
		ai.POST("/research/stage", researchHandler.GenerateStage)
		ai.POST("/radar/scan", radarHandler.Scan)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info(ctx, "server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown failed", "error", err)
	}

	// Research jobs run for minutes; give them longer than requests
	jobsCtx, cancelJobs := context.WithTimeout(context.Background(), cfg.Server.JobDrainTimeout)
	defer cancelJobs()
	if err := researchHandler.Wait(jobsCtx); err != nil {
		logger.Warn(jobsCtx, "research jobs still running at shutdown", "error", err)
	}
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info(ctx, "postgres connection established")
	return pool, nil
}
