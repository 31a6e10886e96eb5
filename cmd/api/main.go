package main

// @title Ad Creative Lab API
// @version 1.0
// @description Pipeline, lifecycle rules and analytics for ad creatives.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/adcreativelab/config"
	_ "github.com/jordanlanch/adcreativelab/docs" // Swagger docs (generated)
	"github.com/jordanlanch/adcreativelab/pkg/adlifecycle"
	"github.com/jordanlanch/adcreativelab/pkg/ads"
	"github.com/jordanlanch/adcreativelab/pkg/ai/llm"
	"github.com/jordanlanch/adcreativelab/pkg/ai/reports"
	"github.com/jordanlanch/adcreativelab/pkg/analytics"
	"github.com/jordanlanch/adcreativelab/pkg/api/handlers"
	"github.com/jordanlanch/adcreativelab/pkg/avatars"
	"github.com/jordanlanch/adcreativelab/pkg/cache"
	"github.com/jordanlanch/adcreativelab/pkg/competitors"
	"github.com/jordanlanch/adcreativelab/pkg/database"
	"github.com/jordanlanch/adcreativelab/pkg/jobs"
	"github.com/jordanlanch/adcreativelab/pkg/learnings"
	"github.com/jordanlanch/adcreativelab/pkg/logger"
	"github.com/jordanlanch/adcreativelab/pkg/metrics"
	custommiddleware "github.com/jordanlanch/adcreativelab/pkg/middleware"
	"github.com/jordanlanch/adcreativelab/pkg/secrets"
	"github.com/jordanlanch/adcreativelab/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	// Resolve sensitive settings from the secrets backend
	secretsManager, err := secrets.NewManager(secrets.ConfigFrom(cfg))
	if err != nil {
		log.Fatalf("❌ Failed to initialize secrets manager: %v", err)
	}
	if err := secrets.Apply(context.Background(), secretsManager, cfg); err != nil {
		log.Fatalf("❌ Failed to load secrets: %v", err)
	}
	log.Printf("🔐 Secrets loaded (backend: %s)", cfg.SecretsBackend)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize database
	var sslCfg *database.SSLConfig
	if cfg.DBSSLMode != "" {
		sslCfg = &database.SSLConfig{Mode: cfg.DBSSLMode}
	}
	db, err := database.Open(cfg.DatabaseURL, sslCfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis cache (optional)
	var redisClient *cache.Client
	var analyticsCache analytics.Cache
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		analyticsCache = redisClient
	} else {
		log.Printf("ℹ️  Analytics cache disabled (no REDIS_URL configured)")
	}

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Lifecycle: the sweeper runs before every lock-dependent read and on a schedule
	adRepo := ads.NewRepository(db.DB)
	sweeper := adlifecycle.NewSweeper(adRepo, appLogger, func(ctx context.Context, r adlifecycle.SweepResult) {
		prometheusMetrics.RecordSweep(r.Expired, r.Released)
	})

	// Initialize services
	learningService := learnings.NewService(db.DB)
	analyticsService := analytics.NewService(db.DB, sweeper, analytics.Dependencies{
		Cache:     analyticsCache,
		Learnings: learningService,
		Metrics:   prometheusMetrics,
		Logger:    appLogger,
	})
	sweeper.OnChange(func(ctx context.Context, _ adlifecycle.SweepResult) {
		analyticsService.Invalidate(ctx)
	})
	learningService.OnChange(analyticsService.Invalidate)
	adService := ads.NewService(adRepo, sweeper, ads.Dependencies{
		Learnings: learningService,
		Cache:     analyticsService,
		Metrics:   prometheusMetrics,
		Logger:    appLogger,
		LockDays:  cfg.DefaultLockDays,
	})
	avatarService := avatars.NewService(db.DB)
	competitorService := competitors.NewService(db.DB)

	// Blob storage for creative media
	var blobStore storage.BlobStore
	switch cfg.StorageType {
	case "s3":
		blobStore, err = storage.NewS3Store(context.Background(), storage.S3Config{
			AWSAccessKeyID:     cfg.AWSAccessKeyID,
			AWSSecretAccessKey: cfg.AWSSecretAccessKey,
			AWSRegion:          cfg.AWSRegion,
			Bucket:             cfg.S3Bucket,
			PublicBaseURL:      cfg.S3PublicBaseURL,
		})
		if err != nil {
			log.Fatalf("❌ Failed to initialize S3 storage: %v", err)
		}
		log.Printf("✅ S3 storage initialized (bucket: %s)", cfg.S3Bucket)
	default:
		blobStore, err = storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			log.Fatalf("❌ Failed to initialize local storage: %v", err)
		}
		log.Printf("✅ Local storage initialized (dir: %s)", cfg.UploadDir)
	}
	uploader := storage.NewUploader(blobStore, prometheusMetrics, appLogger)

	// LLM client for reports (optional)
	var llmClient llm.LLMClient
	if cfg.OpenAIAPIKey != "" {
		llmClient = llm.NewOpenAIClient(llm.Config{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		}, appLogger)
		log.Printf("✅ OpenAI client initialized (model: %s)", cfg.OpenAIModel)
	} else {
		log.Printf("ℹ️  AI reports disabled (no OPENAI_API_KEY configured)")
	}
	reportGenerator := reports.NewGenerator(llmClient, analyticsService, cfg.ReportTimeout, prometheusMetrics, appLogger)

	// Initialize cron jobs
	cronManager := jobs.NewCronManager(sweeper, analyticsService, appLogger)
	if err := cronManager.SetupJobs(cfg.SweepSchedule); err != nil {
		log.Fatalf("❌ Failed to schedule jobs: %v", err)
	}
	cronManager.Start()
	log.Printf("⏰ Cron jobs: sweep (%s), daily stats (4AM)", cfg.SweepSchedule)

	// Report database pool usage
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			prometheusMetrics.UpdateDBConnections(float64(db.Stats().OpenConnections))
		}
	}()

	// Initialize handlers
	adHandler := handlers.NewAdHandler(adService, prometheusMetrics)
	learningHandler := handlers.NewLearningHandler(learningService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	reportHandler := handlers.NewReportHandler(reportGenerator)
	uploadHandler := handlers.NewUploadHandler(uploader)
	avatarHandler := handlers.NewAvatarHandler(avatarService)
	competitorHandler := handlers.NewCompetitorHandler(competitorService)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Initialize rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	defer globalRateLimiter.Stop()
	endpointRateLimiter := custommiddleware.NewPerEndpointRateLimiter()
	endpointRateLimiter.SetEndpointLimit("POST /api/v1/reports", cfg.ReportRequestsPerMinute, 2)
	endpointRateLimiter.SetEndpointLimit("POST /api/v1/reports/stream", cfg.ReportRequestsPerMinute, 2)
	defer endpointRateLimiter.Stop()

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// Sentry error tracking middleware (if configured)
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	// Prometheus metrics middleware
	e.Use(prometheusMetrics.Middleware())

	// CORS with restricted origins
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))

	// The report stream must not be buffered by gzip.
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: custommiddleware.SkipPrefixes("/api/v1/reports/stream", "/uploads"),
	}))

	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "Ad Creative Lab API",
			"version":     "1.0.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		// Check database connection
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		cacheStatus := "disabled"
		if redisClient != nil {
			if err := redisClient.Ping(ctx); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]any{
					"status": "unhealthy",
					"cache":  "down",
				})
			}
			cacheStatus = "up"
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    cacheStatus,
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Swagger documentation (public)
	if cfg.SwaggerEnabled {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// Locally stored uploads
	if cfg.StorageType != "s3" {
		e.Static("/uploads", cfg.UploadDir)
	}

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.Use(endpointRateLimiter.RateLimitMiddleware())

	adsGroup := v1.Group("/ads")
	{
		adsGroup.GET("", adHandler.List)
		adsGroup.POST("", adHandler.Create)
		adsGroup.GET("/board", adHandler.Board)
		adsGroup.GET("/export", adHandler.Export)
		adsGroup.GET("/:id", adHandler.Get)
		adsGroup.GET("/:id/engagement", adHandler.Engagement)
		adsGroup.PATCH("/:id", adHandler.Patch)
		adsGroup.POST("/:id/move", adHandler.Move)
		adsGroup.DELETE("/:id", adHandler.Delete)
	}

	learningsGroup := v1.Group("/learnings")
	{
		learningsGroup.GET("", learningHandler.List)
		learningsGroup.GET("/:id", learningHandler.Get)
		learningsGroup.DELETE("/:id", learningHandler.Delete)
	}

	analyticsGroup := v1.Group("/analytics")
	{
		analyticsGroup.GET("/stats", analyticsHandler.Stats)
		analyticsGroup.GET("/dashboard", analyticsHandler.Dashboard)
	}

	reportsGroup := v1.Group("/reports")
	{
		reportsGroup.POST("", reportHandler.Generate)
		reportsGroup.POST("/stream", reportHandler.Stream)
	}

	// Multipart overhead on top of the 100MB file ceiling
	v1.POST("/uploads", uploadHandler.Upload, middleware.BodyLimit("101M"))

	avatarsGroup := v1.Group("/avatars")
	{
		avatarsGroup.GET("", avatarHandler.List)
		avatarsGroup.POST("", avatarHandler.Create)
		avatarsGroup.GET("/:id", avatarHandler.Get)
		avatarsGroup.PATCH("/:id", avatarHandler.Update)
		avatarsGroup.DELETE("/:id", avatarHandler.Delete)
		avatarsGroup.POST("/:id/sub-avatars", avatarHandler.AddSubAvatar)
		avatarsGroup.POST("/:id/research", avatarHandler.AddResearch)
		avatarsGroup.DELETE("/:id/research/:itemId", avatarHandler.DeleteResearchItem)
	}

	competitorsGroup := v1.Group("/competitors")
	{
		competitorsGroup.GET("", competitorHandler.List)
		competitorsGroup.POST("", competitorHandler.Create)
		competitorsGroup.GET("/:id", competitorHandler.Get)
		competitorsGroup.PATCH("/:id", competitorHandler.Update)
		competitorsGroup.DELETE("/:id", competitorHandler.Delete)
		competitorsGroup.POST("/:id/ads", competitorHandler.AddAd)
	}

	v1.GET("/competitor-ads", competitorHandler.ListAds)
	v1.DELETE("/competitor-ads/:id", competitorHandler.DeleteAd)

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 Ad Creative Lab API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), reports %d req/min",
		cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst, cfg.ReportRequestsPerMinute)
	log.Printf("🔒 Testing lock: %d days by default", cfg.DefaultLockDays)

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Stop cron jobs
	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	// Gracefully shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
