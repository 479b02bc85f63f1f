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

	"examLens/app/echo-server/router"
	"examLens/business/analytics"
	"examLens/business/cluster"
	"examLens/business/concept"
	"examLens/business/normalizer"
	"examLens/business/persistence"
	"examLens/business/recommend"
	"examLens/business/risk"
	"examLens/internal/middleware"
	memoryRepo "examLens/internal/repository/memory"
	psqlRepo "examLens/internal/repository/postgres"
	redisRepo "examLens/internal/repository/redis"
	"examLens/internal/rest"
	"examLens/pkg/config"
	"examLens/pkg/database"
	redisdb "examLens/pkg/database/redis"
	"examLens/pkg/logger"
	"examLens/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()
	logger.Info("Starting examLens", "version", cfg.App.Version)

	metrics.Init()

	// Concept mapping store: database-backed by default, in-memory when
	// no store needs to survive a restart.
	var conceptStore concept.Store
	if cfg.Database.Driver == "memory" {
		conceptStore = memoryRepo.NewConceptRepository()
		logger.Info("Using in-memory concept store")
	} else {
		db, err := database.Init(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		logger.Info("Database connected successfully", "driver", cfg.Database.Driver)
		conceptStore = psqlRepo.NewConceptRepository(db)
	}

	// Optional report memoization
	var reportCache rest.ReportCache
	if cfg.Redis.Enabled {
		client, err := redisdb.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", "error", err)
		}
		defer func() { _ = redisdb.CloseRedisClient(client) }()
		reportCache = redisRepo.NewReportCache(client, time.Hour)
		logger.Info("Report cache enabled")
	}

	// Init services
	conceptService := concept.NewService(conceptStore)
	analyticsService := analytics.NewService(
		normalizer.NewService(),
		conceptService,
		persistence.NewService(),
		cluster.NewService(cluster.Config{
			Metric:     cfg.Analytics.SimilarityMetric,
			Threshold:  cfg.Analytics.SimilarityThreshold,
			MinSupport: cfg.Analytics.ClusterMinSupport,
		}),
		recommend.NewService(cfg.Analytics.PersistenceCutoff),
		risk.NewService(risk.NewLogisticModel()),
		cfg.Analytics.RecommendTopN,
	)

	// Init handlers
	analyticsHandler := rest.NewAnalyticsHandler(analyticsService, reportCache)
	conceptHandler := rest.NewConceptHandler(conceptService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupAnalyticsRoutes(api, analyticsHandler)
	router.SetupConceptRoutes(api, conceptHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
