package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cp-ladders/backend/internal/data"
	"github.com/cp-ladders/backend/internal/handler"
	"github.com/cp-ladders/backend/internal/infrastructure"
	"github.com/cp-ladders/backend/internal/judge"
	"github.com/cp-ladders/backend/internal/middleware"
	"github.com/cp-ladders/backend/internal/repository"
	"github.com/cp-ladders/backend/internal/service"
)

func main() {
	// Load configuration
	config := infrastructure.LoadConfig()

	// Initialize logger
	logger, err := infrastructure.NewLogger(config.Server.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.SyncLogger(logger)

	logger.Info("Starting CP Ladders API",
		zap.String("environment", config.Server.Environment),
		zap.Int("port", config.Server.Port),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	telemetry, err := infrastructure.NewTelemetry(ctx, &config.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		telemetry.Shutdown(shutdownCtx)
	}()

	metrics, err := telemetry.CreateMetrics()
	if err != nil {
		logger.Error("Failed to create metrics", zap.Error(err))
		os.Exit(1)
	}

	// Initialize database
	database, err := infrastructure.NewDatabase(&config.Database, logger)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	if err := database.AutoMigrate(); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	// Seed the ladder catalog
	seeder := data.NewSeeder(database.DB, logger)
	if err := seeder.SeedLadders(); err != nil {
		logger.Error("Failed to seed ladders", zap.Error(err))
		os.Exit(1)
	}

	// Leaderboard cache; the API stays up without it
	var cache *redis.Client
	cache, err = infrastructure.NewRedisClient(&config.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, leaderboard caching disabled", zap.Error(err))
		cache = nil
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	ladderRepo := repository.NewLadderRepository(database.DB)
	statusRepo := repository.NewStatusRepository(database.DB)
	profileRepo := repository.NewProfileRepository(database.DB)

	// External judge client
	codeforces := judge.NewCodeforcesClient(&config.Judge, logger)

	// Initialize services
	leaderboardService := service.NewLeaderboardService(statusRepo, ladderRepo, userRepo, cache, config.Redis.BoardTTL, telemetry.Tracer, logger)
	syncService := service.NewSyncService(ladderRepo, statusRepo, profileRepo, userRepo, codeforces, leaderboardService, metrics, telemetry.Tracer, logger)
	ladderService := service.NewLadderService(ladderRepo, statusRepo, profileRepo, userRepo, codeforces, leaderboardService, &config.Ladder, telemetry.Tracer, logger)
	profileService := service.NewProfileService(profileRepo, userRepo, telemetry.Tracer, logger)

	// Initialize handlers
	ladderHandler := handler.NewLadderHandler(ladderService, syncService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	profileHandler := handler.NewProfileHandler(profileService)

	// Setup Gin router
	if config.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	verifier := middleware.NewTokenVerifier(&config.JWT)

	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))
	router.Use(middleware.TracingMiddleware(telemetry.Tracer))
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.OptionalAuthMiddleware(verifier))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": config.Telemetry.ServiceVersion,
		})
	})

	// Metrics endpoint for Prometheus
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Ladder catalog, progress and sync routes
	ladders := router.Group("/ladders")
	{
		ladders.GET("", ladderHandler.GetLadders)
		ladders.GET("/:id/problems", ladderHandler.GetLadderProblems)
		ladders.GET("/:id/user/:uid/completed", ladderHandler.GetCompletedProblems)
		ladders.GET("/:id/user/:uid/revisited", ladderHandler.GetRevisitProblems)
		ladders.POST("/problems/:pid/user/:uid/revisit", ladderHandler.MarkRevisit)
		ladders.POST("/problems/:pid/status", ladderHandler.SetProblemStatus)
		ladders.POST("/codeforces/sync", ladderHandler.SyncCodeforces)
		ladders.POST("/profile", profileHandler.UpsertProfile)
		ladders.GET("/profile", profileHandler.GetProfile)
	}

	// Leaderboard routes
	cp51 := router.Group("/cp51")
	{
		cp51.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		cp51.GET("/leaderboard/user/:uid/rank", leaderboardHandler.GetUserRank)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server starting",
			zap.String("address", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if cache != nil {
		if err := cache.Close(); err != nil {
			logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
