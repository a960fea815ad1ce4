package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storyforge/internal/config"
	"storyforge/internal/handler"
	"storyforge/internal/logger"
	"storyforge/internal/middleware"
	"storyforge/internal/service"
	"storyforge/internal/web"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	zap.ReplaceGlobals(log)
	zap.L().Info("Logger initialized successfully", zap.String("logLevel", cfg.LogLevel))
	zap.L().Info("Configuration loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("ai_client", cfg.AI.ClientType),
		zap.String("text_model", cfg.AI.Model),
		zap.String("image_model", cfg.Image.Model),
	)

	// --- External Connections ---
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = setupRedis(cfg.Redis)
		if err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		zap.L().Info("Connected to Redis")
	}

	// --- Dependency Injection ---
	textGenerator, err := service.NewTextGenerator(cfg.AI, log)
	if err != nil {
		zap.L().Fatal("Failed to create text generator", zap.Error(err))
	}
	imageGenerator := service.NewImageGenerator(cfg.AI, cfg.Image, log)
	storyService := service.NewStoryService(textGenerator, imageGenerator, cfg.Image.PromptStyleSuffix, log)
	storyHandler := handler.NewStoryHandler(storyService, log)

	// nil redisClient переключает limiter на хранилище в памяти.
	rateLimitMiddleware := handler.NewRateLimiter(cfg.RateLimit, redisClient, log)
	zap.L().Info("Rate limiter middleware initialized")

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	storyHandler.RegisterRoutes(router, rateLimitMiddleware)
	if err := web.RegisterRoutes(router); err != nil {
		zap.L().Fatal("Failed to register web UI", zap.Error(err))
	}

	// Prometheus middleware подключается после регистрации маршрутов.
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.Server.Port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// setupRedis подключается к Redis для rate limiter с несколькими попытками.
func setupRedis(cfg config.RedisConfig) (*redis.Client, error) {
	redisOpts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	zap.L().Info("Redis connection options configured", zap.String("address", redisOpts.Addr), zap.Int("db", redisOpts.DB))

	const (
		maxRetries = 5
		retryDelay = 2 * time.Second
	)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		attempt := i + 1
		client := redis.NewClient(redisOpts)

		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			zap.L().Info("Successfully connected and pinged Redis", zap.Int("attempt", attempt))
			return client, nil
		}

		_ = client.Close()
		lastErr = fmt.Errorf("unable to ping redis (attempt %d/%d): %w", attempt, maxRetries, err)
		zap.L().Warn("Redis ping failed, retrying...", zap.Int("attempt", attempt), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, lastErr
}
