package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"storyhub/database"
	"storyhub/internal/config"
	"storyhub/internal/events"
	"storyhub/internal/logger"
	"storyhub/internal/metrics"
	"storyhub/internal/microservices/content-api/handler"
	contentMiddleware "storyhub/internal/microservices/content-api/middleware"
	"storyhub/internal/microservices/content-api/repository"
	"storyhub/internal/microservices/content-api/service"
	"storyhub/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadContent()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Encoding:   cfg.LogEncoding,
		OutputPath: cfg.LogOutput,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Info("Configuration loaded", zap.String("env", cfg.GoEnv), zap.Int("port", cfg.HTTPPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := database.Connect(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, log.Named("database"))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if cfg.RunMigrations {
		if err := database.Migrate(db, database.ContentMigrations, log.Named("migrate")); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// --- Events ---
	var publisher events.Publisher = events.NewNoopPublisher(log.Named("events"))
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL, 10, log.Named("rabbitmq"))
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer func() { _ = conn.Close() }()

		rabbit, err := events.NewRabbitPublisher(conn, cfg.EventsExchange, log.Named("events"))
		if err != nil {
			log.Fatal("Failed to create event publisher", zap.Error(err))
		}
		publisher = rabbit
	} else {
		log.Warn("RABBITMQ_URL not set, content events will be dropped")
	}
	defer func() { _ = publisher.Close() }()

	// --- Dependency Injection ---
	storyRepo := repository.NewStoryRepository(db)
	pageRepo := repository.NewPageRepository(db)
	choiceRepo := repository.NewChoiceRepository(db)

	storyService := service.NewStoryService(storyRepo, publisher, log.Named("StoryService"))
	pageService := service.NewPageService(pageRepo, storyRepo, publisher, log.Named("PageService"))
	choiceService := service.NewChoiceService(choiceRepo)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(time.Minute)
	defer limiter.Stop()

	router := metrics.NewRouter("content_api", middleware.RequestLogger(log.Named("http")), gin.Recovery())

	health := handler.NewHealthHandler(func(ctx context.Context) error { return database.Ping(ctx, db) })
	router.GET("/health", health.Health)

	public := router.Group("/api/v1", limiter.Middleware())
	writes := router.Group("/api/v1", limiter.Middleware(), contentMiddleware.APIKey(cfg.APIKey))
	handler.NewStoryHandler(storyService).RegisterRoutes(public, writes)
	handler.NewPageHandler(pageService).RegisterRoutes(public, writes)
	handler.NewChoiceHandler(choiceService).RegisterRoutes(public, writes)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}
