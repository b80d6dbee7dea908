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
	"storyhub/internal/microservices/web-api/authz"
	"storyhub/internal/microservices/web-api/contentclient"
	"storyhub/internal/microservices/web-api/handler"
	webMiddleware "storyhub/internal/microservices/web-api/middleware"
	"storyhub/internal/microservices/web-api/repository"
	"storyhub/internal/microservices/web-api/service"
	"storyhub/internal/microservices/web-api/session"
	"storyhub/internal/middleware"

	rateli "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	eventsQueue          = "storyhub.web.sessions"
	tokenCleanupInterval = time.Hour
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadWeb()
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

	// --- External Connections ---
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
		if err := database.Migrate(db, database.WebMigrations, log.Named("migrate")); err != nil {
			log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := session.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("Connected to Redis")

	content := contentclient.New(contentclient.Config{
		BaseURL:    cfg.ContentAPIURL,
		APIKey:     cfg.ContentAPIKey,
		Timeout:    cfg.ContentTimeout,
		RPS:        cfg.ContentRPS,
		Burst:      cfg.ContentBurst,
		MaxRetries: cfg.ContentMaxRetries,
	}, log.Named("ContentClient"))

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		log.Fatal("Failed to load authorization policy", zap.Error(err))
	}

	// --- Dependency Injection ---
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	reportRepo := repository.NewReportRepository(db)
	playRepo := repository.NewPlayRepository(db)
	sessionRepo := repository.NewPlaySessionRepository(db)

	store := session.NewHybridStore(
		session.NewRedisCache(redisClient, cfg.SessionTTL),
		sessionRepo,
		log.Named("SessionStore"),
	)

	authService := service.NewAuthService(userRepo, tokenRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, log.Named("AuthService"))
	deps := handler.Dependencies{
		Auth:         authService,
		Users:        service.NewUserService(userRepo, tokenRepo, log.Named("UserService")),
		Stories:      service.NewStoryService(content, ratingRepo),
		Ratings:      service.NewRatingService(content, ratingRepo, log.Named("RatingService")),
		Gameplay:     service.NewGameplayService(content, store, playRepo, log.Named("GameplayService")),
		Author:       service.NewAuthorService(content, log.Named("AuthorService")),
		Moderation:   service.NewModerationService(content, reportRepo, log.Named("ModerationService")),
		Stats:        service.NewStatsService(content, playRepo, userRepo, cfg.StatsWorkers, log.Named("StatsService")),
		Enforcer:     enforcer,
		SecureCookie: cfg.SessionCookieSecure,
		Health: handler.NewHealthHandler(
			func(ctx context.Context) error { return database.Ping(ctx, db) },
			func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			content.Ping,
		),
	}

	// Auth endpoints: AUTH_RATE_LIMIT_PER_MINUTE requests per minute per IP
	rateLimitStore := rateli.RedisStore(&rateli.RedisOptions{
		RedisClient: redisClient,
		Rate:        time.Minute,
		Limit:       cfg.AuthRateLimit,
	})
	deps.AuthLimit = rateli.RateLimiter(rateLimitStore, &rateli.Options{
		ErrorHandler: func(c *gin.Context, info rateli.Info) {
			log.Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Try again in " + time.Until(info.ResetTime).Round(time.Second).String(),
			})
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})

	// --- Events ---
	var consumer *events.Consumer
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL, 10, log.Named("rabbitmq"))
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer func() { _ = conn.Close() }()

		consumer, err = events.NewConsumer(conn, cfg.EventsExchange, eventsQueue, service.RoutingKeys,
			service.NewSessionPurger(store, log.Named("SessionPurger")), log.Named("consumer"))
		if err != nil {
			log.Fatal("Failed to create event consumer", zap.Error(err))
		}
		if err := consumer.Start(ctx); err != nil {
			log.Fatal("Failed to start event consumer", zap.Error(err))
		}
	} else {
		log.Warn("RABBITMQ_URL not set, stale play sessions are only dropped on access")
	}

	go cleanupTokens(ctx, tokenRepo, log.Named("TokenCleanup"))

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}

	router := metrics.NewRouter("web_api", middleware.RequestLogger(log.Named("http")), gin.Recovery())
	router.RedirectTrailingSlash = true

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", webMiddleware.SessionKeyHeader}
	corsConfig.ExposeHeaders = []string{webMiddleware.SessionKeyHeader}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	handler.Register(router, deps)

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
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

	if consumer != nil {
		log.Info("Stopping event consumer...")
		consumer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}

// cleanupTokens deletes expired refresh tokens until ctx is done.
func cleanupTokens(ctx context.Context, tokens repository.RefreshTokenRepository, log *zap.Logger) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := tokens.DeleteExpired(ctx, time.Now())
			if err != nil {
				log.Error("Failed to delete expired refresh tokens", zap.Error(err))
				continue
			}
			if deleted > 0 {
				log.Info("Expired refresh tokens deleted", zap.Int64("count", deleted))
			}
		}
	}
}
