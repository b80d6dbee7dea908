package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Common holds settings shared by every storyhub binary.
type Common struct {
	// Environment
	GoEnv string `envconfig:"GO_ENV" default:"development" validate:"oneof=development test production"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json" validate:"oneof=json console"`
	LogOutput   string `envconfig:"LOG_OUTPUT"`

	// Database
	DatabaseURL       string        `envconfig:"DATABASE_URL" required:"true" validate:"required"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20" validate:"min=1"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5" validate:"min=0"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	RunMigrations     bool          `envconfig:"RUN_MIGRATIONS" default:"true"`

	// Messaging (optional, events are dropped when unset)
	RabbitMQURL    string `envconfig:"RABBITMQ_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"storyhub.content" validate:"required"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// ContentConfig configures the content API.
type ContentConfig struct {
	Common

	HTTPPort       int     `envconfig:"CONTENT_HTTP_PORT" default:"5000" validate:"min=1,max=65535"`
	APIKey         string  `envconfig:"CONTENT_API_KEY" required:"true" validate:"min=16"`
	RateLimitRPS   float64 `envconfig:"CONTENT_RATE_LIMIT_RPS" default:"50" validate:"gt=0"`
	RateLimitBurst int     `envconfig:"CONTENT_RATE_LIMIT_BURST" default:"100" validate:"min=1"`
}

// WebConfig configures the player-facing web API.
type WebConfig struct {
	Common

	HTTPPort int `envconfig:"WEB_HTTP_PORT" default:"8000" validate:"min=1,max=65535"`

	// Content API client
	ContentAPIURL     string        `envconfig:"CONTENT_API_URL" default:"http://localhost:5000" validate:"url"`
	ContentAPIKey     string        `envconfig:"CONTENT_API_KEY" required:"true" validate:"min=16"`
	ContentTimeout    time.Duration `envconfig:"CONTENT_API_TIMEOUT" default:"10s"`
	ContentRPS        float64       `envconfig:"CONTENT_API_RPS" default:"20" validate:"gt=0"`
	ContentBurst      int           `envconfig:"CONTENT_API_BURST" default:"40" validate:"min=1"`
	ContentMaxRetries int           `envconfig:"CONTENT_API_MAX_RETRIES" default:"3" validate:"min=0,max=10"`

	// Authentication
	JWTSecret       string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	// Redis
	RedisURL   string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0" validate:"required"`
	SessionTTL time.Duration `envconfig:"PLAY_SESSION_TTL" default:"720h"`

	SessionCookieSecure bool     `envconfig:"SESSION_COOKIE_SECURE" default:"false"`
	CORSOrigins         []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	AuthRateLimit       uint     `envconfig:"AUTH_RATE_LIMIT_PER_MINUTE" default:"10" validate:"min=1"`
	StatsWorkers        int      `envconfig:"STATS_WORKERS" default:"4" validate:"min=1,max=64"`
}

var validate = validator.New()

// loadDotEnv loads .env when present. A missing file is not an error,
// system environment variables still apply.
func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not parse .env file: %v\n", err)
	}
}

// LoadContent loads and validates the content API configuration.
func LoadContent() (*ContentConfig, error) {
	loadDotEnv()

	var cfg ContentConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load content api config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWeb loads and validates the web API configuration.
func LoadWeb() (*WebConfig, error) {
	loadDotEnv()

	var cfg WebConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load web api config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate performs validation on the loaded configuration
func (c *ContentConfig) Validate() error {
	return collect(validate.Struct(c), nil)
}

// Validate performs validation on the loaded configuration
func (c *WebConfig) Validate() error {
	var problems []string

	// HS256 keys shorter than the hash output weaken the signature
	if len(c.JWTSecret) < 32 {
		problems = append(problems, "JWT_SECRET should be at least 32 characters long")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		problems = append(problems, "ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	if c.IsProduction() && !c.SessionCookieSecure {
		problems = append(problems, "SESSION_COOKIE_SECURE must be enabled in production")
	}

	return collect(validate.Struct(c), problems)
}

// collect merges validator field errors and hand-written rules into one error.
func collect(err error, problems []string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
		}
	} else if err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Common) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Common) IsProduction() bool {
	return c.GoEnv == "production"
}
