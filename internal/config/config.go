package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Supported AI providers.
const (
	AIProviderGemini = "gemini"
	AIProviderGenAI  = "genai"
	AIProviderNone   = "none"
)

// DevAPIKey is accepted as a bearer token when DevMode is enabled.
const DevAPIKey = "sk_local_streakedin_dev"

// Config holds the configuration for the StreakedIn service.
// Environment variables are parsed from the STREAKEDIN_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	DevMode     bool        `envconfig:"DEV_MODE" default:"false"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort       int      `envconfig:"HTTP_PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Storage
	DBDriver      string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"./data/streakedin.db"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN" default:""`
	MongoURI      string `envconfig:"MONGO_URI" default:""`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"streakedin"`

	// Auth
	JWTSecret string        `envconfig:"JWT_SECRET" default:""`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	// Generative AI
	AIProvider        string        `envconfig:"AI_PROVIDER" default:"gemini"`
	AIBaseURL         string        `envconfig:"AI_BASE_URL" default:"https://generativelanguage.googleapis.com"`
	AIModel           string        `envconfig:"AI_MODEL" default:"gemini-1.5-flash"`
	AIAPIKey          string        `envconfig:"AI_API_KEY" default:""`
	AITimeout         time.Duration `envconfig:"AI_TIMEOUT" default:"30s"`
	AITemperature     float32       `envconfig:"AI_TEMPERATURE" default:"0.7"`
	AITopK            int           `envconfig:"AI_TOP_K" default:"40"`
	AITopP            float32       `envconfig:"AI_TOP_P" default:"0.95"`
	AIMaxOutputTokens int           `envconfig:"AI_MAX_OUTPUT_TOKENS" default:"1024"`

	// Circuit breaker around the AI provider
	BreakerFailureThreshold int           `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"1"`
	BreakerInitialBackoff   time.Duration `envconfig:"BREAKER_INITIAL_BACKOFF" default:"30s"`
	BreakerMaxBackoff       time.Duration `envconfig:"BREAKER_MAX_BACKOFF" default:"10m"`

	// Realtime and background work
	StatsDebounce     time.Duration `envconfig:"STATS_DEBOUNCE" default:"250ms"`
	ReminderInterval  time.Duration `envconfig:"REMINDER_INTERVAL" default:"30s"`
	ChangefeedBuffer  int           `envconfig:"CHANGEFEED_BUFFER" default:"64"`
	HealthIntervalSec int           `envconfig:"HEALTH_INTERVAL_SECONDS" default:"15"`
	HealthTimeoutSec  int           `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults validates driver and provider choices and fills derived values.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "", "auto":
		c.DBDriver = DriverSQLite
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == DriverPostgres && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
	}
	if c.DBDriver == DriverMongo && c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required when DB_DRIVER=mongo")
	}

	switch c.AIProvider {
	case "":
		c.AIProvider = AIProviderGemini
	case AIProviderGemini, AIProviderGenAI, AIProviderNone:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER: %s", c.AIProvider)
	}

	if c.JWTSecret == "" {
		if !c.DevMode && c.Environment == EnvProduction {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWTSecret = "streakedin-dev-secret"
	}
	if c.BreakerFailureThreshold < 1 {
		c.BreakerFailureThreshold = 1
	}
	if c.ChangefeedBuffer < 1 {
		c.ChangefeedBuffer = 1
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: STREAKEDIN_HTTP_PORT, STREAKEDIN_DB_DRIVER
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("STREAKEDIN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Bool("dev_mode", cfg.DevMode).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Str("ai_provider", cfg.AIProvider).
		Str("ai_model", cfg.AIModel).
		Bool("ai_key_present", cfg.AIAPIKey != "").
		Dur("stats_debounce", cfg.StatsDebounce).
		Dur("reminder_interval", cfg.ReminderInterval).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:             EnvTesting,
		DevMode:                 true,
		LogLevel:                "debug",
		HTTPPort:                8080,
		AllowedOrigins:          []string{"*"},
		DBDriver:                DriverSQLite,
		MongoDatabase:           "streakedin_test",
		JWTSecret:               "test-secret",
		TokenTTL:                time.Hour,
		AIProvider:              AIProviderNone,
		AIModel:                 "gemini-1.5-flash",
		AITimeout:               5 * time.Second,
		AITemperature:           0.7,
		AITopK:                  40,
		AITopP:                  0.95,
		AIMaxOutputTokens:       1024,
		BreakerFailureThreshold: 1,
		BreakerInitialBackoff:   30 * time.Second,
		BreakerMaxBackoff:       10 * time.Minute,
		StatsDebounce:           10 * time.Millisecond,
		ReminderInterval:        time.Second,
		ChangefeedBuffer:        16,
		HealthIntervalSec:       1,
		HealthTimeoutSec:        1,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// HealthInterval returns the health probe cadence.
func (c *Config) HealthInterval() time.Duration {
	if c.HealthIntervalSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.HealthIntervalSec) * time.Second
}

// HealthProbeTimeout returns the timeout applied to each health probe.
func (c *Config) HealthProbeTimeout() time.Duration {
	if c.HealthTimeoutSec <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.HealthTimeoutSec) * time.Second
}
