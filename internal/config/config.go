package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Remote GraphQL API configuration
	GraphQL GraphQLConfig

	// Board behavior
	Board BoardConfig

	// Activity journal database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// WebSocket configuration
	WebSocket WebSocketConfig

	// CORS configuration
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// GraphQLConfig holds the back-office API endpoint
type GraphQLConfig struct {
	URL     string
	Timeout time.Duration
}

// BoardConfig holds board behavior settings
type BoardConfig struct {
	ReconcilePolicy  string // rollback, keep
	PreserveAssignee bool
	IdleTTL          time.Duration
	CleanupInterval  time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL               string
	MaxConns          int
	MinConns          int
	ConnMaxLifetime   time.Duration
	ConnMaxIdleTime   time.Duration
	AutoMigrate       bool
	MigrationsPath    string
	ActivityRetention time.Duration // 0 keeps the journal forever
	PruneInterval     time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	TokenTTL     time.Duration
	AllowedRoles []string // empty allows every authenticated user
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	MutationRPS       float64 // Per-user limit for drops and edits
	MutationBurst     int
}

// WebSocketConfig holds WebSocket configuration
type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
}

// CORSConfig holds CORS configuration for the dashboard
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from the environment without validating it.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		GraphQL: GraphQLConfig{
			URL:     getEnvOrDefault("GRAPHQL_URL", "http://localhost:8000/graphql"),
			Timeout: getDurationOrDefault("GRAPHQL_TIMEOUT", 10*time.Second),
		},
		Board: BoardConfig{
			ReconcilePolicy:  getEnvOrDefault("BOARD_RECONCILE_POLICY", "rollback"),
			PreserveAssignee: getBoolOrDefault("BOARD_PRESERVE_ASSIGNEE", false),
			IdleTTL:          getDurationOrDefault("BOARD_IDLE_TTL", 30*time.Minute),
			CleanupInterval:  getDurationOrDefault("BOARD_CLEANUP_INTERVAL", time.Minute),
		},
		Database: DatabaseConfig{
			URL:               os.Getenv("DATABASE_URL"),
			MaxConns:          getIntOrDefault("DB_MAX_CONNS", 10),
			MinConns:          getIntOrDefault("DB_MIN_CONNS", 1),
			ConnMaxLifetime:   getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime:   getDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			AutoMigrate:       getBoolOrDefault("DB_AUTO_MIGRATE", true),
			MigrationsPath:    getEnvOrDefault("DB_MIGRATIONS_PATH", "migrations"),
			ActivityRetention: getDurationOrDefault("ACTIVITY_RETENTION", 30*24*time.Hour),
			PruneInterval:     getDurationOrDefault("ACTIVITY_PRUNE_INTERVAL", time.Hour),
		},
		JWT: JWTConfig{
			// SECRET_KEY is the name the back-office API signs its tokens with.
			Secret:       getEnvOrDefault("JWT_SECRET", os.Getenv("SECRET_KEY")),
			TokenTTL:     getDurationOrDefault("JWT_TOKEN_TTL", time.Hour),
			AllowedRoles: getStringSliceOrDefault("JWT_ALLOWED_ROLES", []string{}),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
			MutationRPS:       getFloatOrDefault("RATE_LIMIT_MUTATION_RPS", 5),
			MutationBurst:     getIntOrDefault("RATE_LIMIT_MUTATION_BURST", 10),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 1024),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			MaxAge:         getIntOrDefault("CORS_MAX_AGE", 300),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "ticket-board"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET (or SECRET_KEY) is required")
	}

	if c.GraphQL.URL == "" {
		errs = append(errs, "GRAPHQL_URL is required")
	} else if u, err := url.Parse(c.GraphQL.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "GRAPHQL_URL must be an absolute URL")
	}

	switch c.Board.ReconcilePolicy {
	case "rollback", "keep":
	default:
		errs = append(errs, "BOARD_RECONCILE_POLICY must be one of: rollback, keep")
	}

	// Security validations
	if c.App.Environment == "production" {
		if len(c.JWT.Secret) < 32 {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}

		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	// Logical validations
	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, "DB_MIN_CONNS cannot be greater than DB_MAX_CONNS")
	}

	if c.GraphQL.Timeout <= 0 {
		errs = append(errs, "GRAPHQL_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, GraphQL: %s, DB: %s, JWT: [REDACTED], Policy: %s, RateLimit: %v, Environment: %s}",
		c.Server.Port,
		c.GraphQL.URL,
		redactURL(c.Database.URL),
		c.Board.ReconcilePolicy,
		c.RateLimit.Enabled,
		c.App.Environment,
	)
}

// redactURL hides the credentials of a database URL
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	if idx := strings.LastIndex(raw, "@"); idx > 0 {
		return "[REDACTED]" + raw[idx:]
	}
	return "[REDACTED]"
}
