package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // REPORT_TIMEZONE must resolve in minimal images

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	WebSocket WebSocketConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	Reports   ReportsConfig
	App       AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the postgres pool. Postgres always holds user
// profiles, and holds assets and tickets when STORE_DRIVER=postgres.
type DatabaseConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrateOnStart  bool
}

// StoreConfig selects where assets and tickets live.
type StoreConfig struct {
	Driver string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	ExportRPS         float64 // per-user limit for report exports
	ExportBurst       int
}

type WebSocketConfig struct {
	AllowedOrigins  []string
	ReadBufferSize  int
	WriteBufferSize int
	PingInterval    time.Duration
	PongWait        time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// ReportsConfig tunes report evaluation and the background jobs.
type ReportsConfig struct {
	Timezone        string
	RecentLimit     int
	WarmupSchedule  string
	DigestSchedule  string
	JobsEnabled     bool
	WatchDashboard  bool
	WatchRetryDelay time.Duration
}

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

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxConns:        int32(getIntOrDefault("DB_MAX_CONNS", 25)),
			MinConns:        int32(getIntOrDefault("DB_MIN_CONNS", 2)),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			MigrateOnStart:  getBoolOrDefault("MIGRATE_ON_START", true),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverPostgres)),
		},
		Mongo: MongoConfig{
			URI:            os.Getenv("MONGO_URI"),
			Database:       getEnvOrDefault("MONGO_DATABASE", "asset_desk"),
			ConnectTimeout: getDurationOrDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Enabled:  getBoolOrDefault("REDIS_ENABLED", false),
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getIntOrDefault("REDIS_DB", 0),
			TTL:      getDurationOrDefault("REDIS_TTL", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    getDurationOrDefault("JWT_TTL", time.Hour),
			Issuer: os.Getenv("JWT_ISSUER"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
			ExportRPS:         getFloatOrDefault("RATE_LIMIT_EXPORT_RPS", 0.2),
			ExportBurst:       getIntOrDefault("RATE_LIMIT_EXPORT_BURST", 3),
		},
		WebSocket: WebSocketConfig{
			AllowedOrigins:  getStringSliceOrDefault("WS_ALLOWED_ORIGINS", []string{}),
			ReadBufferSize:  getIntOrDefault("WS_READ_BUFFER_SIZE", 1024),
			WriteBufferSize: getIntOrDefault("WS_WRITE_BUFFER_SIZE", 1024),
			PingInterval:    getDurationOrDefault("WS_PING_INTERVAL", 54*time.Second),
			PongWait:        getDurationOrDefault("WS_PONG_WAIT", 60*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:4200"}),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Reports: ReportsConfig{
			Timezone:        getEnvOrDefault("REPORT_TIMEZONE", "America/Sao_Paulo"),
			RecentLimit:     getIntOrDefault("REPORT_RECENT_LIMIT", 3),
			WarmupSchedule:  getEnvOrDefault("JOB_WARMUP_SCHEDULE", "0 */5 * * * *"),
			DigestSchedule:  getEnvOrDefault("JOB_DIGEST_SCHEDULE", "0 0 8 * * *"),
			JobsEnabled:     getBoolOrDefault("JOBS_ENABLED", true),
			WatchDashboard:  getBoolOrDefault("DASHBOARD_WATCH_ENABLED", true),
			WatchRetryDelay: getDurationOrDefault("DASHBOARD_WATCH_RETRY", 5*time.Second),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "asset-desk"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.URL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, "MONGO_URI is required when STORE_DRIVER=mongo")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMongo, c.Store.Driver))
	}

	if _, err := time.LoadLocation(c.Reports.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("REPORT_TIMEZONE %q is not a valid IANA zone", c.Reports.Timezone))
	}

	if c.Reports.RecentLimit <= 0 {
		errs = append(errs, "REPORT_RECENT_LIMIT must be positive")
	}

	if c.App.Environment == "production" {
		if len(c.JWT.Secret) < 32 {
			errs = append(errs, "JWT_SECRET must be at least 32 characters in production")
		}

		if len(c.WebSocket.AllowedOrigins) == 0 {
			errs = append(errs, "WS_ALLOWED_ORIGINS must be set in production")
		}
	}

	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, "DB_MIN_CONNS cannot be greater than DB_MAX_CONNS")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the report time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reports.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

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
		var result []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted representation that is safe to log.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, DB: %s, Store: %s, Redis: %v, JWT: [REDACTED], RateLimit: %v, Timezone: %s, Environment: %s}",
		c.Server.Port,
		redactURL(c.Database.URL),
		c.Store.Driver,
		c.Redis.Enabled,
		c.RateLimit.Enabled,
		c.Reports.Timezone,
		c.App.Environment,
	)
}

// redactURL hides the credentials part of a connection URL.
func redactURL(url string) string {
	if url == "" {
		return ""
	}
	if idx := strings.LastIndex(url, "@"); idx > 0 {
		return "[REDACTED]" + url[idx:]
	}
	return "[REDACTED]"
}
