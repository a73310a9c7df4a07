package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/stockroom/pkg/observability"
	"github.com/platinummonkey/stockroom/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Storage       storage.Config
	Auth          AuthConfig
	Observability ObservabilityConfig
	Archive       ArchiveConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// AuthConfig holds authentication configuration. Tokens is a static
// token-to-identity table in the form "token=username:role,...".
type AuthConfig struct {
	Tokens string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// ArchiveConfig holds settings for the daily audit archive job
type ArchiveConfig struct {
	// Target selects where archives go: "dir" or "s3"
	Target   string
	Schedule string

	// Directory target
	Dir string

	// S3 target
	S3Bucket    string
	S3Region    string
	S3Prefix    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PathStyle bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Auth:          loadAuthConfig(),
		Observability: loadObservabilityConfig(),
		Archive:       loadArchiveConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("STOCKROOM_HOST", "0.0.0.0"),
		Port:            getEnv("STOCKROOM_PORT", "8080"),
		ReadTimeout:     getEnvDuration("STOCKROOM_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("STOCKROOM_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("STOCKROOM_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("STOCKROOM_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("STOCKROOM_MAX_BODY_BYTES", 1<<20),
		HealthPort:      getEnv("STOCKROOM_HEALTH_PORT", "9090"),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storageType := getEnv("STOCKROOM_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}
	if pgURL := getEnv("STOCKROOM_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("STOCKROOM_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("STOCKROOM_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration("STOCKROOM_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}
	if sqlitePath := getEnv("STOCKROOM_SQLITE_PATH", ""); sqlitePath != "" {
		cfg.SQLitePath = sqlitePath
	}

	if redisURL := getEnv("STOCKROOM_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("STOCKROOM_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("STOCKROOM_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisPoolSize := getEnvInt("STOCKROOM_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}

	if cacheEnabled := getEnv("STOCKROOM_CACHE_ENABLED", ""); cacheEnabled != "" {
		cfg.CacheEnabled = strings.ToLower(cacheEnabled) == "true" || cacheEnabled == "1"
	}
	if l1Size := getEnvInt("STOCKROOM_L1_CACHE_SIZE", 0); l1Size > 0 {
		cfg.L1CacheSize = l1Size
	}
	if ttl := getEnvDuration("STOCKROOM_CACHE_TTL", 0); ttl > 0 {
		cfg.CacheTTL = ttl
	}

	return cfg
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		Tokens: getEnv("STOCKROOM_AUTH_TOKENS", ""),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           observability.ParseLogLevel(getEnv("STOCKROOM_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("STOCKROOM_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("STOCKROOM_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("STOCKROOM_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("STOCKROOM_OTEL_SERVICE_NAME", "stockroom"),
		OTelServiceVersion: getEnv("STOCKROOM_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("STOCKROOM_OTEL_INSECURE", true),
	}
}

func loadArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		Target:      getEnv("STOCKROOM_ARCHIVE_TARGET", "dir"),
		Schedule:    getEnv("STOCKROOM_ARCHIVE_SCHEDULE", "5 0 * * *"),
		Dir:         getEnv("STOCKROOM_ARCHIVE_DIR", "audit-archive"),
		S3Bucket:    getEnv("STOCKROOM_ARCHIVE_S3_BUCKET", ""),
		S3Region:    getEnv("STOCKROOM_ARCHIVE_S3_REGION", "us-east-1"),
		S3Prefix:    getEnv("STOCKROOM_ARCHIVE_S3_PREFIX", "audit/"),
		S3Endpoint:  getEnv("STOCKROOM_ARCHIVE_S3_ENDPOINT", ""),
		S3AccessKey: getEnv("STOCKROOM_ARCHIVE_S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("STOCKROOM_ARCHIVE_S3_SECRET_KEY", ""),
		S3PathStyle: getEnvBool("STOCKROOM_ARCHIVE_S3_PATH_STYLE", false),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if err := c.Storage.Validate(); err != nil {
		return err
	}

	switch c.Archive.Target {
	case "dir":
		if c.Archive.Dir == "" {
			return fmt.Errorf("archive directory is required for dir target")
		}
	case "s3":
		if c.Archive.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 archive target")
		}
	default:
		return fmt.Errorf("invalid archive target: %s (must be dir or s3)", c.Archive.Target)
	}

	if c.Observability.OTelEnabled && c.Observability.OTelEndpoint == "" {
		return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
