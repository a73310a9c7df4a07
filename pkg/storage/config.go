package storage

import (
	"fmt"
	"time"
)

// Config holds database and cache configuration.
type Config struct {
	// Type selects the backend: "postgres" or "sqlite".
	Type string

	// PostgreSQL
	PostgresURL      string
	PostgresMaxConns int
	PostgresMinConns int
	PostgresTimeout  time.Duration

	// SQLite
	SQLitePath string

	// Redis (optional L2 item cache)
	RedisURL      string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	// Cache
	CacheEnabled bool
	L1CacheSize  int
	CacheTTL     time.Duration
}

// DefaultConfig returns a local-development configuration backed by SQLite.
func DefaultConfig() Config {
	return Config{
		Type:             "sqlite",
		SQLitePath:       "stockroom.db",
		PostgresMaxConns: 25,
		PostgresMinConns: 5,
		PostgresTimeout:  10 * time.Second,
		RedisDB:          0,
		CacheEnabled:     false,
		L1CacheSize:      1024,
		CacheTTL:         5 * time.Minute,
	}
}

// Validate checks that the selected backend is fully configured.
func (c Config) Validate() error {
	switch c.Type {
	case "postgres":
		if c.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres storage")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be postgres or sqlite)", c.Type)
	}
	if c.CacheEnabled && c.RedisURL == "" && c.L1CacheSize <= 0 {
		return fmt.Errorf("cache enabled but neither redis URL nor L1 size configured")
	}
	return nil
}
