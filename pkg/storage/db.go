package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Dialect identifies the SQL backend so query text can be adjusted for
// placeholder style and row locking.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Rebind converts '?' placeholders to the dialect's native style. Queries
// throughout the codebase are written with '?' and rebound at execution.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ForUpdate returns the row-locking suffix for snapshot reads inside a
// mutation transaction. SQLite serializes writers at the database level, so
// no suffix is needed there.
func (d Dialect) ForUpdate() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// Open connects to the configured backend, applies pool settings, and
// verifies the connection with a ping.
func Open(cfg Config) (*sql.DB, Dialect, error) {
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	switch cfg.Type {
	case "postgres":
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open postgres connection: %w", err)
		}
		db.SetMaxOpenConns(cfg.PostgresMaxConns)
		db.SetMaxIdleConns(cfg.PostgresMinConns)
		db.SetConnMaxLifetime(time.Hour)
		dialect = DialectPostgres
	case "sqlite":
		// busy_timeout avoids spurious SQLITE_BUSY under concurrent
		// writers. No foreign keys: audit entries hold weak item
		// references that must survive item deletion.
		dsn := cfg.SQLitePath + "?_busy_timeout=5000"
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open sqlite database: %w", err)
		}
		// SQLite allows a single writer; a pool of writers just contends.
		db.SetMaxOpenConns(1)
		dialect = DialectSQLite
	}

	timeout := cfg.PostgresTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	return db, dialect, nil
}
