package observability

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHealthCheckHealthy(t *testing.T) {
	checker := NewHealthChecker(openTestDB(t), nil)

	status := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, StatusHealthy, status.Dependencies["database"].Status)
	assert.NotContains(t, status.Dependencies, "redis")
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	db := openTestDB(t)
	db.Close()

	checker := NewHealthChecker(db, nil)
	status := checker.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, status.Status)
}

func TestHealthCheckRedisDownDegrades(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	checker := NewHealthChecker(openTestDB(t), client)
	status := checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, status.Status)
	assert.Equal(t, StatusUnhealthy, status.Dependencies["redis"].Status)
}

func TestReadinessEndpoint(t *testing.T) {
	checker := NewHealthChecker(openTestDB(t), nil)

	w := httptest.NewRecorder()
	checker.Readiness(w, httptest.NewRequest("GET", "/health/ready", nil))
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), StatusHealthy)
}

func TestLivenessEndpoint(t *testing.T) {
	checker := NewHealthChecker(nil, nil)

	w := httptest.NewRecorder()
	checker.Liveness(w, httptest.NewRequest("GET", "/health/live", nil))
	assert.Equal(t, 200, w.Code)
}
