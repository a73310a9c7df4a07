//go:build integration

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/platinummonkey/stockroom/pkg/api"
	"github.com/platinummonkey/stockroom/pkg/audit"
	"github.com/platinummonkey/stockroom/pkg/auth"
	"github.com/platinummonkey/stockroom/pkg/inventory"
	"github.com/platinummonkey/stockroom/pkg/observability"
	"github.com/platinummonkey/stockroom/pkg/rbac"
	"github.com/platinummonkey/stockroom/pkg/storage"
)

// setupPostgres starts a disposable PostgreSQL container and returns a
// connection to it. Tests are skipped when Docker is unavailable.
func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration tests")
	}
	provider.Close()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("stockroom_test"),
		postgres.WithUsername("stockroom"),
		postgres.WithPassword("stockroom_test_password"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := storage.DefaultConfig()
	cfg.Type = "postgres"
	cfg.PostgresURL = connStr
	db, _, err := storage.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func setupServer(t *testing.T) *api.Server {
	t.Helper()

	db := setupPostgres(t)
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)

	auditLog, err := audit.NewLog(db, storage.DialectPostgres)
	require.NoError(t, err)
	store, err := inventory.NewStore(db, storage.DialectPostgres, auditLog, logger, nil)
	require.NoError(t, err)

	verifier := auth.NewStaticVerifier(map[string]auth.Claims{
		"viewer-token":  {Username: "val", Role: rbac.RoleViewer},
		"manager-token": {Username: "mia", Role: rbac.RoleManager},
		"admin-token":   {Username: "ada", Role: rbac.RoleAdmin},
	})

	return api.NewServer(inventory.NewService(store), audit.NewService(auditLog), verifier, logger, api.Options{})
}

func request(t *testing.T, server *api.Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// TestItemLifecycle walks an item through creation, update, and deletion
// against a real PostgreSQL backend and verifies the audit trail records
// every step in order.
func TestItemLifecycle(t *testing.T) {
	server := setupServer(t)

	// Manager creates an item
	w := request(t, server, "POST", "/api/v1/items", "manager-token", map[string]interface{}{
		"name": "Widget", "sku": "W-100", "quantity": 5, "price": "12.50", "location": "Aisle 3",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var item inventory.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	itemID := item.ID.String()

	// Manager bumps the quantity
	w = request(t, server, "PUT", "/api/v1/items/"+itemID, "manager-token", map[string]interface{}{
		"quantity": 8,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, 8, item.Quantity)

	// Manager cannot delete
	w = request(t, server, "DELETE", "/api/v1/items/"+itemID, "manager-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Admin deletes
	w = request(t, server, "DELETE", "/api/v1/items/"+itemID, "admin-token", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = request(t, server, "GET", "/api/v1/items/"+itemID, "viewer-token", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The full trail survives the delete, newest first
	w = request(t, server, "GET", "/api/v1/audit", "manager-token", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Items      []audit.Entry `json:"items"`
		TotalItems int64         `json:"total_items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, audit.ActionDelete, page.Items[0].Action)
	assert.Equal(t, "ada", page.Items[0].Actor)
	assert.Equal(t, audit.ActionUpdate, page.Items[1].Action)
	assert.Equal(t, audit.ActionInsert, page.Items[2].Action)
	assert.Equal(t, "mia", page.Items[2].Actor)
}

func TestDuplicateSKUAcrossRequests(t *testing.T) {
	server := setupServer(t)

	w := request(t, server, "POST", "/api/v1/items", "manager-token", map[string]interface{}{
		"name": "Widget", "sku": "W-100", "quantity": 1, "price": "1.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(t, server, "POST", "/api/v1/items", "manager-token", map[string]interface{}{
		"name": "Other Widget", "sku": "W-100", "quantity": 2, "price": "2.00",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuditExportFiltering(t *testing.T) {
	server := setupServer(t)

	w := request(t, server, "POST", "/api/v1/items", "manager-token", map[string]interface{}{
		"name": "Widget", "sku": "W-100", "quantity": 5, "price": "10.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var item inventory.Item
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))

	w = request(t, server, "PUT", "/api/v1/items/"+item.ID.String(), "manager-token", map[string]interface{}{
		"quantity": 7,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = request(t, server, "GET", "/api/v1/audit/export?action=UPDATE", "manager-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	lines := bytes.Split(bytes.TrimSpace(w.Body.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "action,item_id,username,changed_at,diff", string(lines[0]))
	assert.Contains(t, string(lines[1]), "quantity: 5 -> 7")
}
