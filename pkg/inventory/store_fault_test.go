package inventory

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/stockroom/pkg/audit"
	"github.com/platinummonkey/stockroom/pkg/observability"
	"github.com/platinummonkey/stockroom/pkg/storage"
)

// A failed audit append must roll the item write back with it.
func TestCreateRollsBackWhenAuditAppendFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_entries").WillReturnResult(sqlmock.NewResult(0, 0))
	auditLog, err := audit.NewLog(db, storage.DialectSQLite)
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS items").WillReturnResult(sqlmock.NewResult(0, 0))
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	store, err := NewStore(db, storage.DialectSQLite, auditLog, logger, nil)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_entries").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err = store.Create(context.Background(), CreateItemInput{
		Name: "Widget", SKU: "W-1", Quantity: 1, Price: decimal.New(1, 0),
	}, "manager1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRollsBackWhenAuditAppendFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS audit_entries").WillReturnResult(sqlmock.NewResult(0, 0))
	auditLog, err := audit.NewLog(db, storage.DialectSQLite)
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS items").WillReturnResult(sqlmock.NewResult(0, 0))
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	store, err := NewStore(db, storage.DialectSQLite, auditLog, logger, nil)
	require.NoError(t, err)

	itemID := uuid.New()
	now := time.Now().UTC()
	columns := []string{"id", "name", "sku", "quantity", "price", "location", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM items WHERE id =").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(itemID.String(), "Widget", "W-1", 5, "10.00", nil, now, now))
	mock.ExpectExec("UPDATE items SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO audit_entries").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	qty := 8
	_, err = store.Update(context.Background(), itemID, UpdateItemInput{Quantity: &qty}, "manager1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
