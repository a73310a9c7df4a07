package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/platinummonkey/stockroom/pkg/audit"
	"github.com/platinummonkey/stockroom/pkg/observability"
	"github.com/platinummonkey/stockroom/pkg/query"
	"github.com/platinummonkey/stockroom/pkg/storage"
)

const itemColumns = "id, name, sku, quantity, price, location, created_at, updated_at"

// Store persists items in SQL. Every mutation appends its audit entry in
// the same transaction, so a committed change always carries its entry.
type Store struct {
	db       *sql.DB
	dialect  storage.Dialect
	auditLog *audit.Log
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewStore creates the store and ensures its table exists. metrics may be
// nil.
func NewStore(db *sql.DB, dialect storage.Dialect, auditLog *audit.Log, logger *observability.Logger, metrics *observability.Metrics) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if auditLog == nil {
		return nil, fmt.Errorf("audit log is required")
	}

	s := &Store{
		db:       db,
		dialect:  dialect,
		auditLog: auditLog,
		logger:   logger,
		metrics:  metrics,
	}
	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure items table: %w", err)
	}
	return s, nil
}

func (s *Store) ensureTable() error {
	var ddl string
	if s.dialect == storage.DialectPostgres {
		// seq orders listings by insertion; id is the stable external key
		ddl = `
		CREATE TABLE IF NOT EXISTS items (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			sku VARCHAR(100) NOT NULL UNIQUE,
			quantity INTEGER NOT NULL,
			price NUMERIC(20, 2) NOT NULL,
			location VARCHAR(255),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);
		`
	} else {
		ddl = `
		CREATE TABLE IF NOT EXISTS items (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			sku TEXT NOT NULL UNIQUE,
			quantity INTEGER NOT NULL,
			price TEXT NOT NULL,
			location TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_items_name ON items(name);
		`
	}

	_, err := s.db.Exec(ddl)
	return err
}

func (s *Store) observe(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveStorageOperation(operation, start, err)
	}
}

func (s *Store) recordMutation(action audit.Action) {
	if s.metrics != nil {
		s.metrics.ItemMutationsTotal.WithLabelValues(string(action)).Inc()
		s.metrics.AuditEntriesTotal.Inc()
	}
}

// Create inserts a new item and its INSERT audit entry
func (s *Store) Create(ctx context.Context, input CreateItemInput, actor string) (item *Item, err error) {
	defer func(start time.Time) { s.observe("item.create", start, err) }(time.Now())

	if err = input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item = &Item{
		ID:        uuid.New(),
		Name:      input.Name,
		SKU:       input.SKU,
		Quantity:  input.Quantity,
		Price:     input.Price,
		Location:  input.Location,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insert := s.dialect.Rebind(`INSERT INTO items (id, name, sku, quantity, price, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = tx.ExecContext(ctx, insert,
		item.ID.String(), item.Name, item.SKU, item.Quantity, item.Price.StringFixed(2),
		locationArg(item.Location), item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, item.SKU)
		}
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	if _, err = s.auditLog.AppendTx(ctx, tx, item.ID, actor, DiffItems(nil, item)); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item create: %w", err)
	}

	s.recordMutation(audit.ActionInsert)
	s.logger.WithFields(map[string]interface{}{
		"item_id": item.ID.String(),
		"sku":     item.SKU,
		"actor":   actor,
	}).Info("Item created")
	return item, nil
}

// Get returns one item by ID
func (s *Store) Get(ctx context.Context, id uuid.UUID) (item *Item, err error) {
	defer func(start time.Time) { s.observe("item.get", start, err) }(time.Now())

	q := s.dialect.Rebind("SELECT " + itemColumns + " FROM items WHERE id = ?")
	item, err = scanItem(s.db.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// List returns items newest first, optionally narrowed by a search term
func (s *Store) List(ctx context.Context, filter ItemFilter, params query.Params) (page *query.Page[*Item], err error) {
	defer func(start time.Time) { s.observe("item.list", start, err) }(time.Now())

	params = params.Normalize()

	where := ""
	args := []interface{}{}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		where = " WHERE LOWER(name) LIKE ? OR LOWER(sku) LIKE ?"
		args = append(args, term, term)
	}

	var total int64
	countQuery := s.dialect.Rebind("SELECT COUNT(*) FROM items" + where)
	if err = s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	listQuery := s.dialect.Rebind(fmt.Sprintf(
		"SELECT "+itemColumns+" FROM items%s ORDER BY seq DESC LIMIT %d OFFSET %d",
		where, params.PageSize, params.Offset(),
	))
	rows, err := s.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]*Item, 0)
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan item: %w", scanErr)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return query.NewPage(items, total, params), nil
}

// Update applies a partial update and appends its UPDATE audit entry. An
// update whose supplied fields match the current values still commits and
// records an entry with an empty diff.
func (s *Store) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput, actor string) (item *Item, err error) {
	defer func(start time.Time) { s.observe("item.update", start, err) }(time.Now())

	if !input.HasChanges() {
		return nil, ErrNoChanges
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	before, err := s.getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	after := *before
	if err = input.apply(&after); err != nil {
		return nil, err
	}
	after.UpdatedAt = time.Now().UTC()

	update := s.dialect.Rebind(`UPDATE items SET name = ?, sku = ?, quantity = ?, price = ?, location = ?, updated_at = ? WHERE id = ?`)
	_, err = tx.ExecContext(ctx, update,
		after.Name, after.SKU, after.Quantity, after.Price.StringFixed(2),
		locationArg(after.Location), after.UpdatedAt, after.ID.String(),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSKU, after.SKU)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if _, err = s.auditLog.AppendTx(ctx, tx, after.ID, actor, DiffItems(before, &after)); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item update: %w", err)
	}

	s.recordMutation(audit.ActionUpdate)
	return &after, nil
}

// Delete removes an item and appends its DELETE audit entry. The item's
// earlier audit entries remain.
func (s *Store) Delete(ctx context.Context, id uuid.UUID, actor string) (err error) {
	defer func(start time.Time) { s.observe("item.delete", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	before, err := s.getForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	del := s.dialect.Rebind("DELETE FROM items WHERE id = ?")
	if _, err = tx.ExecContext(ctx, del, id.String()); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if _, err = s.auditLog.AppendTx(ctx, tx, id, actor, DiffItems(before, nil)); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item delete: %w", err)
	}

	s.recordMutation(audit.ActionDelete)
	s.logger.WithFields(map[string]interface{}{
		"item_id": id.String(),
		"actor":   actor,
	}).Info("Item deleted")
	return nil
}

func (s *Store) getForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*Item, error) {
	q := s.dialect.Rebind("SELECT "+itemColumns+" FROM items WHERE id = ?") + s.dialect.ForUpdate()
	item, err := scanItem(tx.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read item for update: %w", err)
	}
	return item, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*Item, error) {
	item := &Item{}
	var id, price string
	var location sql.NullString

	err := row.Scan(&id, &item.Name, &item.SKU, &item.Quantity, &price, &location, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item id: %w", err)
	}
	item.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item price: %w", err)
	}
	if location.Valid {
		item.Location = &location.String
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return item, nil
}

func locationArg(loc *string) interface{} {
	if loc == nil {
		return nil
	}
	return *loc
}

func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
