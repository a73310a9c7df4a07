package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/stockroom/pkg/query"
	"github.com/platinummonkey/stockroom/pkg/storage"
)

// Log is the append-only audit trail backed by the audit_entries table.
// Entries for items that were later deleted remain readable; item_id is a
// weak reference on purpose.
type Log struct {
	db      *sql.DB
	dialect storage.Dialect
}

// NewLog creates the audit log and ensures its table exists
func NewLog(db *sql.DB, dialect storage.Dialect) (*Log, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	l := &Log{db: db, dialect: dialect}
	if err := l.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure audit_entries table: %w", err)
	}
	return l, nil
}

func (l *Log) ensureTable() error {
	var ddl string
	if l.dialect == storage.DialectPostgres {
		ddl = `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id BIGSERIAL PRIMARY KEY,
			item_id UUID NOT NULL,
			action VARCHAR(10) NOT NULL,
			actor VARCHAR(255) NOT NULL,
			diff JSONB,
			changed_at TIMESTAMP WITH TIME ZONE NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_changed_at ON audit_entries(changed_at DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_item_id ON audit_entries(item_id);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_action ON audit_entries(action);
		`
	} else {
		ddl = `
		CREATE TABLE IF NOT EXISTS audit_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id TEXT NOT NULL,
			action TEXT NOT NULL,
			actor TEXT NOT NULL,
			diff TEXT,
			changed_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_changed_at ON audit_entries(changed_at DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_item_id ON audit_entries(item_id);
		CREATE INDEX IF NOT EXISTS idx_audit_entries_action ON audit_entries(action);
		`
	}

	_, err := l.db.Exec(ddl)
	return err
}

// AppendTx writes one entry inside the caller's transaction. The entry's
// timestamp is stamped here, in UTC, so callers cannot backdate the trail.
func (l *Log) AppendTx(ctx context.Context, tx *sql.Tx, itemID uuid.UUID, actor string, diff DiffResult) (*Entry, error) {
	if !diff.Action.IsValid() {
		return nil, fmt.Errorf("invalid audit action: %q", diff.Action)
	}
	if actor == "" {
		return nil, fmt.Errorf("audit actor is required")
	}

	entry := &Entry{
		ItemID:    itemID,
		Action:    diff.Action,
		Actor:     actor,
		Diff:      diff.Fields,
		ChangedAt: time.Now().UTC(),
	}

	var diffJSON interface{}
	if entry.Diff != nil {
		data, err := json.Marshal(entry.Diff)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal diff: %w", err)
		}
		diffJSON = string(data)
	}

	insert := `INSERT INTO audit_entries (item_id, action, actor, diff, changed_at) VALUES (?, ?, ?, ?, ?)`
	if l.dialect == storage.DialectPostgres {
		insert = l.dialect.Rebind(insert) + " RETURNING id"
		err := tx.QueryRowContext(ctx, insert,
			entry.ItemID, entry.Action, entry.Actor, diffJSON, entry.ChangedAt,
		).Scan(&entry.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert audit entry: %w", err)
		}
		return entry, nil
	}

	result, err := tx.ExecContext(ctx, insert,
		entry.ItemID.String(), entry.Action, entry.Actor, diffJSON, entry.ChangedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert audit entry: %w", err)
	}
	entry.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit entry id: %w", err)
	}
	return entry, nil
}

// ForItem returns the audit history of a single item, newest first
func (l *Log) ForItem(ctx context.Context, itemID uuid.UUID, params query.Params) (*query.Page[*Entry], error) {
	params = params.Normalize()

	where := " WHERE item_id = ?"
	args := []interface{}{itemID.String()}

	return l.queryPage(ctx, where, args, params)
}

// Query returns the global audit trail, newest first, narrowed by filter
func (l *Log) Query(ctx context.Context, filter Filter, params query.Params) (*query.Page[*Entry], error) {
	params = params.Normalize()

	where, args := buildFilterClause(filter)
	return l.queryPage(ctx, where, args, params)
}

// Export returns every entry matching filter, newest first, without
// pagination. Used by CSV export and the archiver.
func (l *Log) Export(ctx context.Context, filter Filter) ([]*Entry, error) {
	where, args := buildFilterClause(filter)
	return l.queryEntries(ctx, where, args, "")
}

func buildFilterClause(filter Filter) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if filter.Action != nil {
		where += " AND action = ?"
		args = append(args, string(*filter.Action))
	}
	if filter.From != nil {
		where += " AND changed_at >= ?"
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		where += " AND changed_at <= ?"
		args = append(args, filter.To.UTC())
	}

	return where, args
}

func (l *Log) queryPage(ctx context.Context, where string, args []interface{}, params query.Params) (*query.Page[*Entry], error) {
	var total int64
	countQuery := l.dialect.Rebind("SELECT COUNT(*) FROM audit_entries" + where)
	if err := l.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count audit entries: %w", err)
	}

	limit := fmt.Sprintf(" LIMIT %d OFFSET %d", params.PageSize, params.Offset())
	entries, err := l.queryEntries(ctx, where, args, limit)
	if err != nil {
		return nil, err
	}

	return query.NewPage(entries, total, params), nil
}

func (l *Log) queryEntries(ctx context.Context, where string, args []interface{}, limit string) ([]*Entry, error) {
	// id breaks ties between entries stamped in the same instant
	q := l.dialect.Rebind(
		"SELECT id, item_id, action, actor, diff, changed_at FROM audit_entries" +
			where + " ORDER BY changed_at DESC, id ASC" + limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry := &Entry{}
		var itemID string
		var diffJSON sql.NullString

		if err := rows.Scan(&entry.ID, &itemID, &entry.Action, &entry.Actor, &diffJSON, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.ItemID, err = uuid.Parse(itemID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse audit entry item id: %w", err)
		}

		if diffJSON.Valid && diffJSON.String != "" {
			if err := json.Unmarshal([]byte(diffJSON.String), &entry.Diff); err != nil {
				return nil, fmt.Errorf("failed to unmarshal diff: %w", err)
			}
		}

		entry.ChangedAt = entry.ChangedAt.UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}
