package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of mutation an audit entry records
type Action string

const (
	ActionInsert Action = "INSERT"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// IsValid reports whether a is one of the known actions
func (a Action) IsValid() bool {
	switch a {
	case ActionInsert, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// FieldChange holds the before and after value of a single field
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// DiffResult is the computed difference between two item snapshots. Fields
// is nil for inserts and deletes, and may be empty for an update that
// changed nothing.
type DiffResult struct {
	Action Action
	Fields map[string]FieldChange
}

// Entry is a single row of the audit trail
type Entry struct {
	ID        int64                  `json:"id"`
	ItemID    uuid.UUID              `json:"item_id"`
	Action    Action                 `json:"action"`
	Actor     string                 `json:"username"`
	Diff      map[string]FieldChange `json:"diff,omitempty"`
	ChangedAt time.Time              `json:"changed_at"`
}

// Filter narrows audit queries and exports. Nil fields match everything.
type Filter struct {
	Action *Action
	From   *time.Time
	To     *time.Time
}
