package rbac

import "errors"

// ErrUnauthorized is returned when a role lacks the capability for an
// operation. It is checked before any mutation or diff computation begins.
var ErrUnauthorized = errors.New("unauthorized: role lacks capability for operation")

// Role is the capability tier carried by an authenticated request.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the three known tiers.
func (r Role) IsValid() bool {
	switch r {
	case RoleViewer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// ParseRole maps a role claim string to a Role. Unknown input degrades to
// viewer (least privilege) instead of returning an error, so a malformed
// claim can never grant more than read access.
func ParseRole(s string) Role {
	r := Role(s)
	if !r.IsValid() {
		return RoleViewer
	}
	return r
}

// Operation identifies a gated entry point.
type Operation string

const (
	OpListItems       Operation = "items.list"
	OpReadItem        Operation = "items.read"
	OpCreateItem      Operation = "items.create"
	OpUpdateItem      Operation = "items.update"
	OpDeleteItem      Operation = "items.delete"
	OpReadItemAudit   Operation = "audit.read_item"
	OpReadGlobalAudit Operation = "audit.read_global"
	OpExportAudit     Operation = "audit.export"
)
