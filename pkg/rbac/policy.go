package rbac

// capabilities is the full role/operation table. Absent entries deny.
var capabilities = map[Role]map[Operation]bool{
	RoleViewer: {
		OpListItems: true,
		OpReadItem:  true,
	},
	RoleManager: {
		OpListItems:       true,
		OpReadItem:        true,
		OpCreateItem:      true,
		OpUpdateItem:      true,
		OpReadItemAudit:   true,
		OpReadGlobalAudit: true,
		OpExportAudit:     true,
	},
	RoleAdmin: {
		OpListItems:       true,
		OpReadItem:        true,
		OpCreateItem:      true,
		OpUpdateItem:      true,
		OpDeleteItem:      true,
		OpReadItemAudit:   true,
		OpReadGlobalAudit: true,
		OpExportAudit:     true,
	},
}

// Authorize reports whether role may perform op. It is pure and total: an
// unrecognized role is treated as viewer, an unrecognized operation denies.
func Authorize(role Role, op Operation) bool {
	if !role.IsValid() {
		role = RoleViewer
	}
	return capabilities[role][op]
}

// Require returns ErrUnauthorized when role may not perform op.
func Require(role Role, op Operation) error {
	if !Authorize(role, op) {
		return ErrUnauthorized
	}
	return nil
}
