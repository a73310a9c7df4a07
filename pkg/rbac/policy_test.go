package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorizeCapabilityTable(t *testing.T) {
	tests := []struct {
		op      Operation
		viewer  bool
		manager bool
		admin   bool
	}{
		{OpListItems, true, true, true},
		{OpReadItem, true, true, true},
		{OpCreateItem, false, true, true},
		{OpUpdateItem, false, true, true},
		{OpDeleteItem, false, false, true},
		{OpReadItemAudit, false, true, true},
		{OpReadGlobalAudit, false, true, true},
		{OpExportAudit, false, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.viewer, Authorize(RoleViewer, tt.op), "viewer")
			assert.Equal(t, tt.manager, Authorize(RoleManager, tt.op), "manager")
			assert.Equal(t, tt.admin, Authorize(RoleAdmin, tt.op), "admin")
		})
	}
}

func TestAuthorizeUnknownRoleIsViewer(t *testing.T) {
	assert.True(t, Authorize(Role("intruder"), OpListItems))
	assert.False(t, Authorize(Role("intruder"), OpCreateItem))
	assert.False(t, Authorize(Role(""), OpDeleteItem))
	assert.False(t, Authorize(Role("superadmin"), OpExportAudit))
}

func TestAuthorizeUnknownOperationDenies(t *testing.T) {
	assert.False(t, Authorize(RoleAdmin, Operation("items.explode")))
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(RoleManager, OpCreateItem))
	assert.ErrorIs(t, Require(RoleViewer, OpCreateItem), ErrUnauthorized)
	assert.ErrorIs(t, Require(RoleManager, OpDeleteItem), ErrUnauthorized)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleManager, ParseRole("manager"))
	assert.Equal(t, RoleViewer, ParseRole("viewer"))
	assert.Equal(t, RoleViewer, ParseRole("root"))
	assert.Equal(t, RoleViewer, ParseRole(""))
}
