package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdesk/internal/domain/access"
)

func keys(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Key
	}
	return out
}

func TestVisibleForEmployee(t *testing.T) {
	actor := access.Actor{Role: access.RoleEmployee, UserID: "u1", Active: true}

	items, err := Visible(actor)
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard", "tasks", "attendance", "leave", "expenses"}, keys(items))
}

func TestVisibleForHR(t *testing.T) {
	actor := access.Actor{Role: access.RoleHR, UserID: "hr1", Active: true}

	items, err := Visible(actor)
	require.NoError(t, err)

	got := keys(items)
	assert.Contains(t, got, "approvals")
	assert.Contains(t, got, "people")
	assert.NotContains(t, got, "departments", "HR ranks below DEPT_ADMIN")
	assert.NotContains(t, got, "settings")
}

func TestVisibleForSuperAdmin(t *testing.T) {
	actor := access.Actor{Role: access.RoleSuperAdmin, UserID: "sa1", Active: true}

	items, err := Visible(actor)
	require.NoError(t, err)
	assert.Len(t, items, 12, "super admin sees every item")
}

func TestVisibleForInactiveActor(t *testing.T) {
	actor := access.Actor{Role: access.RoleSuperAdmin, UserID: "sa1", Active: false}

	items, err := Visible(actor)
	require.NoError(t, err)
	assert.Empty(t, items)
}
