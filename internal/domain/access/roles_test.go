package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOfIsUniqueAndStable(t *testing.T) {
	seen := make(map[int]Role)
	for _, role := range Roles() {
		first, err := RankOf(role)
		require.NoError(t, err)

		prev, dup := seen[first]
		assert.False(t, dup, "rank %d shared by %s and %s", first, prev, role)
		seen[first] = role

		second, err := RankOf(role)
		require.NoError(t, err)
		assert.Equal(t, first, second, "rank of %s changed between calls", role)
	}
	assert.Len(t, seen, len(Roles()))
}

func TestRankOfUnknownRole(t *testing.T) {
	_, err := RankOf(Role("WIZARD"))
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = RankOf(Role(""))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestAtLeastReflexive(t *testing.T) {
	for _, role := range Roles() {
		ok, err := AtLeast(role, role)
		require.NoError(t, err)
		assert.True(t, ok, "AtLeast(%s, %s) should hold", role, role)
	}
}

func TestAtLeastOrdering(t *testing.T) {
	ok, err := AtLeast(RoleSuperAdmin, RoleTrainee)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = AtLeast(RoleTrainee, RoleSuperAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = AtLeast(RoleHR, RoleDeptAdmin)
	require.NoError(t, err)
	assert.False(t, ok, "HR ranks below DEPT_ADMIN in the general order")
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("PROJECT_MANAGER")
	require.NoError(t, err)
	assert.Equal(t, RoleProjectManager, role)

	_, err = ParseRole("project_manager")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestApproverRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleHR, RoleDeptAdmin, RoleOrgAdmin, RoleSuperAdmin}, ApproverRoles())
	assert.False(t, IsApprover(RoleTeamLead))
	assert.True(t, IsApprover(RoleHR))
}
