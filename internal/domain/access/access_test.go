package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeActor(role Role) Actor {
	return Actor{Role: role, UserID: "u-actor", DepartmentID: "d1", Active: true}
}

func TestEvaluateGateMinRole(t *testing.T) {
	gate := Gate{MinRole: RoleTeamLead}

	for _, role := range Roles() {
		dec, err := EvaluateGate(activeActor(role), gate)
		require.NoError(t, err)

		want, err := AtLeast(role, RoleTeamLead)
		require.NoError(t, err)
		assert.Equal(t, want, dec.Allowed, "role %s", role)
		if !want {
			assert.Equal(t, ReasonInsufficientRank, dec.Reason)
		}
	}
}

func TestEvaluateGateRequiredRoles(t *testing.T) {
	gate := Gate{RequiredRoles: []Role{RoleHR, RoleOrgAdmin}}

	dec, err := EvaluateGate(activeActor(RoleHR), gate)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	// Membership is exact: outranking every required role is not enough.
	dec, err = EvaluateGate(activeActor(RoleSuperAdmin), gate)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonRoleNotPermitted, dec.Reason)
}

func TestEvaluateGateOpen(t *testing.T) {
	dec, err := EvaluateGate(activeActor(RoleTrainee), Gate{})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, ReasonAllowed, dec.Reason)
}

func TestEvaluateGateInactiveActor(t *testing.T) {
	actor := Actor{Role: RoleSuperAdmin, UserID: "u1", Active: false}

	for _, gate := range []Gate{
		{},
		{MinRole: RoleTrainee},
		{RequiredRoles: []Role{RoleSuperAdmin}},
	} {
		dec, err := EvaluateGate(actor, gate)
		require.NoError(t, err)
		assert.False(t, dec.Allowed)
		assert.Equal(t, ReasonInactive, dec.Reason)
	}
}

func TestEvaluateGateAmbiguous(t *testing.T) {
	gate := Gate{RequiredRoles: []Role{RoleHR}, MinRole: RoleEmployee}
	_, err := EvaluateGate(activeActor(RoleSuperAdmin), gate)
	assert.ErrorIs(t, err, ErrAmbiguousGate)
}

func TestEvaluateGateUnknownRole(t *testing.T) {
	_, err := EvaluateGate(Actor{Role: "GHOST", Active: true}, Gate{})
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = EvaluateGate(activeActor(RoleEmployee), Gate{MinRole: "GHOST"})
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestAuthorizeSuperAdminUnconditional(t *testing.T) {
	actor := Actor{Role: RoleSuperAdmin, UserID: "sa1", Active: true}

	contexts := []RecordContext{
		{},
		{OwnerID: "other", DepartmentID: "d9", OwnerRole: RoleSuperAdmin},
		{OwnerID: "other", OwnerRole: RoleOrgAdmin},
	}
	for _, rec := range contexts {
		for _, op := range []Operation{OpEditOwn, OpManage, OpApprove} {
			dec, err := Authorize(actor, op, rec)
			require.NoError(t, err)
			assert.True(t, dec.Allowed, "op %s rec %+v", op, rec)
		}
	}
}

func TestAuthorizeOrgAdmin(t *testing.T) {
	actor := Actor{Role: RoleOrgAdmin, UserID: "oa1", DepartmentID: "d1", Active: true}

	dec, err := Authorize(actor, OpManage, RecordContext{OwnerID: "x", DepartmentID: "d9", OwnerRole: RoleSuperAdmin})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonNotAuthorized, dec.Reason)

	for _, owner := range []Role{RoleTrainee, RoleEmployee, RoleHR, RoleDeptAdmin, RoleOrgAdmin} {
		dec, err := Authorize(actor, OpManage, RecordContext{OwnerID: "x", DepartmentID: "d9", OwnerRole: owner})
		require.NoError(t, err)
		assert.True(t, dec.Allowed, "owner role %s, department should not matter", owner)
	}
}

func TestAuthorizeDeptAdminScopedToDepartment(t *testing.T) {
	actor := Actor{Role: RoleDeptAdmin, UserID: "da1", DepartmentID: "eng", Active: true}

	dec, err := Authorize(actor, OpManage, RecordContext{OwnerID: "x", DepartmentID: "sales", OwnerRole: RoleEmployee})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonNotAuthorized, dec.Reason)

	dec, err = Authorize(actor, OpManage, RecordContext{OwnerID: "x", DepartmentID: "eng", OwnerRole: RoleEmployee})
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	for _, owner := range []Role{RoleOrgAdmin, RoleSuperAdmin} {
		dec, err = Authorize(actor, OpManage, RecordContext{OwnerID: "x", DepartmentID: "eng", OwnerRole: owner})
		require.NoError(t, err)
		assert.False(t, dec.Allowed, "dept admin must not manage %s", owner)
	}
}

func TestAuthorizeSelfServiceVersusSelfApproval(t *testing.T) {
	actor := Actor{Role: RoleEmployee, UserID: "u1", DepartmentID: "d1", Active: true}
	rec := RecordContext{OwnerID: "u1", DepartmentID: "d1", OwnerRole: RoleEmployee}

	dec, err := Authorize(actor, OpEditOwn, rec)
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: true, Reason: ReasonAllowed}, dec)

	dec, err = Authorize(actor, OpApprove, rec)
	require.NoError(t, err)
	assert.Equal(t, Decision{Allowed: false, Reason: ReasonNotAuthorized}, dec)
}

func TestAuthorizeSelfApprovalDeniedForEveryRole(t *testing.T) {
	for _, role := range Roles() {
		actor := Actor{Role: role, UserID: "u1", DepartmentID: "d1", Active: true}
		rec := RecordContext{OwnerID: "u1", DepartmentID: "d1", OwnerRole: role}

		dec, err := Authorize(actor, OpApprove, rec)
		require.NoError(t, err)
		assert.False(t, dec.Allowed, "role %s approved its own record", role)
		assert.Equal(t, ReasonNotAuthorized, dec.Reason)
	}
}

func TestAuthorizeHRApprovesAcrossDepartments(t *testing.T) {
	actor := Actor{Role: RoleHR, UserID: "hr1", DepartmentID: "people", Active: true}
	rec := RecordContext{OwnerID: "u2", DepartmentID: "eng", OwnerRole: RoleEmployee}

	dec, err := Authorize(actor, OpApprove, rec)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)

	// General management of a foreign record is not part of HR's lateral
	// powers.
	dec, err = Authorize(actor, OpManage, rec)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
}

func TestAuthorizeInactiveActor(t *testing.T) {
	actor := Actor{Role: RoleSuperAdmin, UserID: "u1", Active: false}

	dec, err := Authorize(actor, OpManage, RecordContext{OwnerID: "x", OwnerRole: RoleTrainee})
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonInactive, dec.Reason)
}

func TestAuthorizePeerDenied(t *testing.T) {
	actor := Actor{Role: RoleEmployee, UserID: "u1", DepartmentID: "d1", Active: true}
	rec := RecordContext{OwnerID: "u2", DepartmentID: "d1", OwnerRole: RoleEmployee}

	for _, op := range []Operation{OpEditOwn, OpManage, OpApprove} {
		dec, err := Authorize(actor, op, rec)
		require.NoError(t, err)
		assert.False(t, dec.Allowed, "op %s", op)
	}
}

func TestAuthorizeUnknownInputs(t *testing.T) {
	actor := activeActor(RoleEmployee)

	_, err := Authorize(actor, Operation("destroy"), RecordContext{})
	assert.ErrorIs(t, err, ErrUnknownOp)

	_, err = Authorize(Actor{Role: "GHOST", Active: true}, OpManage, RecordContext{})
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = Authorize(actor, OpManage, RecordContext{OwnerRole: "GHOST"})
	assert.ErrorIs(t, err, ErrUnknownRole)
}
