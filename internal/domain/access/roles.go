package access

import "fmt"

// Role is one of the fixed, totally ordered trust levels. The zero value is
// not a valid role.
type Role string

const (
	RoleTrainee        Role = "TRAINEE"
	RoleIntern         Role = "INTERN"
	RoleContractor     Role = "CONTRACTOR"
	RoleEmployee       Role = "EMPLOYEE"
	RoleTeamLead       Role = "TEAM_LEAD"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleHR             Role = "HR"
	RoleDeptAdmin      Role = "DEPT_ADMIN"
	RoleOrgAdmin       Role = "ORG_ADMIN"
	RoleSuperAdmin     Role = "SUPER_ADMIN"
)

// roleOrder fixes the total trust order, lowest first. HR sits below
// DEPT_ADMIN in general rank; its lateral HR-domain powers are granted through
// the approver set, not through rank.
var roleOrder = []Role{
	RoleTrainee,
	RoleIntern,
	RoleContractor,
	RoleEmployee,
	RoleTeamLead,
	RoleProjectManager,
	RoleHR,
	RoleDeptAdmin,
	RoleOrgAdmin,
	RoleSuperAdmin,
}

var roleRanks = func() map[Role]int {
	ranks := make(map[Role]int, len(roleOrder))
	for i, r := range roleOrder {
		ranks[r] = i
	}
	return ranks
}()

// approverRoles may approve records they do not own (leave, expenses, user
// changes). Self-approval is still rejected in Authorize.
var approverRoles = map[Role]bool{
	RoleHR:         true,
	RoleDeptAdmin:  true,
	RoleOrgAdmin:   true,
	RoleSuperAdmin: true,
}

// Roles returns the full role set in ascending trust order.
func Roles() []Role {
	out := make([]Role, len(roleOrder))
	copy(out, roleOrder)
	return out
}

// RankOf returns the fixed index of role in the trust order, 0 being the
// lowest. Unknown roles return ErrUnknownRole.
func RankOf(role Role) (int, error) {
	rank, ok := roleRanks[role]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return rank, nil
}

// AtLeast reports whether role ranks at or above min.
func AtLeast(role, min Role) (bool, error) {
	roleRank, err := RankOf(role)
	if err != nil {
		return false, err
	}
	minRank, err := RankOf(min)
	if err != nil {
		return false, err
	}
	return roleRank >= minRank, nil
}

// ParseRole validates a raw role string, typically read from a JWT claim or a
// request payload.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if _, ok := roleRanks[role]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
	return role, nil
}

// IsApprover reports whether role belongs to the approver set.
func IsApprover(role Role) bool {
	return approverRoles[role]
}

// ApproverRoles returns the approver set in ascending trust order, for use in
// exact-membership gates on approval routes.
func ApproverRoles() []Role {
	out := make([]Role, 0, len(approverRoles))
	for _, r := range roleOrder {
		if approverRoles[r] {
			out = append(out, r)
		}
	}
	return out
}
