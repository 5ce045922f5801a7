// Package access is the single authoritative implementation of the
// application's permission model. Both route gating and record-level
// authorization go through it; handlers never hand-roll role checks.
//
// Every evaluation is a pure function of its arguments and the fixed role
// order, so calls are safe from any goroutine without locking.
package access

// Actor is the authenticated identity a decision is made for. It is built
// from session claims at the start of a request and never outlives it.
type Actor struct {
	Role         Role
	UserID       string
	DepartmentID string
	Active       bool
}

// Gate is a declarative permission requirement attached to a route or a
// navigation item. Exactly one of RequiredRoles and MinRole may be set; a
// gate with neither is open to all active authenticated actors.
type Gate struct {
	RequiredRoles []Role
	MinRole       Role
}

// RecordContext carries the minimal ownership facts about a target record.
// Zero-value fields mean "not applicable" (e.g. a record with no owner).
type RecordContext struct {
	OwnerID      string
	DepartmentID string
	OwnerRole    Role
}

// Operation distinguishes what the actor wants to do to the record. Ownership
// alone never grants approval rights, so "edit own" and "approve" are
// separate operations.
type Operation string

const (
	// OpEditOwn covers self-service mutation of a record the actor owns,
	// such as editing a pending leave request or draft expense.
	OpEditOwn Operation = "edit_own"
	// OpManage covers administrative mutation of someone else's record.
	OpManage Operation = "manage"
	// OpApprove covers approval-type state changes (approve, reject,
	// reimburse).
	OpApprove Operation = "approve"
)

// Reason diagnoses a decision. Callers branch only on Decision.Allowed; the
// reason is for logs and support tooling.
type Reason string

const (
	ReasonAllowed          Reason = "Allowed"
	ReasonInactive         Reason = "Inactive"
	ReasonRoleNotPermitted Reason = "RoleNotPermitted"
	ReasonInsufficientRank Reason = "InsufficientRank"
	ReasonNotAuthorized    Reason = "NotAuthorized"
)

// Decision is the result of a single evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision {
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

func deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// EvaluateGate decides whether actor may pass gate. Rule order, first match
// wins: inactive actors are denied; an exact role set is checked before a
// minimum rank; a gate with no constraint admits every active actor. A gate
// carrying both constraints is a configuration bug and fails with
// ErrAmbiguousGate.
func EvaluateGate(actor Actor, gate Gate) (Decision, error) {
	if len(gate.RequiredRoles) > 0 && gate.MinRole != "" {
		return Decision{}, ErrAmbiguousGate
	}
	if _, err := RankOf(actor.Role); err != nil {
		return Decision{}, err
	}

	if !actor.Active {
		return deny(ReasonInactive), nil
	}

	if len(gate.RequiredRoles) > 0 {
		for _, r := range gate.RequiredRoles {
			if _, err := RankOf(r); err != nil {
				return Decision{}, err
			}
			if actor.Role == r {
				return allow(), nil
			}
		}
		return deny(ReasonRoleNotPermitted), nil
	}

	if gate.MinRole != "" {
		ok, err := AtLeast(actor.Role, gate.MinRole)
		if err != nil {
			return Decision{}, err
		}
		if !ok {
			return deny(ReasonInsufficientRank), nil
		}
		return allow(), nil
	}

	return allow(), nil
}

// Authorize decides whether actor may perform op on the record described by
// rec. Rule order, first match wins:
//
//  1. inactive actors are denied
//  2. SUPER_ADMIN may do anything
//  3. ORG_ADMIN may manage any record not owned by a SUPER_ADMIN
//  4. DEPT_ADMIN may manage records in their own department whose owner is
//     below ORG_ADMIN
//  5. owners may edit their own records, but never approve them; approval
//     needs an approver role and a record the actor does not own
func Authorize(actor Actor, op Operation, rec RecordContext) (Decision, error) {
	switch op {
	case OpEditOwn, OpManage, OpApprove:
	default:
		return Decision{}, ErrUnknownOp
	}
	if _, err := RankOf(actor.Role); err != nil {
		return Decision{}, err
	}
	if rec.OwnerRole != "" {
		if _, err := RankOf(rec.OwnerRole); err != nil {
			return Decision{}, err
		}
	}

	if !actor.Active {
		return deny(ReasonInactive), nil
	}

	selfOwned := rec.OwnerID != "" && rec.OwnerID == actor.UserID

	// Self-approval is rejected before any role shortcut so that even a
	// SUPER_ADMIN cannot approve their own record.
	if op == OpApprove && selfOwned {
		return deny(ReasonNotAuthorized), nil
	}

	if actor.Role == RoleSuperAdmin {
		return allow(), nil
	}

	if actor.Role == RoleOrgAdmin && rec.OwnerRole != RoleSuperAdmin {
		return allow(), nil
	}

	if actor.Role == RoleDeptAdmin {
		sameDept := rec.DepartmentID != "" && rec.DepartmentID == actor.DepartmentID
		ownerBelowOrgAdmin := rec.OwnerRole != RoleSuperAdmin && rec.OwnerRole != RoleOrgAdmin
		if sameDept && ownerBelowOrgAdmin {
			return allow(), nil
		}
	}

	// HR approves laterally across departments despite ranking below
	// DEPT_ADMIN; the other approver roles were handled above.
	if op == OpApprove && actor.Role == RoleHR {
		return allow(), nil
	}

	if op == OpEditOwn && selfOwned {
		return allow(), nil
	}

	return deny(ReasonNotAuthorized), nil
}
