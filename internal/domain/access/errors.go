package access

import "errors"

// Configuration errors. These signal a caller bug (bad gate definition, role
// string outside the fixed set) and are returned as Go errors, never as deny
// decisions.
var (
	ErrUnknownRole   = errors.New("access: unknown role")
	ErrAmbiguousGate = errors.New("access: gate defines both requiredRoles and minRole")
	ErrUnknownOp     = errors.New("access: unknown operation")
)
