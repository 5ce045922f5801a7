// Package navigation defines the application's menu surface and filters it
// per actor through the access evaluator, so the SPA never renders an item
// the backend would refuse.
package navigation

import "teamdesk/internal/domain/access"

type Item struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`

	gate access.Gate
}

// items is the full menu in display order. Gates mirror the route-level
// gates in the HTTP layer; a mismatch between the two is a bug.
var items = []Item{
	{Key: "dashboard", Label: "Dashboard", Path: "/"},
	{Key: "tasks", Label: "My Tasks", Path: "/tasks"},
	{Key: "attendance", Label: "Attendance", Path: "/attendance"},
	{Key: "leave", Label: "Leave", Path: "/leave"},
	{Key: "expenses", Label: "Expenses", Path: "/expenses"},
	{Key: "projects", Label: "Projects", Path: "/projects", gate: access.Gate{MinRole: access.RoleTeamLead}},
	{Key: "team", Label: "Team", Path: "/team", gate: access.Gate{MinRole: access.RoleTeamLead}},
	{Key: "approvals", Label: "Approvals", Path: "/approvals", gate: access.Gate{RequiredRoles: access.ApproverRoles()}},
	{Key: "people", Label: "People", Path: "/people", gate: access.Gate{RequiredRoles: []access.Role{access.RoleHR, access.RoleDeptAdmin, access.RoleOrgAdmin, access.RoleSuperAdmin}}},
	{Key: "departments", Label: "Departments", Path: "/departments", gate: access.Gate{MinRole: access.RoleDeptAdmin}},
	{Key: "audit", Label: "Audit Log", Path: "/audit", gate: access.Gate{MinRole: access.RoleOrgAdmin}},
	{Key: "settings", Label: "Settings", Path: "/settings", gate: access.Gate{RequiredRoles: []access.Role{access.RoleOrgAdmin, access.RoleSuperAdmin}}},
}

// Visible returns the menu items the actor may see, in display order.
func Visible(actor access.Actor) ([]Item, error) {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		dec, err := access.EvaluateGate(actor, item.gate)
		if err != nil {
			return nil, err
		}
		if dec.Allowed {
			out = append(out, item)
		}
	}
	return out, nil
}
