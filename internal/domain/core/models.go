package core

import (
	"time"

	"teamdesk/internal/domain/access"
)

type User struct {
	ID           string      `json:"id"`
	TenantID     string      `json:"tenantId"`
	Email        string      `json:"email"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Role         access.Role `json:"role"`
	DepartmentID string      `json:"departmentId,omitempty"`
	Active       bool        `json:"isActive"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// RecordContext describes a user row as an authorization target.
func (u User) RecordContext() access.RecordContext {
	return access.RecordContext{
		OwnerID:      u.ID,
		DepartmentID: u.DepartmentID,
		OwnerRole:    u.Role,
	}
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ManagerID string    `json:"managerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
