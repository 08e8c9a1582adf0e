package model

import (
	"time"

	"expenseflow/internal/authz"
)

// User represents an authenticated user in the system.
type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Name           string     `json:"name" gorm:"size:255;not null"`
	Email          string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash   string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role           authz.Role `json:"role" gorm:"type:varchar(20);not null;default:'Pending';index"`
	CompanyID      uint       `json:"company_id" gorm:"not null;index"`
	ManagerID      *uint      `json:"manager_id,omitempty" gorm:"index"`
	AssignedBy     *uint      `json:"assigned_by,omitempty"`
	RoleAssignedAt *time.Time `json:"role_assigned_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Company Company `json:"-" gorm:"foreignKey:CompanyID"`
	Manager *User   `json:"manager,omitempty" gorm:"foreignKey:ManagerID"`
}

// Authz converts the user into an authorization actor.
func (u *User) Authz() authz.Actor {
	return authz.Actor{ID: u.ID, Role: u.Role}
}

// AsTarget converts the user into an authorization target for user-directory actions.
func (u *User) AsTarget() authz.Target {
	return authz.Target{OwnerID: u.ID, OwnerManagerID: u.ManagerID}
}
