package models

import "time"

// DefaultRoleName is substituted when a requested role cannot be resolved.
const DefaultRoleName = "Employee"

// Role represents a role in the role-based access control (RBAC) system.
// A role sees exactly the menus it has been granted, there is no inheritance.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the unique name of the role (e.g., "Admin", "Employee").
	Name string `gorm:"unique;size:100;not null" json:"name"`
	// Menus are the granted menus, resolved through role_menus.
	Menus []Menu `gorm:"many2many:role_menus" json:"-"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the Role model.
func (Role) TableName() string {
	return "roles"
}
