package models

// RoleMenu represents the many-to-many relationship between roles and menus.
// The composite primary key keeps a (role, menu) pair unique.
// It is registered as the join table of Role.Menus.
type RoleMenu struct {
	// RoleID is the ID of the role in this grant.
	RoleID uint `gorm:"primaryKey;column:role_id;autoIncrement:false"`
	// MenuID is the ID of the menu in this grant.
	MenuID uint `gorm:"primaryKey;column:menu_id;autoIncrement:false"`
}

// TableName specifies the database table name for the RoleMenu model.
func (RoleMenu) TableName() string {
	return "role_menus"
}
