package models

// Menu is a navigable area of the application. Name is the machine key
// used for gating, Label is the display text.
type Menu struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"unique;size:100;not null" json:"name"`
	Label string `gorm:"size:100;not null" json:"label"`
	Icon  string `gorm:"size:100" json:"icon,omitempty"`
}

// TableName specifies the database table name for the Menu model.
func (Menu) TableName() string {
	return "menus"
}
