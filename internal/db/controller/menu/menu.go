// Package menu provides CRUD operations for navigable menus.
package menu

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/db/models"
)

var (
	// ErrMenuNotFound is returned when a menu is not found.
	ErrMenuNotFound = errors.New("menu not found")
	// ErrMenuNameEmpty is returned when a menu is written without a name.
	ErrMenuNameEmpty = errors.New("menu name cannot be empty")
	// ErrMenuNameTaken is returned when another menu already uses the name.
	ErrMenuNameTaken = errors.New("menu name already exists")
	// ErrMenuInUse is returned when deleting a menu that is still granted to a role.
	ErrMenuInUse = errors.New("menu is granted to at least one role")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a menu by its ID.
func Get(db *gorm.DB, id uint) (*models.Menu, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var m models.Menu
	if err := db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuNotFound
		}

		return nil, err
	}

	return &m, nil
}

// List returns all menus ordered by ID.
func List(db *gorm.DB) ([]models.Menu, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	menus := []models.Menu{}
	if err := db.Order("id").Find(&menus).Error; err != nil {
		return nil, err
	}

	return menus, nil
}

// Create inserts a new menu. An empty label defaults to the name.
func Create(db *gorm.DB, in models.Menu) (*models.Menu, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	m := models.Menu{
		Name:  strings.TrimSpace(in.Name),
		Label: strings.TrimSpace(in.Label),
		Icon:  strings.TrimSpace(in.Icon),
	}

	if m.Name == "" {
		return nil, ErrMenuNameEmpty
	}

	if m.Label == "" {
		m.Label = m.Name
	}

	if err := nameFree(db, m.Name, 0); err != nil {
		return nil, err
	}

	if err := db.Create(&m).Error; err != nil {
		return nil, translate(err)
	}

	return &m, nil
}

// Update overwrites name, label and icon of an existing menu.
func Update(db *gorm.DB, id uint, in models.Menu) (*models.Menu, error) {
	m, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrMenuNameEmpty
	}

	if err = nameFree(db, name, id); err != nil {
		return nil, err
	}

	m.Name = name
	m.Label = strings.TrimSpace(in.Label)
	m.Icon = strings.TrimSpace(in.Icon)

	if m.Label == "" {
		m.Label = m.Name
	}

	if err = db.Save(m).Error; err != nil {
		return nil, translate(err)
	}

	return m, nil
}

// Delete removes a menu. It is refused while any role grant references the menu.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var grants int64
		if err := tx.Model(&models.RoleMenu{}).Where("menu_id = ?", id).Count(&grants).Error; err != nil {
			return fmt.Errorf("failed to count grants: %w", err)
		}

		if grants > 0 {
			return ErrMenuInUse
		}

		result := tx.Delete(&models.Menu{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrMenuNotFound
		}

		return nil
	})
}

// nameFree checks that no menu other than exceptID uses name.
func nameFree(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	if err := db.Model(&models.Menu{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check menu name: %w", err)
	}

	if count > 0 {
		return ErrMenuNameTaken
	}

	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrMenuNameTaken
	}

	return err
}
