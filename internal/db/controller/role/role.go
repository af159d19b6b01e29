// Package role provides storage operations for roles and their menu grants.
package role

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/db/models"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when a role is written without a name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleNameTaken is returned when another role already uses the name.
	ErrRoleNameTaken = errors.New("role name already exists")
	// ErrRoleInUse is returned when deleting a role that is assigned to a user.
	ErrRoleInUse = errors.New("role is assigned to at least one user")
	// ErrUnknownMenu is returned when a grant references a menu that doesn't exist.
	ErrUnknownMenu = errors.New("unknown menu id")
	// ErrGrantExists is returned when the (role, menu) pair is already granted.
	ErrGrantExists = errors.New("menu is already granted to role")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

const whereRoleID = "role_id = ?"

// FindByName returns the role with exactly this name. The match is case-sensitive.
func FindByName(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role
	// BINARY keeps mysql's default collation from matching case-insensitively
	q := db.Where("name = ?", name)
	if db.Dialector != nil && db.Dialector.Name() == "mysql" {
		q = db.Where("name = BINARY ?", name)
	}

	if err := q.First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, err
	}

	return &r, nil
}

// Get retrieves a role by ID with its granted menus.
func Get(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var r models.Role
	if err := db.Preload("Menus", orderMenus).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}

		return nil, err
	}

	return &r, nil
}

// List returns all roles with their granted menus.
func List(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	roles := []models.Role{}
	if err := db.Preload("Menus", orderMenus).Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

// MenusFor returns the menus granted to a role. A role without grants yields an empty slice.
func MenusFor(db *gorm.DB, roleID uint) ([]models.Menu, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	menus := []models.Menu{}

	err := db.Model(&models.Menu{}).
		Joins("JOIN role_menus ON role_menus.menu_id = menus.id").
		Where("role_menus.role_id = ?", roleID).
		Order("menus.id").
		Find(&menus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load menus of role %d: %w", roleID, err)
	}

	return menus, nil
}

// Create inserts a role and its grant set in one transaction.
func Create(db *gorm.DB, name string, menuIDs []uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	r := models.Role{Name: name}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := nameFree(tx, name, 0); err != nil {
			return err
		}

		if err := tx.Create(&r).Error; err != nil {
			return translate(err)
		}

		return replaceGrants(tx, r.ID, menuIDs)
	})
	if err != nil {
		return nil, err
	}

	return Get(db, r.ID)
}

// Update renames a role and replaces its grant set with exactly menuIDs.
// Readers never observe a partially replaced grant set.
func Update(db *gorm.DB, id uint, name string, menuIDs []uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var r models.Role
		if err := tx.First(&r, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}

			return err
		}

		if err := nameFree(tx, name, id); err != nil {
			return err
		}

		if err := tx.Model(&r).Update("name", name).Error; err != nil {
			return translate(err)
		}

		return replaceGrants(tx, id, menuIDs)
	})
	if err != nil {
		return nil, err
	}

	return Get(db, id)
}

// Grant adds a single (role, menu) grant.
func Grant(db *gorm.DB, roleID, menuID uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Role{}, roleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoleNotFound
			}

			return err
		}

		if err := menusExist(tx, []uint{menuID}); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.RoleMenu{}).
			Where("role_id = ? AND menu_id = ?", roleID, menuID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check grant: %w", err)
		}

		if count > 0 {
			return ErrGrantExists
		}

		if err := tx.Create(&models.RoleMenu{RoleID: roleID, MenuID: menuID}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrGrantExists
			}

			return err
		}

		return nil
	})
}

// Delete removes a role together with its grants.
// It is refused while any user references the role, grants alone don't block.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Where(whereRoleID, id).Count(&users).Error; err != nil {
			return fmt.Errorf("failed to count users of role: %w", err)
		}

		if users > 0 {
			return ErrRoleInUse
		}

		if err := tx.Where(whereRoleID, id).Delete(&models.RoleMenu{}).Error; err != nil {
			return fmt.Errorf("failed to delete grants: %w", err)
		}

		result := tx.Delete(&models.Role{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrRoleNotFound
		}

		return nil
	})
}

// replaceGrants sets the grant set of roleID to menuIDs. Must run inside a transaction.
func replaceGrants(tx *gorm.DB, roleID uint, menuIDs []uint) error {
	ids := dedupe(menuIDs)

	if err := menusExist(tx, ids); err != nil {
		return err
	}

	if err := tx.Where(whereRoleID, roleID).Delete(&models.RoleMenu{}).Error; err != nil {
		return fmt.Errorf("failed to clear grants: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	grants := make([]models.RoleMenu, 0, len(ids))
	for _, id := range ids {
		grants = append(grants, models.RoleMenu{RoleID: roleID, MenuID: id})
	}

	if err := tx.Create(&grants).Error; err != nil {
		return fmt.Errorf("failed to write grants: %w", err)
	}

	return nil
}

func menusExist(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Menu{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check menus: %w", err)
	}

	if count != int64(len(ids)) {
		return ErrUnknownMenu
	}

	return nil
}

func nameFree(tx *gorm.DB, name string, exceptID uint) error {
	var count int64
	if err := tx.Model(&models.Role{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check role name: %w", err)
	}

	if count > 0 {
		return ErrRoleNameTaken
	}

	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrRoleNameTaken
	}

	return err
}

func dedupe(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)

	return slices.Compact(out)
}

func orderMenus(db *gorm.DB) *gorm.DB {
	return db.Order("menus.id")
}
