// Package user provides storage operations for user accounts.
package user

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anindta/task-management-project/internal/db/models"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrUsernameEmpty is returned when a user is written without a username.
	ErrUsernameEmpty = errors.New("username cannot be empty")
	// ErrUnknownRole is returned when a user references a role that doesn't exist.
	ErrUnknownRole = errors.New("unknown role id")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Changes describes an admin update. An empty PasswordHash keeps the stored hash.
type Changes struct {
	Username     string
	Email        string
	RoleID       uint
	PasswordHash string
}

// Get retrieves a user by ID with its role.
func Get(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User
	if err := db.Preload("Role").First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &u, nil
}

// GetByUsername retrieves a user by exact username with its role.
func GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	cond := "username = ?"
	if db.Dialector != nil && db.Dialector.Name() == "mysql" {
		cond = "username = BINARY ?"
	}

	var u models.User
	if err := db.Preload("Role").Where(cond, username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &u, nil
}

// List returns all users with their roles ordered by ID.
func List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	users := []models.User{}
	if err := db.Preload("Role").Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

// Count returns the number of users.
func Count(db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var n int64
	if err := db.Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, err
	}

	return n, nil
}

// Create inserts u. The username is checked before the insert.
func Create(db *gorm.DB, u *models.User) error {
	if db == nil {
		return ErrDBNil
	}

	if u.Username == "" {
		return ErrUsernameEmpty
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := usernameFree(tx, u.Username, 0); err != nil {
			return err
		}

		if err := roleExists(tx, u.RoleID); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return translate(err)
		}

		return nil
	})
}

// Update applies c to the user with the given ID.
func Update(db *gorm.DB, id uint64, c Changes) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if c.Username == "" {
		return nil, ErrUsernameEmpty
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}

			return err
		}

		if err := usernameFree(tx, c.Username, id); err != nil {
			return err
		}

		if err := roleExists(tx, c.RoleID); err != nil {
			return err
		}

		updates := map[string]any{
			"username": c.Username,
			"email":    c.Email,
			"role_id":  c.RoleID,
		}

		if c.PasswordHash != "" {
			updates["password"] = c.PasswordHash
		}

		if err := tx.Model(&u).Updates(updates).Error; err != nil {
			return translate(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return Get(db, id)
}

// Delete removes a user. Tasks assigned to the user become unassigned.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("assigned_user_id = ?", id).
			Update("assigned_user_id", nil).Error; err != nil {
			return fmt.Errorf("failed to unassign tasks: %w", err)
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}

func usernameFree(tx *gorm.DB, username string, exceptID uint64) error {
	var count int64
	if err := tx.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}

	if count > 0 {
		return ErrUsernameTaken
	}

	return nil
}

func roleExists(tx *gorm.DB, roleID uint) error {
	var count int64
	if err := tx.Model(&models.Role{}).Where("id = ?", roleID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check role: %w", err)
	}

	if count == 0 {
		return ErrUnknownRole
	}

	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}

	return err
}
