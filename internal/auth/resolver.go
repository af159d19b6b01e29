package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/db/models"
)

// MenuEntry is one visible menu of the caller.
type MenuEntry struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Resolver computes the menus a user may see from the user's role grants.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a new resolver.
func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// MenusFor loads user, role and granted menus in one read.
// A user without a resolvable role gets an empty slice, not an error.
func (r *Resolver) MenusFor(ctx context.Context, userID uint64) ([]MenuEntry, error) {
	var u models.User

	err := r.db.WithContext(ctx).Preload("Role.Menus").First(&u, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load menus of user %d: %w", userID, err)
	}

	out := make([]MenuEntry, 0, len(u.Role.Menus))
	for _, m := range u.Role.Menus {
		out = append(out, MenuEntry{ID: m.ID, Name: m.Name, Label: m.Label})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// HasMenu checks if the user's role is granted the menu with this name.
func (r *Resolver) HasMenu(ctx context.Context, userID uint64, menuName string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).Table("menus").
		Joins("JOIN role_menus ON role_menus.menu_id = menus.id").
		Joins("JOIN users ON users.role_id = role_menus.role_id").
		Where("users.id = ? AND menus.name = ?", userID, menuName).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check menu grant: %w", err)
	}

	return count > 0, nil
}
