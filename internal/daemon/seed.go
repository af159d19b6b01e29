package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anindta/task-management-project/internal/auth"
	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/controller/user"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/secret"
)

// Seeded role names.
const (
	RoleAdmin          = "Admin"
	RoleProjectManager = "ProjectManager"
	RoleEmployee       = models.DefaultRoleName
)

var seedMenus = []models.Menu{
	{Name: "dashboard", Label: "Dashboard", Icon: "ri-dashboard-line"},
	{Name: "projects", Label: "Projects", Icon: "ri-folder-line"},
	{Name: "tasks", Label: "Tasks", Icon: "ri-task-line"},
	{Name: "users", Label: "Users", Icon: "ri-user-line"},
	{Name: "roles", Label: "Roles", Icon: "ri-shield-user-line"},
	{Name: "menus", Label: "Menus", Icon: "ri-menu-line"},
}

var seedGrants = map[string][]string{
	RoleAdmin:          {"dashboard", "projects", "tasks", "users", "roles", "menus"},
	RoleProjectManager: {"dashboard", "projects", "tasks"},
	RoleEmployee:       {"dashboard", "tasks"},
}

// seed writes the default roles, menus, grants and the bootstrap admin.
// Existing rows are left alone so it can run on every start.
func seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if !cfg.Seed.Enabled {
		return nil
	}

	var roleIDs map[string]uint

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		menuIDs := make(map[string]uint, len(seedMenus))

		for _, m := range seedMenus {
			row := models.Menu{}
			if err := tx.Where(models.Menu{Name: m.Name}).Attrs(m).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed menu %s: %w", m.Name, err)
			}

			menuIDs[m.Name] = row.ID
		}

		roleIDs = make(map[string]uint, len(seedGrants))

		for _, name := range []string{RoleAdmin, RoleProjectManager, RoleEmployee} {
			r := models.Role{}
			if err := tx.Where(models.Role{Name: name}).FirstOrCreate(&r).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", name, err)
			}

			roleIDs[name] = r.ID

			grants := make([]models.RoleMenu, 0, len(seedGrants[name]))
			for _, menu := range seedGrants[name] {
				grants = append(grants, models.RoleMenu{RoleID: r.ID, MenuID: menuIDs[menu]})
			}

			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grants).Error; err != nil {
				return fmt.Errorf("failed to seed grants of %s: %w", name, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	return seedAdmin(ctx, cfg, db, roleIDs[RoleAdmin])
}

func seedAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB, adminRoleID uint) error {
	username := cfg.Seed.AdminUsername
	if username == "" {
		username = "admin"
	}

	_, err := user.GetByUsername(db.WithContext(ctx), username)
	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrUserNotFound) {
		return err
	}

	password := cfg.Seed.AdminPassword
	generated := password == ""

	if generated {
		if password, err = secret.New(); err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
	}

	hash, err := auth.NewHasher(cfg.Password).Hash(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: username,
		Email:    cfg.Seed.AdminEmail,
		Password: hash,
		RoleID:   adminRoleID,
	}

	if err = user.Create(db.WithContext(ctx), &admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	ev := log.Warn().Str("username", username)
	if generated {
		ev = ev.Str("password", password)
	}

	ev.Msg("bootstrap admin user created, change the password")

	return nil
}
