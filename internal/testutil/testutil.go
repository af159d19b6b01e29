// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db"
	"github.com/anindta/task-management-project/internal/db/models"
)

// TokenKey is a signing key long enough to pass config validation.
const TokenKey = "test-key-test-key-test-key-test-key-test-key-test-key-0123"

// Config returns a valid config backed by in-memory sqlite with cheap argon2 params.
func Config() *config.Config {
	return &config.Config{
		DB: config.DB{GormEngine: config.EngineSQLite, Host: ":memory:"},
		Webserver: config.Webserver{
			Port:         5062,
			URL:          "http://localhost:5062",
			ShutDownTime: 1,
		},
		Token: config.Token{Key: TokenKey, Expiry: config.DefaultTokenExpiry, Issuer: "taskboard-test"},
		Password: config.Password{
			Memory:      1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

// OpenDB opens a migrated in-memory sqlite database.
// The pool is limited to one connection, every new connection would get its own empty database.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(Config())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err = db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, errDB := gdb.DB(); errDB == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}

// MustCreate inserts value or fails the test.
func MustCreate(t *testing.T, gdb *gorm.DB, value any) {
	t.Helper()

	if err := gdb.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

// Menu creates a menu with the label derived from name.
func Menu(t *testing.T, gdb *gorm.DB, name string) models.Menu {
	t.Helper()

	m := models.Menu{Name: name, Label: name + " label"}
	MustCreate(t, gdb, &m)

	return m
}

// Role creates a role granted the given menus.
func Role(t *testing.T, gdb *gorm.DB, name string, menus ...models.Menu) models.Role {
	t.Helper()

	r := models.Role{Name: name}
	MustCreate(t, gdb, &r)

	for _, m := range menus {
		MustCreate(t, gdb, &models.RoleMenu{RoleID: r.ID, MenuID: m.ID})
	}

	return r
}

// User creates a user with an opaque password hash.
func User(t *testing.T, gdb *gorm.DB, username string, roleID uint) models.User {
	t.Helper()

	u := models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "not-a-hash",
		RoleID:    roleID,
		CreatedAt: time.Now(),
	}
	MustCreate(t, gdb, &u)

	return u
}
