// Package db opens the configured gorm database and migrates the schema.
package db

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/dsn"
	"github.com/anindta/task-management-project/internal/db/models"
	gormadapter "github.com/anindta/task-management-project/internal/logger/adapter/gorm"
)

// ErrUnknownEngine is returned for a gorm engine without a dialector.
var ErrUnknownEngine = errors.New("unknown gorm engine")

const (
	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute
)

// Dialector returns the gorm dialector for the configured engine.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL, "":
		return gormmysql.Open(dsn.Create(cfg)), nil
	case config.EnginePostgres:
		return postgres.Open(dsn.Postgres(cfg)), nil
	case config.EngineSQLite:
		name := cfg.DB.Host
		if cfg.DB.Extras != "" {
			name += "?" + cfg.DB.Extras
		}

		return sqlite.Open(name), nil
	default:
		return nil, errors.Wrap(ErrUnknownEngine, cfg.DB.GormEngine)
	}
}

// Open connects to the configured database. Queries are logged through zerolog,
// with full traces only in dev mode.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if cfg.DevMode || zerolog.GlobalLevel() <= zerolog.DebugLevel {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormadapter.New(nil, level),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}

	if cfg.DB.GormEngine == config.EngineSQLite {
		// sqlite serializes writers, a single connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
	}

	return db, nil
}

// Migrate registers the role_menus join model and migrates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Role{}, "Menus", &models.RoleMenu{}); err != nil {
		return fmt.Errorf("failed to setup role_menus join table: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Role{},
		&models.Menu{},
		&models.RoleMenu{},
		&models.User{},
		&models.Project{},
		&models.Task{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
