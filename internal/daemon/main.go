// Package daemon wires configuration, database and web service together.
package daemon

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	limitermysql "github.com/gofiber/storage/mysql/v2"
	limiterpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db"
	"github.com/anindta/task-management-project/internal/db/dsn"
	"github.com/anindta/task-management-project/internal/web"
)

const limiterTable = "login_limiter"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	webService *web.Service
}

// Start serves on the configured port until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
}

// DB returns the daemon's database handle.
func (d *Daemon) DB() *gorm.DB {
	return d.db
}

// New opens and migrates the database, seeds it and builds the web service.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, web.ErrConfigNil
	}

	gdb, err := Prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := web.New(cfg, gdb, limiterStorage(cfg))
	if err != nil {
		return nil, err
	}

	return &Daemon{cfg: cfg, db: gdb, webService: svc}, nil
}

// Prepare opens the database, migrates the schema and writes the seed data.
func Prepare(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err = db.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err = seed(ctx, cfg, gdb); err != nil {
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return gdb, nil
}

// limiterStorage shares the login limiter counters between instances through
// the database. SQLite keeps them in memory.
func limiterStorage(cfg *config.Config) fiber.Storage {
	if !cfg.LoginLimiter.Enabled {
		return nil
	}

	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return limitermysql.New(limitermysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         limiterTable,
		})
	case config.EnginePostgres:
		return limiterpostgres.New(limiterpostgres.Config{
			ConnectionURI: dsn.Postgres(cfg),
			Table:         limiterTable,
		})
	default:
		log.Info().Str("engine", cfg.DB.GormEngine).Msg("login limiter uses in-memory storage")

		return nil
	}
}
