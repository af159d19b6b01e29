package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/auth"
	"github.com/anindta/task-management-project/internal/config"
)

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, cfg *config.Config, db *gorm.DB, a *Auth) error
}

// Auth bundles the auth components the handlers use.
type Auth struct {
	Store    *auth.Store
	Hasher   *auth.Hasher
	Tokens   *auth.TokenService
	Resolver *auth.Resolver
}

// NewAuth wires the auth components for cfg.
func NewAuth(cfg *config.Config, db *gorm.DB) (*Auth, error) {
	tokens, err := auth.NewTokenService(cfg.Token)
	if err != nil {
		return nil, err
	}

	hasher := auth.NewHasher(cfg.Password)

	return &Auth{
		Store:    auth.NewStore(db, hasher),
		Hasher:   hasher,
		Tokens:   tokens,
		Resolver: auth.NewResolver(db),
	}, nil
}

// Token requires a valid bearer token.
func (a *Auth) Token() fiber.Handler {
	return auth.RequireToken(a.Tokens)
}

// Menu requires a menu grant on the caller's role.
func (a *Auth) Menu(name string) fiber.Handler {
	return auth.RequireMenu(a.Resolver, name)
}
