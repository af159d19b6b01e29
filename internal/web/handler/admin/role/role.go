// Package role provides handlers for managing roles and their menu grants.
package role

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/controller/menu"
	"github.com/anindta/task-management-project/internal/db/controller/role"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/web/handler"
)

// Path is the base path for role management.
const Path = handler.RootPath + "roles"

type (
	// Request is the body of create and update. MenuIDs replaces the grant set.
	Request struct {
		Name    string `json:"name"    validate:"required,max=100"`
		MenuIDs []uint `json:"menuIds"`
	}

	// Response lists a role with its grants.
	Response struct {
		ID         uint     `json:"id"`
		Name       string   `json:"name"`
		MenuIDs    []uint   `json:"menuIds"`
		MenuLabels []string `json:"menuLabels"`
	}

	// MenuOption is a selectable menu of the role form.
	MenuOption struct {
		ID    uint   `json:"id"`
		Name  string `json:"name"`
		Label string `json:"label"`
	}
)

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, a *handler.Auth) error {
	if app == nil || cfg == nil || db == nil || a == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	app.Route(Path, func(router fiber.Router) {
		router.Use(a.Token(), a.Menu(handler.MenuRoles))
		router.Get(handler.RootPath, s.List)
		router.Get("/menus", s.MenuOptions)
		router.Post(handler.RootPath, s.Create)
		router.Put(handler.IDPath, s.Update)
		router.Delete(handler.IDPath, s.Delete)
	})

	return nil
}

func toResponse(r *models.Role) Response {
	out := Response{
		ID:         r.ID,
		Name:       r.Name,
		MenuIDs:    make([]uint, 0, len(r.Menus)),
		MenuLabels: make([]string, 0, len(r.Menus)),
	}

	for _, m := range r.Menus {
		out.MenuIDs = append(out.MenuIDs, m.ID)
		out.MenuLabels = append(out.MenuLabels, m.Label)
	}

	return out
}

// List returns all roles with their grants.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := role.List(s.db.WithContext(c.UserContext()))
	if err != nil {
		return err
	}

	out := make([]Response, 0, len(roles))
	for i := range roles {
		out = append(out, toResponse(&roles[i]))
	}

	return c.JSON(out)
}

// MenuOptions returns all menus that can be granted.
func (s *Service) MenuOptions(c *fiber.Ctx) error {
	menus, err := menu.List(s.db.WithContext(c.UserContext()))
	if err != nil {
		return err
	}

	out := make([]MenuOption, 0, len(menus))
	for _, m := range menus {
		out = append(out, MenuOption{ID: m.ID, Name: m.Name, Label: m.Label})
	}

	return c.JSON(out)
}

// Create adds a role with its grants.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(Request)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	r, err := role.Create(s.db.WithContext(c.UserContext()), req.Name, req.MenuIDs)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(toResponse(r))
}

// Update renames a role and replaces its grants.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	req := new(Request)
	if err = handler.ParseBody(c, req); err != nil {
		return err
	}

	r, err := role.Update(s.db.WithContext(c.UserContext()), id, req.Name, req.MenuIDs)
	if err != nil {
		return err
	}

	return c.JSON(toResponse(r))
}

// Delete removes a role that no user references.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	if err = role.Delete(s.db.WithContext(c.UserContext()), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
