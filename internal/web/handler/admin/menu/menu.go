// Package menu provides handlers for managing menus.
package menu

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/controller/menu"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/web/handler"
)

// Path is the base path for menu management.
const Path = handler.RootPath + "menus"

// Request is the body of create and update.
type Request struct {
	Name  string `json:"name"  validate:"required,max=100"`
	Label string `json:"label" validate:"max=100"`
	Icon  string `json:"icon"  validate:"max=100"`
}

func (r *Request) model() models.Menu {
	return models.Menu{Name: r.Name, Label: r.Label, Icon: r.Icon}
}

// Service provides CRUD operations for menus.
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
		router.Use(a.Token(), a.Menu(handler.MenuMenus))
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Get(handler.IDPath, s.Get)
		router.Put(handler.IDPath, s.Update)
		router.Delete(handler.IDPath, s.Delete)
	})

	return nil
}

// List returns all menus.
func (s *Service) List(c *fiber.Ctx) error {
	menus, err := menu.List(s.db.WithContext(c.UserContext()))
	if err != nil {
		return err
	}

	return c.JSON(menus)
}

// Get returns one menu.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	m, err := menu.Get(s.db.WithContext(c.UserContext()), id)
	if err != nil {
		return err
	}

	return c.JSON(m)
}

// Create adds a menu.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(Request)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	m, err := menu.Create(s.db.WithContext(c.UserContext()), req.model())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(m)
}

// Update changes a menu.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	req := new(Request)
	if err = handler.ParseBody(c, req); err != nil {
		return err
	}

	m, err := menu.Update(s.db.WithContext(c.UserContext()), id, req.model())
	if err != nil {
		return err
	}

	return c.JSON(m)
}

// Delete removes a menu that no role is granted.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	if err = menu.Delete(s.db.WithContext(c.UserContext()), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
