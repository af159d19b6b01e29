// Package project provides handlers for projects.
package project

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/controller/project"
	"github.com/anindta/task-management-project/internal/web/handler"
)

// Path is the base path for projects.
const Path = handler.RootPath + "projects"

// Request is the body of create and update.
type Request struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// Service provides CRUD operations for projects.
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
		router.Use(a.Token())
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Get(handler.IDPath, s.Get)
		router.Put(handler.IDPath, s.Update)
		router.Delete(handler.IDPath, s.Delete)
	})

	return nil
}

// List returns all projects.
func (s *Service) List(c *fiber.Ctx) error {
	projects, err := project.List(s.db.WithContext(c.UserContext()))
	if err != nil {
		return err
	}

	return c.JSON(projects)
}

// Get returns one project.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	p, err := project.Get(s.db.WithContext(c.UserContext()), id)
	if err != nil {
		return err
	}

	return c.JSON(p)
}

// Create adds a project.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(Request)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	p, err := project.Create(s.db.WithContext(c.UserContext()), req.Name, req.Description)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(p)
}

// Update changes a project.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	req := new(Request)
	if err = handler.ParseBody(c, req); err != nil {
		return err
	}

	p, err := project.Update(s.db.WithContext(c.UserContext()), id, req.Name, req.Description)
	if err != nil {
		return err
	}

	return c.JSON(p)
}

// Delete removes a project with its tasks.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	if err = project.Delete(s.db.WithContext(c.UserContext()), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
