// Package user provides handlers for managing users (CRUD) in admin area.
package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/controller/role"
	"github.com/anindta/task-management-project/internal/db/controller/user"
	"github.com/anindta/task-management-project/internal/db/models"
	"github.com/anindta/task-management-project/internal/web/handler"
)

// Path is the base path for user management.
const Path = handler.RootPath + "users"

type (
	// Request is the body of create and update. Password is optional on update.
	Request struct {
		Username string `json:"username" validate:"required,max=100"`
		Email    string `json:"email"    validate:"omitempty,email,max=255"`
		Password string `json:"password"`
		Role     string `json:"role"     validate:"required"`
	}

	// Response is the public view of a user.
	Response struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
)

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	cfg  *config.Config
	db   *gorm.DB
	auth *handler.Auth
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
	s.auth = a

	app.Route(Path, func(router fiber.Router) {
		router.Use(a.Token(), a.Menu(handler.MenuUsers))
		router.Get(handler.RootPath, s.List)
		router.Post(handler.RootPath, s.Create)
		router.Get(handler.IDPath, s.Get)
		router.Put(handler.IDPath, s.Update)
		router.Delete(handler.IDPath, s.Delete)
	})

	return nil
}

func toResponse(u *models.User) Response {
	return Response{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role.Name}
}

// List returns all users.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := user.List(s.db.WithContext(c.UserContext()))
	if err != nil {
		return err
	}

	out := make([]Response, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}

	return c.JSON(out)
}

// Get returns one user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	u, err := user.Get(s.db.WithContext(c.UserContext()), uint64(id))
	if err != nil {
		return err
	}

	return c.JSON(toResponse(u))
}

// Create adds a user. Unlike self-registration an unknown role is rejected.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(Request)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	if req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "password is required")
	}

	db := s.db.WithContext(c.UserContext())

	r, err := findRole(db, req.Role)
	if err != nil {
		return err
	}

	hash, err := s.auth.Hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	u := models.User{Username: req.Username, Email: req.Email, Password: hash, RoleID: r.ID}
	if err = user.Create(db, &u); err != nil {
		return err
	}

	u.Role = *r

	return c.Status(fiber.StatusCreated).JSON(toResponse(&u))
}

// Update changes a user. An empty password keeps the current one.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	req := new(Request)
	if err = handler.ParseBody(c, req); err != nil {
		return err
	}

	db := s.db.WithContext(c.UserContext())

	r, err := findRole(db, req.Role)
	if err != nil {
		return err
	}

	changes := user.Changes{Username: req.Username, Email: req.Email, RoleID: r.ID}

	if req.Password != "" {
		if changes.PasswordHash, err = s.auth.Hasher.Hash(req.Password); err != nil {
			return err
		}
	}

	u, err := user.Update(db, uint64(id), changes)
	if err != nil {
		return err
	}

	return c.JSON(toResponse(u))
}

// Delete removes a user.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c)
	if err != nil {
		return err
	}

	if err = user.Delete(s.db.WithContext(c.UserContext()), uint64(id)); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func findRole(db *gorm.DB, name string) (*models.Role, error) {
	r, err := role.FindByName(db, name)
	if errors.Is(err, role.ErrRoleNotFound) {
		return nil, user.ErrUnknownRole
	}

	return r, err
}
