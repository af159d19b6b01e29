// Package login provides registration, login and the caller's menu set.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/auth"
	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/web/handler"
)

const (
	// Path is the base path of the auth routes.
	Path = handler.RootPath + "auth"

	// LoginPath is the login route, rate limited by the web service.
	LoginPath = Path + "/login"

	msgRegistered = "Registration successful"
)

type (
	// RegisterRequest is the body of POST /auth/register.
	RegisterRequest struct {
		Username string `json:"username" validate:"required,max=100"`
		Email    string `json:"email"    validate:"omitempty,email,max=255"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role"`
	}

	// Request is the body of POST /auth/login.
	Request struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	// Response is returned by a successful login.
	Response struct {
		Token  string `json:"token"`
		Role   string `json:"role"`
		UserID uint64 `json:"userId"`
	}
)

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg  *config.Config
	db   *gorm.DB
	auth *handler.Auth
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, a *handler.Auth) error {
	if app == nil || cfg == nil || db == nil || a == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.auth = a

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Post("/register", s.Register)
		router.Post("/login", s.Login)
		router.Get("/my-menus", a.Token(), s.MyMenus)
	})

	return nil
}

// Register handles self-registration.
func (s *Service) Register(c *fiber.Ctx) error {
	req := new(RegisterRequest)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	_, err := s.auth.Store.Register(c.UserContext(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": msgRegistered})
}

// Login verifies the credentials and issues a token.
// Unknown user and wrong password are answered with different reasons.
func (s *Service) Login(c *fiber.Ctx) error {
	req := new(Request)
	if err := handler.ParseBody(c, req); err != nil {
		return err
	}

	id, err := s.auth.Store.VerifyLogin(c.UserContext(), req.Username, req.Password)

	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return fiber.NewError(fiber.StatusBadRequest, "User not found")
	case errors.Is(err, auth.ErrBadPassword):
		return fiber.NewError(fiber.StatusBadRequest, "Wrong password")
	case err != nil:
		return err
	}

	token, err := s.auth.Tokens.Issue(*id)
	if err != nil {
		return err
	}

	log.Info().Uint64("user_id", id.UserID).Str("role", id.RoleName).Msg("user logged in")

	return c.JSON(Response{Token: token, Role: id.RoleName, UserID: id.UserID})
}

// MyMenus returns the menus granted to the caller's role.
func (s *Service) MyMenus(c *fiber.Ctx) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return auth.ErrUnauthorized
	}

	menus, err := s.auth.Resolver.MenusFor(c.UserContext(), userID)
	if errors.Is(err, auth.ErrUserNotFound) {
		// the token outlived its user
		return auth.ErrUnauthorized
	}

	if err != nil {
		return err
	}

	return c.JSON(menus)
}
