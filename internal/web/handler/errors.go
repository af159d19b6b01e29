package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/anindta/task-management-project/internal/auth"
	"github.com/anindta/task-management-project/internal/db/controller/menu"
	"github.com/anindta/task-management-project/internal/db/controller/project"
	"github.com/anindta/task-management-project/internal/db/controller/role"
	"github.com/anindta/task-management-project/internal/db/controller/task"
	"github.com/anindta/task-management-project/internal/db/controller/user"
)

var badRequest = []error{
	auth.ErrValidation,
	auth.ErrUsernameTaken,
	auth.ErrBadPassword,
	role.ErrRoleInUse,
	role.ErrRoleNameEmpty,
	role.ErrRoleNameTaken,
	role.ErrUnknownMenu,
	role.ErrGrantExists,
	menu.ErrMenuInUse,
	menu.ErrMenuNameEmpty,
	menu.ErrMenuNameTaken,
	user.ErrUsernameEmpty,
	user.ErrUnknownRole,
	project.ErrProjectNameEmpty,
	task.ErrTaskTitleEmpty,
	task.ErrInvalidStatus,
	task.ErrUnknownProject,
	task.ErrUnknownUser,
}

var notFound = []error{
	user.ErrUserNotFound,
	role.ErrRoleNotFound,
	menu.ErrMenuNotFound,
	project.ErrProjectNotFound,
	task.ErrTaskNotFound,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// StatusOf maps an error returned by a handler to its HTTP status.
func StatusOf(err error) int {
	var fe *fiber.Error

	switch {
	case errors.As(err, &fe):
		return fe.Code
	case isAny(err, badRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthorized), auth.IsTokenError(err):
		return fiber.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return fiber.StatusForbidden
	case isAny(err, notFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler answers handler errors with a plain text reason.
// Internal errors are logged and their details are not sent to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusOf(err)

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")

		return c.Status(code).SendString(fiber.ErrInternalServerError.Message)
	}

	return c.Status(code).SendString(err.Error())
}
