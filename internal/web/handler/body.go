package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/anindta/task-management-project/internal/auth"
)

var validate = validator.New()

// ParseBody decodes the request body into out and validates its struct tags.
func ParseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: %s", auth.ErrValidation, err.Error())
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %s", auth.ErrValidation, describe(err))
	}

	return nil
}

// ParseID reads the :id route parameter.
func ParseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", auth.ErrValidation, c.Params("id"))
	}

	return uint(id), nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the type itself
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}

		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}

	return strings.Join(parts, ", ")
}
