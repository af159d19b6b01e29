package auth

import (
	"errors"

	"github.com/anindta/task-management-project/internal/db/controller/user"
)

var (
	// ErrUsernameTaken is returned when registering a username that already exists.
	ErrUsernameTaken = user.ErrUsernameTaken

	// ErrUserNotFound is returned when a user cannot be found in the database.
	// Login keeps it distinct from ErrBadPassword.
	ErrUserNotFound = user.ErrUserNotFound

	// ErrBadPassword is returned when the provided password is incorrect during authentication.
	ErrBadPassword = errors.New("invalid password")

	// ErrValidation is returned for a registration or login payload with missing fields.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when a protected route is called without a usable token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller's role lacks the menu guarding a route.
	ErrForbidden = errors.New("forbidden")

	// ErrTokenExpired is returned for a token verified after its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidSignature is returned when the token signature doesn't match its content.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrTokenMalformed is returned for anything that doesn't parse as one of our tokens.
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenKeyTooShort is returned when the signing key is below the minimum length.
	ErrTokenKeyTooShort = errors.New("token key too short")
)

// IsTokenError reports whether err is one of the token verification failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrTokenMalformed)
}
