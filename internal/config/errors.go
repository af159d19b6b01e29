package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrTokenKeyTooShort is returned when token.key is shorter than MinTokenKeyLen bytes.
	ErrTokenKeyTooShort = errors.New("toml config token.key must be at least 32 bytes")

	// ErrUnknownGormEngine is returned for a db.gormEngine other than mysql, postgres or sqlite.
	ErrUnknownGormEngine = errors.New("toml config db.gormEngine is not supported")
)
