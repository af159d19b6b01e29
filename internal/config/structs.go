package config

import (
	"time"

	"github.com/anindta/task-management-project/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode      bool // enable dev mode for development
	DB           DB
	Log          logger.Log
	Title        string
	Webserver    Webserver
	Token        Token
	Password     Password
	Seed         Seed
	LoginLimiter LoginLimiter
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	BodyLimit      int    // max request body size in bytes, 0 keeps the fiber default
}

// Token holds the session token signing settings.
type Token struct {
	Key    string        // HMAC signing key, at least MinTokenKeyLen bytes
	Expiry time.Duration // absolute token lifetime
	Issuer string
}

// Password holds the argon2id parameters used for new password hashes.
type Password struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Seed controls the initial data written on an empty database.
type Seed struct {
	Enabled       bool
	AdminUsername string
	AdminEmail    string
	AdminPassword string // generated and logged once when empty
}

// LoginLimiter throttles POST /auth/login per client IP.
type LoginLimiter struct {
	Enabled    bool
	Max        int
	Expiration time.Duration
}
