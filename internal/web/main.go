// Package web wires the HTTP API: middleware, handlers and graceful shutdown.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/anindta/task-management-project/internal/config"
	fiberlogger "github.com/anindta/task-management-project/internal/logger/adapter/fiber"
	"github.com/anindta/task-management-project/internal/web/handler"
	"github.com/anindta/task-management-project/internal/web/handler/admin/menu"
	"github.com/anindta/task-management-project/internal/web/handler/admin/role"
	"github.com/anindta/task-management-project/internal/web/handler/admin/user"
	"github.com/anindta/task-management-project/internal/web/handler/dashboard"
	"github.com/anindta/task-management-project/internal/web/handler/login"
	"github.com/anindta/task-management-project/internal/web/handler/project"
	"github.com/anindta/task-management-project/internal/web/handler/task"
)

const (
	// CheckAlivePath answers 200 while serving and 503 while draining.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes the prometheus registry.
	MetricsPath = "/metrics"
)

// ErrConfigNil is returned by New without a configuration.
var ErrConfigNil = errors.New("config cannot be nil")

// ErrDBNil is returned by New without a database.
var ErrDBNil = errors.New("db cannot be nil")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	auth         *handler.Auth
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM and then stops the server.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown drains and stops the server.
// Unless fast shutdown is set, checkalive fails for ShutDownTime seconds first
// so load balancers can take the instance out of rotation.
func (s *Service) Shutdown() {
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// SetFastShutDown skips the checkalive drain on shutdown.
func (s *Service) SetFastShutDown(fast bool) {
	s.fastShutDown = fast
}

// Alive reports whether checkalive answers 200.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// New creates the web service. limiterStorage backs the login limiter,
// nil keeps the counters in memory.
func New(cfg *config.Config, db *gorm.DB, limiterStorage fiber.Storage) (*Service, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if db == nil {
		return nil, ErrDBNil
	}

	a, err := handler.NewAuth(cfg, db)
	if err != nil {
		return nil, err
	}

	appName := cfg.Title
	if appName == "" {
		appName = "Taskboard"
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        appName,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			BodyLimit:      cfg.Webserver.BodyLimit,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	service := &Service{
		cfg:  cfg,
		App:  app,
		db:   db,
		auth: a,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(requestMetrics())

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	if cfg.LoginLimiter.Enabled {
		app.Use(login.LoginPath, limiter.New(limiter.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.Method() != fiber.MethodPost
			},
			Max:        cfg.LoginLimiter.Max,
			Expiration: cfg.LoginLimiter.Expiration,
			Storage:    limiterStorage,
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.NewError(fiber.StatusTooManyRequests, "Too many login attempts")
			},
		}))
	}

	// handlers register their own routes and guards
	services := []handler.Service{
		&login.Handler,
		&dashboard.Handler,
		&project.Handler,
		&task.Handler,
		&user.Handler,
		&role.Handler,
		&menu.Handler,
	}

	for _, h := range services {
		if err = h.Init(app, cfg, db, a); err != nil {
			return nil, err
		}
	}

	return service, nil
}
