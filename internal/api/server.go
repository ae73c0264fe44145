// Package api exposes the task services over HTTP.
package api

import (
	"context"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"task-tracker/internal/config"
	"task-tracker/internal/identity"
	"task-tracker/internal/services"
	"task-tracker/internal/validation"
)

// Server is the HTTP front end of the task services.
type Server struct {
	app       *fiber.App
	services  *services.ServiceContainer
	resolver  identity.Resolver
	validator *validation.TaskValidator
	paging    config.PaginationConfig
	logger    *slog.Logger
}

// New builds a server with every route registered.
func New(svc *services.ServiceContainer, resolver identity.Resolver, cfg *config.Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		services:  svc,
		resolver:  resolver,
		validator: validation.NewTaskValidatorWithValidator(validation.NewValidatorWithConfig(cfg)),
		paging:    cfg.Pagination,
		logger:    logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "task-tracker",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          s.errorHandler,
	})

	s.app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	s.app.Use(s.requestLogger)
	s.app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	tasks := s.app.Group("/api/tasks", s.identityMiddleware)

	// Registered ahead of /:id so the literal segment wins.
	tasks.Post("/recalculate_overdue/", s.recalculateOverdue)

	tasks.Get("/", s.listTasks)
	tasks.Post("/", s.createTask)
	tasks.Get("/:id/", s.getTask)
	tasks.Put("/:id/", s.updateTask(false))
	tasks.Patch("/:id/", s.updateTask(true))
	tasks.Delete("/:id/", s.deleteTask)
}

// App exposes the fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.app.ShutdownWithContext(ctx)
}
