// Package server exposes the resolution pipeline over HTTP.
package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/go-playground/validator/v10"

	"github.com/glovebenefits/ichracalc/internal/affordability"
	"github.com/glovebenefits/ichracalc/internal/config"
	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/engine"
	"github.com/glovebenefits/ichracalc/internal/geo"
	"github.com/glovebenefits/ichracalc/internal/logging"
	"github.com/glovebenefits/ichracalc/internal/rates"
	"github.com/glovebenefits/ichracalc/internal/store"
)

// Server bundles the fiber app with the pipeline components the
// handlers need.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	store    store.Store
	resolver *geo.Resolver
	lookup   *rates.Lookup
	afford   *affordability.Engine
	engine   *engine.Engine
	validate *validator.Validate
	log      *logging.Logger
}

// New wires the routes and returns a server ready to listen.
func New(cfg *config.Config, st store.Store, resolver *geo.Resolver, lookup *rates.Lookup, afford *affordability.Engine, eng *engine.Engine, log *logging.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		resolver: resolver,
		lookup:   lookup,
		afford:   afford,
		engine:   eng,
		validate: validator.New(),
		log:      log.With("component", "server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "ichracalc",
		ErrorHandler: s.errorHandler,
	})
	s.app.Use(recover.New())

	s.app.Get("/healthz", s.handleHealth)
	v1 := s.app.Group("/v1")
	v1.Post("/resolve", s.handleResolve)
	v1.Post("/census", s.handleCensus)
	v1.Get("/lcsp", s.handleLCSP)
	v1.Post("/compare", s.handleCompare)

	return s
}

// Listen blocks serving HTTP on the configured address.
func (s *Server) Listen() error {
	s.log.Info("listening", "addr", s.cfg.Server.Addr)
	return s.app.Listen(s.cfg.Server.Addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// errorHandler maps domain errors onto HTTP statuses: lookups that
// found nothing are 404s, bad input is a 400, everything else a 500.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	if domain.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	var ve validator.ValidationErrors
	var ce *domain.ConfigurationError
	if errors.As(err, &ve) || errors.As(err, &ce) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	s.log.Error("request failed", "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}
