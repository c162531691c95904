// Package api exposes the product operations over HTTP with Fiber.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/inventory-service/modules/inventory"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// CORS settings applied to every route.
const (
	corsMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsHeaders = "Content-Type"
)

// Config holds the HTTP settings.
type Config struct {
	Port        int
	CORSOrigins []string
	// AccessLog enables the per-request log line.
	AccessLog bool
}

// Module is the driving adapter that serves the REST API.
type Module struct {
	app      *fiber.App
	cfg      Config
	products inventory.ProductPort
	checks   map[string]HealthChecker
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// Option configures a Module.
type Option func(*Module)

// WithProductPort uses port instead of the adapter built from the
// inventory service container.
func WithProductPort(port inventory.ProductPort) Option {
	return func(m *Module) { m.products = port }
}

// WithHealthCheck adds a named check to GET /health.
func WithHealthCheck(name string, check HealthChecker) Option {
	return func(m *Module) { m.checks[name] = check }
}

// NewModule creates a new API module.
func NewModule(cfg Config, logger types.Logger, opts ...Option) *Module {
	m := &Module{
		cfg:    cfg,
		checks: make(map[string]HealthChecker),
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"inventory"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "inventory":
		if m.products == nil {
			m.products = inventory.NewProductAdapter(container)
		}
	}
}

// Start builds the Fiber app and serves it in the background.
func (m *Module) Start(_ context.Context) error {
	if m.products == nil {
		return errors.New("inventory dependency not set")
	}

	m.app = NewApp(m.cfg, NewHandlers(m.products, m.checks, m.logger), m.logger)

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", addr, "cors", strings.Join(m.cfg.CORSOrigins, ","))
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// NewApp builds the Fiber app with middleware and routes.
func NewApp(cfg Config, h *Handlers, logger types.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Inventory Service",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowMethods: corsMethods,
		AllowHeaders: corsHeaders,
	}))

	app.Get("/health", h.HealthCheck)

	products := app.Group("/products")
	products.Get("/", h.ListProducts)
	products.Post("/", h.CreateProduct)
	products.Put("/:id", h.UpdateProduct)
	products.Delete("/:id", h.DeleteProduct)

	return app
}
