package api

import (
	"context"

	"github.com/example/inventory-service/modules/inventory"
	"github.com/example/inventory-service/schema"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// HealthChecker is implemented by modules that report their own health.
type HealthChecker interface {
	Health(ctx context.Context) mono.HealthStatus
}

// Handlers contains the HTTP handlers for the product API.
type Handlers struct {
	products inventory.ProductPort
	checks   map[string]HealthChecker
	logger   types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(products inventory.ProductPort, checks map[string]HealthChecker, logger types.Logger) *Handlers {
	return &Handlers{
		products: products,
		checks:   checks,
		logger:   logger,
	}
}

// ListProducts handles GET /products?page=&limit=.
func (h *Handlers) ListProducts(c *fiber.Ctx) error {
	query, err := schema.ParsePageQuery(c.Query("page"), c.Query("limit"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	resp, err := h.products.ListProducts(c.UserContext(), query)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(ListResponse{
		Data:  toProductResponses(resp.Data),
		Total: resp.Total,
	})
}

// CreateProduct handles POST /products.
func (h *Handlers) CreateProduct(c *fiber.Ctx) error {
	payload, err := schema.DecodeCreate(c.Body())
	if err != nil {
		return writeError(c, h.logger, err)
	}

	created, err := h.products.CreateProduct(c.UserContext(), &inventory.CreateProductRequest{
		Article:    *payload.Article,
		Name:       *payload.Name,
		PriceMinor: *payload.PriceMinor,
		Quantity:   *payload.Quantity,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toProductResponse(created))
}

// UpdateProduct handles PUT /products/:id with a partial body.
func (h *Handlers) UpdateProduct(c *fiber.Ctx) error {
	id, err := schema.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	payload, err := schema.DecodeUpdate(c.Body())
	if err != nil {
		return writeError(c, h.logger, err)
	}

	updated, err := h.products.UpdateProduct(c.UserContext(), &inventory.UpdateProductRequest{
		ID:         id,
		Article:    payload.Article,
		Name:       payload.Name,
		PriceMinor: payload.PriceMinor,
		Quantity:   payload.Quantity,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(toProductResponse(updated))
}

// DeleteProduct handles DELETE /products/:id.
func (h *Handlers) DeleteProduct(c *fiber.Ctx) error {
	id, err := schema.ParseID(c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	if err := h.products.DeleteProduct(c.UserContext(), id); err != nil {
		return writeError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HealthCheck handles GET /health. Every registered check must pass.
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:  "ok",
		Modules: make(map[string]ModuleHealth, len(h.checks)),
	}

	for name, check := range h.checks {
		status := check.Health(c.UserContext())
		resp.Modules[name] = ModuleHealth{
			Healthy: status.Healthy,
			Message: status.Message,
			Details: status.Details,
		}
		if !status.Healthy {
			resp.Status = "unavailable"
		}
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
