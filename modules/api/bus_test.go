package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/example/inventory-service/config"
	"github.com/example/inventory-service/database"
	"github.com/example/inventory-service/modules/inventory"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// productClient depends on inventory and keeps the adapter built from its
// service container.
type productClient struct {
	port inventory.ProductPort
}

var _ mono.DependentModule = (*productClient)(nil)

func (c *productClient) Name() string                  { return "product-client" }
func (c *productClient) Dependencies() []string        { return []string{"inventory"} }
func (c *productClient) Start(_ context.Context) error { return nil }
func (c *productClient) Stop(_ context.Context) error  { return nil }
func (c *productClient) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "inventory" {
		c.port = inventory.NewProductAdapter(container)
	}
}

// setupBusApp starts a mono application with the inventory module on
// in-memory SQLite and returns an HTTP app that reaches it through the
// request-reply services.
func setupBusApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dbCfg := config.DatabaseConfig{
		Driver:      config.DriverSQLite,
		SQLitePath:  ":memory:",
		AutoMigrate: true,
		LogLevel:    "silent",
	}
	db, err := database.Open(context.Background(), dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(mono.LogLevelError), // Suppress logs in tests
	)
	require.NoError(t, err)

	client := &productClient{}
	require.NoError(t, app.Register(inventory.NewModule(dbCfg, inventory.SeedOptions{}, &mockLogger{}, inventory.WithDB(db))))
	require.NoError(t, app.Register(client))

	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() {
		_ = app.Stop(context.Background())
	})
	require.NotNil(t, client.port, "inventory adapter not wired")

	return newTestApp(client.port, nil), db
}

func TestBus_ProductLifecycle(t *testing.T) {
	app, _ := setupBusApp(t)

	first := createProduct(t, app, "A-1")
	createProduct(t, app, "A-2")
	createProduct(t, app, "A-3")

	resp, data := doRequest(t, app, http.MethodPost, "/products", `{"article":"A-1","name":"Again","priceMinor":1,"quantity":1}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"message":"Article already exists"}`, string(data))

	resp, data = doRequest(t, app, http.MethodGet, "/products?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var list ListResponse
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Equal(t, int64(3), list.Total)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "A-3", list.Data[0].Article)

	resp, data = doRequest(t, app, http.MethodGet, "/products?page=3&limit=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"data":[],"total":3}`, string(data))

	resp, data = doRequest(t, app, http.MethodPut, fmt.Sprintf("/products/%d", first.ID), `{"article":"A-2"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(data))

	resp, data = doRequest(t, app, http.MethodPut, "/products/9999", `{"name":"Missing"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"message":"Product not found"}`, string(data))

	resp, data = doRequest(t, app, http.MethodPut, fmt.Sprintf("/products/%d", first.ID), `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var updated ProductResponse
	require.NoError(t, json.Unmarshal(data, &updated))
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "A-1", updated.Article)

	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/products/%d", first.ID), "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/products/%d", first.ID), "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBus_StorageFailure(t *testing.T) {
	app, db := setupBusApp(t)
	createProduct(t, app, "S-1")

	require.NoError(t, database.Close(db))

	resp, data := doRequest(t, app, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, string(data))
	assert.JSONEq(t, `{"message":"Database error"}`, string(data))
}
