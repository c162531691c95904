package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/inventory-service/config"
	"github.com/example/inventory-service/database"
	"github.com/example/inventory-service/domain/product"
	"github.com/example/inventory-service/events"
	"github.com/example/inventory-service/schema"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module owns the products table. It exposes the product operations as
// request-reply services and publishes product events.
type Module struct {
	dbCfg    config.DatabaseConfig
	seed     SeedOptions
	db       *gorm.DB
	ownsDB   bool
	cache    ListCache
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
)

// ModuleOption configures a Module.
type ModuleOption func(*Module)

// WithCache enables the list cache.
func WithCache(c ListCache) ModuleOption {
	return func(m *Module) { m.cache = c }
}

// WithDB injects an already opened database. The module does not close it.
func WithDB(db *gorm.DB) ModuleOption {
	return func(m *Module) { m.db = db }
}

// NewModule creates a new inventory module.
func NewModule(dbCfg config.DatabaseConfig, seed SeedOptions, logger types.Logger, opts ...ModuleOption) *Module {
	m := &Module{
		dbCfg:  dbCfg,
		seed:   seed,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "inventory"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ProductCreatedV1.ToBase(),
		events.ProductUpdatedV1.ToBase(),
		events.ProductDeletedV1.ToBase(),
		events.ProductsSeededV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
// Names are prefixed by the framework, so "list" becomes "services.inventory.list".
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.handleGet,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	m.logger.Info("Registered services", "services", "services.inventory.{list,get,create,update,delete}")
	return nil
}

// Start opens the database, applies the schema and runs the startup seed.
func (m *Module) Start(ctx context.Context) error {
	if m.db == nil {
		db, err := database.Open(ctx, m.dbCfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		m.db = db
		m.ownsDB = true
	}

	repo := product.NewRepository(m.db)
	if m.dbCfg.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate products table: %w", err)
		}
	}

	var publisher EventPublisher = nopPublisher{}
	if m.eventBus != nil {
		publisher = newBusPublisher(m.eventBus, m.logger)
	}
	opts := []ServiceOption{WithPublisher(publisher), WithLogger(m.logger)}
	if m.cache != nil {
		opts = append(opts, WithListCache(m.cache))
	}
	m.service = NewService(repo, opts...)

	if m.seed.Enabled {
		if _, err := m.service.Seed(ctx, m.seed.Count); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
	}

	m.logger.Info("Inventory module started", "driver", m.dbCfg.Driver, "cache", m.cache != nil)
	return nil
}

// Stop closes the database if the module opened it.
func (m *Module) Stop(_ context.Context) error {
	if m.db == nil || !m.ownsDB {
		return nil
	}
	m.logger.Info("Closing database connection")
	if err := database.Close(m.db); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	m.db = nil
	return nil
}

// Health reports whether the database answers a ping.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	if err := database.Ping(ctx, m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.dbCfg.Driver,
			"cache":  m.cache != nil,
		},
	}
}

// Service returns the product service. It is nil until Start succeeds.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) handleList(ctx context.Context, req ListProductsRequest, _ *mono.Msg) (ListProductsResponse, error) {
	query := schema.PageQuery{Page: req.Page, Limit: req.Limit}
	if query.Page == 0 {
		query.Page = schema.DefaultPage
	}
	if query.Limit == 0 {
		query.Limit = schema.DefaultLimit
	}
	resp, err := m.service.ListProducts(ctx, query)
	if err != nil {
		return ListProductsResponse{}, err
	}
	return *resp, nil
}

func (m *Module) handleGet(ctx context.Context, req GetProductRequest, _ *mono.Msg) (product.Product, error) {
	p, err := m.service.GetProduct(ctx, req.ID)
	if err != nil {
		return product.Product{}, err
	}
	return *p, nil
}

func (m *Module) handleCreate(ctx context.Context, req CreateProductRequest, _ *mono.Msg) (product.Product, error) {
	p, err := m.service.CreateProduct(ctx, &req)
	if err != nil {
		return product.Product{}, err
	}
	return *p, nil
}

func (m *Module) handleUpdate(ctx context.Context, req UpdateProductRequest, _ *mono.Msg) (product.Product, error) {
	p, err := m.service.UpdateProduct(ctx, &req)
	if err != nil {
		return product.Product{}, err
	}
	return *p, nil
}

func (m *Module) handleDelete(ctx context.Context, req DeleteProductRequest, _ *mono.Msg) (DeleteProductResponse, error) {
	if err := m.service.DeleteProduct(ctx, req.ID); err != nil {
		return DeleteProductResponse{}, err
	}
	return DeleteProductResponse{ID: req.ID, Deleted: true}, nil
}
