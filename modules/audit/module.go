// Package audit keeps an in-memory trail of product events.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/inventory-service/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// DefaultCapacity bounds the trail when no capacity is given.
const DefaultCapacity = 1000

// Entry kinds.
const (
	KindCreated = "product_created"
	KindUpdated = "product_updated"
	KindDeleted = "product_deleted"
	KindSeeded  = "products_seeded"
)

// Entry is one recorded product event.
type Entry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	ProductID  int64     `json:"product_id,omitempty"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RecentRequest asks for the newest entries. Limit <= 0 returns all of them.
type RecentRequest struct {
	Limit int `json:"limit"`
}

// RecentResponse lists entries newest first.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
}

// Module consumes product events and keeps the newest entries.
type Module struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	logger   types.Logger
}

var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)

// NewModule creates the audit module. A non-positive capacity uses DefaultCapacity.
func NewModule(capacity int, logger types.Logger) *Module {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Module{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

func (m *Module) Name() string {
	return "audit"
}

func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.ProductCreatedV1, m.handleProductCreated, m); err != nil {
		return fmt.Errorf("failed to register ProductCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ProductUpdatedV1, m.handleProductUpdated, m); err != nil {
		return fmt.Errorf("failed to register ProductUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ProductDeletedV1, m.handleProductDeleted, m); err != nil {
		return fmt.Errorf("failed to register ProductDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ProductsSeededV1, m.handleProductsSeeded, m); err != nil {
		return fmt.Errorf("failed to register ProductsSeeded consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "ProductCreated, ProductUpdated, ProductDeleted, ProductsSeeded")
	return nil
}

// RegisterServices exposes the trail as services.audit.recent.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent", json.Unmarshal, json.Marshal, m.handleRecent,
	); err != nil {
		return fmt.Errorf("failed to register recent service: %w", err)
	}
	return nil
}

func (m *Module) handleRecent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	return RecentResponse{Entries: m.Recent(req.Limit)}, nil
}

func (m *Module) handleProductCreated(_ context.Context, event events.ProductCreatedEvent, _ *mono.Msg) error {
	m.record(KindCreated, event.ProductID, event.CreatedAt,
		fmt.Sprintf("Product %s created (price %d, quantity %d)", event.Article, event.PriceMinor, event.Quantity))
	return nil
}

func (m *Module) handleProductUpdated(_ context.Context, event events.ProductUpdatedEvent, _ *mono.Msg) error {
	m.record(KindUpdated, event.ProductID, event.UpdatedAt,
		fmt.Sprintf("Product %s updated: %s", event.Article, strings.Join(event.ChangedFields, ", ")))
	return nil
}

func (m *Module) handleProductDeleted(_ context.Context, event events.ProductDeletedEvent, _ *mono.Msg) error {
	m.record(KindDeleted, event.ProductID, event.DeletedAt,
		fmt.Sprintf("Product %d deleted", event.ProductID))
	return nil
}

func (m *Module) handleProductsSeeded(_ context.Context, event events.ProductsSeededEvent, _ *mono.Msg) error {
	m.record(KindSeeded, 0, event.SeededAt,
		fmt.Sprintf("Seeded %d products", event.Count))
	return nil
}

func (m *Module) record(kind string, productID int64, at time.Time, summary string) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	entry := Entry{
		ID:         uuid.NewString(),
		Kind:       kind,
		ProductID:  productID,
		Summary:    summary,
		OccurredAt: at,
	}

	m.mu.Lock()
	if len(m.entries) == m.capacity {
		// Drop the oldest entry
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, entry)
	m.mu.Unlock()

	m.logger.Info("Audit", "kind", kind, "product_id", productID, "summary", summary)
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (m *Module) Recent(n int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if n <= 0 || n > len(m.entries) {
		n = len(m.entries)
	}
	result := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.entries[i])
	}
	return result
}

func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Audit module started", "capacity", m.capacity)
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	m.mu.RLock()
	n := len(m.entries)
	m.mu.RUnlock()
	m.logger.Info("Audit module stopped", "entries", n)
	return nil
}
