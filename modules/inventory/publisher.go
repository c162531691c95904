package inventory

import (
	"github.com/example/inventory-service/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// EventPublisher publishes product lifecycle events. Publishing is
// best-effort: failures are logged and never fail the write.
type EventPublisher interface {
	ProductCreated(event events.ProductCreatedEvent)
	ProductUpdated(event events.ProductUpdatedEvent)
	ProductDeleted(event events.ProductDeletedEvent)
	ProductsSeeded(event events.ProductsSeededEvent)
}

// busPublisher publishes events on the mono event bus.
type busPublisher struct {
	bus    mono.EventBus
	logger types.Logger
}

func newBusPublisher(bus mono.EventBus, logger types.Logger) *busPublisher {
	return &busPublisher{bus: bus, logger: logger}
}

func (p *busPublisher) ProductCreated(event events.ProductCreatedEvent) {
	if err := events.ProductCreatedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish ProductCreated event", "product_id", event.ProductID, "error", err)
	}
}

func (p *busPublisher) ProductUpdated(event events.ProductUpdatedEvent) {
	if err := events.ProductUpdatedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish ProductUpdated event", "product_id", event.ProductID, "error", err)
	}
}

func (p *busPublisher) ProductDeleted(event events.ProductDeletedEvent) {
	if err := events.ProductDeletedV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish ProductDeleted event", "product_id", event.ProductID, "error", err)
	}
}

func (p *busPublisher) ProductsSeeded(event events.ProductsSeededEvent) {
	if err := events.ProductsSeededV1.Publish(p.bus, event, nil); err != nil {
		p.logger.Warn("Failed to publish ProductsSeeded event", "count", event.Count, "error", err)
	}
}

// nopPublisher drops every event. Used when no event bus is wired.
type nopPublisher struct{}

func (nopPublisher) ProductCreated(events.ProductCreatedEvent) {}
func (nopPublisher) ProductUpdated(events.ProductUpdatedEvent) {}
func (nopPublisher) ProductDeleted(events.ProductDeletedEvent) {}
func (nopPublisher) ProductsSeeded(events.ProductsSeededEvent) {}
