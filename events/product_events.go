package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// ProductCreatedEvent is emitted after a product is inserted.
type ProductCreatedEvent struct {
	ProductID  int64     `json:"product_id"`
	Article    string    `json:"article"`
	Name       string    `json:"name"`
	PriceMinor int64     `json:"price_minor"`
	Quantity   int64     `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductCreatedV1 is the typed event definition for product creation.
// Subject: events.product.v1.product-created
var ProductCreatedV1 = helper.EventDefinition[ProductCreatedEvent](
	"product", "ProductCreated", "v1",
)

// ProductUpdatedEvent is emitted after a product update commits.
type ProductUpdatedEvent struct {
	ProductID     int64     `json:"product_id"`
	Article       string    `json:"article"`
	ChangedFields []string  `json:"changed_fields"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductUpdatedV1 is the typed event definition for product updates.
// Subject: events.product.v1.product-updated
var ProductUpdatedV1 = helper.EventDefinition[ProductUpdatedEvent](
	"product", "ProductUpdated", "v1",
)

// ProductDeletedEvent is emitted after a product is removed.
type ProductDeletedEvent struct {
	ProductID int64     `json:"product_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// ProductDeletedV1 is the typed event definition for product deletion.
// Subject: events.product.v1.product-deleted
var ProductDeletedV1 = helper.EventDefinition[ProductDeletedEvent](
	"product", "ProductDeleted", "v1",
)

// ProductsSeededEvent is emitted when the startup seed inserted rows.
type ProductsSeededEvent struct {
	Count    int       `json:"count"`
	SeededAt time.Time `json:"seeded_at"`
}

// ProductsSeededV1 is the typed event definition for the startup seed.
// Subject: events.product.v1.products-seeded
var ProductsSeededV1 = helper.EventDefinition[ProductsSeededEvent](
	"product", "ProductsSeeded", "v1",
)
