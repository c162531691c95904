package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/example/inventory-service/config"
	"github.com/example/inventory-service/domain/product"
	"github.com/example/inventory-service/events"
)

// Seed row layout.
const (
	seedArticlePrefix  = "SEED-"
	seedArticlePad     = 4
	seedPriceBaseMinor = 1000
	seedQuantityMod    = 100
)

// SeedOptions controls the startup seed.
type SeedOptions struct {
	Enabled bool
	Count   int
}

// SeedProducts builds count deterministic synthetic products.
// Row n (1-based) gets article SEED-000n, price 1000+n and quantity n%100.
func SeedProducts(count int) []product.Product {
	products := make([]product.Product, count)
	for i := range products {
		n := i + 1
		products[i] = product.Product{
			Article:    fmt.Sprintf("%s%0*d", seedArticlePrefix, seedArticlePad, n),
			Name:       fmt.Sprintf("Seed Product %d", n),
			PriceMinor: int64(seedPriceBaseMinor + n),
			Quantity:   int64(n % seedQuantityMod),
		}
	}
	return products
}

// Seed inserts count synthetic products when the table is empty and reports
// how many rows were inserted. A non-positive count uses the default.
func (s *Service) Seed(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		count = config.DefaultSeedCount
	}

	inserted, err := s.repo.InsertIfEmpty(ctx, SeedProducts(count))
	if err != nil {
		return 0, classify(err)
	}
	if inserted == 0 {
		s.logger.Info("Seed skipped, products table is not empty")
		return 0, nil
	}

	s.invalidateLists(ctx)
	s.publisher.ProductsSeeded(events.ProductsSeededEvent{
		Count:    inserted,
		SeededAt: time.Now().UTC(),
	})
	s.logger.Info("Seeded products", "count", inserted)
	return inserted, nil
}
