package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/example/inventory-service/domain/product"
	"github.com/example/inventory-service/events"
	"github.com/example/inventory-service/schema"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

// ListCache is the cache-aside store for list pages.
type ListCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Service implements the product operations on top of the repository.
type Service struct {
	repo      *product.Repository
	cache     ListCache
	publisher EventPublisher
	logger    types.Logger
	sfGroup   singleflight.Group // Collapses concurrent loads of the same page
}

var _ ProductPort = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithListCache enables caching of list pages.
func WithListCache(c ListCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithPublisher sets the event publisher.
func WithPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithLogger sets the service logger.
func WithLogger(l types.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new product service.
func NewService(repo *product.Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:      repo,
		publisher: nopPublisher{},
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// cacheKeyList returns the cache key for a list page.
func cacheKeyList(page, limit int) string {
	return fmt.Sprintf("list:%d:%d", page, limit)
}

// ListProducts returns one page of products ordered by id, plus the total count.
func (s *Service) ListProducts(ctx context.Context, query schema.PageQuery) (*ListProductsResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, invalid(err)
	}

	key := cacheKeyList(query.Page, query.Limit)
	if s.cache != nil {
		var cached ListProductsResponse
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			// Fall through to the database on cache errors
			s.logger.Warn("List cache read failed", "key", key, "error", err)
		}
		if found {
			return &cached, nil
		}
	}

	// Joined callers share this load, so one caller's cancellation must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		products, total, err := s.repo.List(loadCtx, query.Offset(), query.Limit)
		if err != nil {
			return nil, err
		}
		resp := &ListProductsResponse{
			Data:  products,
			Total: total,
			Page:  query.Page,
			Limit: query.Limit,
		}
		if s.cache != nil {
			if err := s.cache.Set(loadCtx, key, resp); err != nil {
				s.logger.Warn("List cache write failed", "key", key, "error", err)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return val.(*ListProductsResponse), nil
}

// GetProduct returns a product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	if id < 1 {
		return nil, invalid(schema.NewValidationError("id", "must be a positive integer"))
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// CreateProduct inserts a product. A taken article yields ErrConflict.
func (s *Service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*product.Product, error) {
	if err := schema.Validate(schema.CreateProduct{
		Article:    &req.Article,
		Name:       &req.Name,
		PriceMinor: &req.PriceMinor,
		Quantity:   &req.Quantity,
	}); err != nil {
		return nil, invalid(err)
	}

	p := &product.Product{
		Article:    req.Article,
		Name:       req.Name,
		PriceMinor: req.PriceMinor,
		Quantity:   req.Quantity,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, classify(err)
	}

	s.invalidateLists(ctx)
	s.publisher.ProductCreated(events.ProductCreatedEvent{
		ProductID:  p.ID,
		Article:    p.Article,
		Name:       p.Name,
		PriceMinor: p.PriceMinor,
		Quantity:   p.Quantity,
		CreatedAt:  p.CreatedAt,
	})
	s.logger.Info("Product created", "id", p.ID, "article", p.Article)
	return p, nil
}

// UpdateProduct merges the supplied fields onto an existing product.
// The lookup and the write share one transaction.
func (s *Service) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*product.Product, error) {
	if req.ID < 1 {
		return nil, invalid(schema.NewValidationError("id", "must be a positive integer"))
	}
	if err := schema.Validate(schema.UpdateProduct{
		Article:    req.Article,
		Name:       req.Name,
		PriceMinor: req.PriceMinor,
		Quantity:   req.Quantity,
	}); err != nil {
		return nil, invalid(err)
	}

	p, err := s.repo.Update(ctx, req.ID, req.patch())
	if err != nil {
		return nil, classify(err)
	}

	s.invalidateLists(ctx)
	s.publisher.ProductUpdated(events.ProductUpdatedEvent{
		ProductID:     p.ID,
		Article:       p.Article,
		ChangedFields: req.changedFields(),
		UpdatedAt:     time.Now().UTC(),
	})
	s.logger.Info("Product updated", "id", p.ID, "fields", req.changedFields())
	return p, nil
}

// DeleteProduct removes a product. A missing id yields ErrNotFound.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if id < 1 {
		return invalid(schema.NewValidationError("id", "must be a positive integer"))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return classify(err)
	}

	s.invalidateLists(ctx)
	s.publisher.ProductDeleted(events.ProductDeletedEvent{
		ProductID: id,
		DeletedAt: time.Now().UTC(),
	})
	s.logger.Info("Product deleted", "id", id)
	return nil
}

// invalidateLists drops every cached list page after a write.
func (s *Service) invalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "list:*"); err != nil {
		s.logger.Warn("Failed to invalidate list cache", "error", err)
	}
}
