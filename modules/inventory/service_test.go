package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/example/inventory-service/config"
	"github.com/example/inventory-service/database"
	"github.com/example/inventory-service/domain/product"
	"github.com/example/inventory-service/events"
	"github.com/example/inventory-service/schema"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu      sync.Mutex
	created []events.ProductCreatedEvent
	updated []events.ProductUpdatedEvent
	deleted []events.ProductDeletedEvent
	seeded  []events.ProductsSeededEvent
}

func (p *recordingPublisher) ProductCreated(e events.ProductCreatedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, e)
}

func (p *recordingPublisher) ProductUpdated(e events.ProductUpdatedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, e)
}

func (p *recordingPublisher) ProductDeleted(e events.ProductDeletedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, e)
}

func (p *recordingPublisher) ProductsSeeded(e events.ProductsSeededEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeded = append(p.seeded, e)
}

// memoryCache is a ListCache backed by a map.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
		LogLevel:   "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, product.NewRepository(db).Migrate(context.Background()))
	return db
}

func setupService(t *testing.T, opts ...ServiceOption) (*Service, *recordingPublisher, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	pub := &recordingPublisher{}
	opts = append([]ServiceOption{WithPublisher(pub), WithLogger(&mockLogger{})}, opts...)
	return NewService(product.NewRepository(db), opts...), pub, db
}

func createRequest(article string) *CreateProductRequest {
	return &CreateProductRequest{Article: article, Name: "Product " + article, PriceMinor: 1999, Quantity: 5}
}

func ptr[T any](v T) *T { return &v }

func TestService_CreateProduct(t *testing.T) {
	svc, pub, _ := setupService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, createRequest("A-1"))
	require.NoError(t, err)
	assert.Positive(t, p.ID)
	assert.Equal(t, "A-1", p.Article)
	assert.Equal(t, int64(1999), p.PriceMinor)
	assert.False(t, p.CreatedAt.IsZero())

	require.Len(t, pub.created, 1)
	assert.Equal(t, p.ID, pub.created[0].ProductID)
	assert.Equal(t, "A-1", pub.created[0].Article)
}

func TestService_CreateProduct_DuplicateArticle(t *testing.T) {
	svc, pub, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, createRequest("DUP"))
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, createRequest("DUP"))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Len(t, pub.created, 1)
}

func TestService_CreateProduct_Invalid(t *testing.T) {
	svc, pub, _ := setupService(t)

	_, err := svc.CreateProduct(context.Background(), &CreateProductRequest{
		Article:    "",
		Name:       "x",
		PriceMinor: 0,
		Quantity:   -1,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "article")
	assert.Contains(t, verr.Fields, "priceMinor")
	assert.Contains(t, verr.Fields, "quantity")
	assert.NotContains(t, verr.Fields, "name")
	assert.Empty(t, pub.created)
}

func TestService_ListProducts_Pagination(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := svc.CreateProduct(ctx, createRequest(fmt.Sprintf("A-%d", i)))
		require.NoError(t, err)
	}

	page, err := svc.ListProducts(ctx, schema.PageQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "A-1", page.Data[0].Article)
	assert.Equal(t, "A-2", page.Data[1].Article)

	page, err = svc.ListProducts(ctx, schema.PageQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "A-3", page.Data[0].Article)

	page, err = svc.ListProducts(ctx, schema.PageQuery{Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
}

func TestService_ListProducts_InvalidQuery(t *testing.T) {
	svc, _, _ := setupService(t)

	tests := []schema.PageQuery{
		{Page: 0, Limit: 10},
		{Page: 1, Limit: 0},
		{Page: 1, Limit: schema.MaxLimit + 1},
		{Page: math.MaxInt, Limit: schema.MaxLimit},
	}
	for _, q := range tests {
		_, err := svc.ListProducts(context.Background(), q)
		assert.ErrorIs(t, err, ErrInvalidInput, "query %+v", q)
	}
}

func TestService_ListProducts_SharedLoadIgnoresCallerCancel(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.CreateProduct(context.Background(), createRequest("L-1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page, err := svc.ListProducts(ctx, schema.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "L-1", page.Data[0].Article)
}

func TestService_ListProducts_UsesCache(t *testing.T) {
	cache := newMemoryCache()
	svc, _, _ := setupService(t, WithListCache(cache))
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, createRequest("C-1"))
	require.NoError(t, err)

	first, err := svc.ListProducts(ctx, schema.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.len())
	assert.Equal(t, 0, cache.hits)

	second, err := svc.ListProducts(ctx, schema.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.Total, second.Total)
	require.Len(t, second.Data, 1)
	assert.Equal(t, first.Data[0].ID, second.Data[0].ID)

	// A write drops every cached page
	_, err = svc.CreateProduct(ctx, createRequest("C-2"))
	require.NoError(t, err)
	assert.Equal(t, 0, cache.len())

	third, err := svc.ListProducts(ctx, schema.PageQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), third.Total)
}

func TestService_GetProduct(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, createRequest("G-1"))
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "G-1", got.Article)

	_, err = svc.GetProduct(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetProduct(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_UpdateProduct(t *testing.T) {
	svc, pub, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, createRequest("U-1"))
	require.NoError(t, err)

	updated, err := svc.UpdateProduct(ctx, &UpdateProductRequest{
		ID:       created.ID,
		Name:     ptr("Renamed"),
		Quantity: ptr(int64(0)),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "U-1", updated.Article)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, int64(1999), updated.PriceMinor)
	assert.Equal(t, int64(0), updated.Quantity)

	require.Len(t, pub.updated, 1)
	assert.Equal(t, []string{"name", "quantity"}, pub.updated[0].ChangedFields)
}

func TestService_UpdateProduct_Errors(t *testing.T) {
	svc, pub, _ := setupService(t)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, createRequest("E-1"))
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, createRequest("E-2"))
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, &UpdateProductRequest{ID: 9999, Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateProduct(ctx, &UpdateProductRequest{ID: first.ID, Article: ptr("E-2")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.UpdateProduct(ctx, &UpdateProductRequest{ID: first.ID, PriceMinor: ptr(int64(0))})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateProduct(ctx, &UpdateProductRequest{ID: first.ID, Article: ptr("")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateProduct(ctx, &UpdateProductRequest{ID: 0, Name: ptr("x")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Empty(t, pub.updated)

	got, err := svc.GetProduct(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "E-1", got.Article)
}

func TestService_DeleteProduct(t *testing.T) {
	svc, pub, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, createRequest("D-1"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, created.ID))
	require.Len(t, pub.deleted, 1)
	assert.Equal(t, created.ID, pub.deleted[0].ProductID)

	err = svc.DeleteProduct(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, pub.deleted, 1)

	_, err = svc.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_StorageFailure(t *testing.T) {
	svc, _, db := setupService(t)
	require.NoError(t, database.Close(db))

	_, err := svc.ListProducts(context.Background(), schema.PageQuery{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, ErrStorage)

	_, err = svc.CreateProduct(context.Background(), createRequest("S-1"))
	assert.ErrorIs(t, err, ErrStorage)
}

func TestService_ConcurrentCreatesSameArticle(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateProduct(ctx, createRequest("RACE"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
}
