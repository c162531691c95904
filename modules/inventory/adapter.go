package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/inventory-service/domain/product"
	"github.com/example/inventory-service/schema"
	"github.com/go-monolith/mono"
)

// productAdapter implements ProductPort by calling the inventory
// request-reply services through the service container.
type productAdapter struct {
	container mono.ServiceContainer
}

// NewProductAdapter creates a ProductPort backed by the inventory services.
func NewProductAdapter(container mono.ServiceContainer) ProductPort {
	return &productAdapter{
		container: container,
	}
}

// ListProducts returns one page of products.
func (a *productAdapter) ListProducts(ctx context.Context, query schema.PageQuery) (*ListProductsResponse, error) {
	var resp ListProductsResponse
	req := ListProductsRequest{Page: query.Page, Limit: query.Limit}
	if err := a.call(ctx, "list", &req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []product.Product{}
	}
	return &resp, nil
}

// GetProduct returns a product by id.
func (a *productAdapter) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	var resp product.Product
	if err := a.call(ctx, "get", &GetProductRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateProduct inserts a product.
func (a *productAdapter) CreateProduct(ctx context.Context, req *CreateProductRequest) (*product.Product, error) {
	var resp product.Product
	if err := a.call(ctx, "create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProduct applies a partial update.
func (a *productAdapter) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*product.Product, error) {
	var resp product.Product
	if err := a.call(ctx, "update", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteProduct removes a product.
func (a *productAdapter) DeleteProduct(ctx context.Context, id int64) error {
	var resp DeleteProductResponse
	return a.call(ctx, "delete", &DeleteProductRequest{ID: id}, &resp)
}

func (a *productAdapter) call(ctx context.Context, service string, req, resp any) error {
	client, err := a.container.GetRequestReplyService(service)
	if err != nil {
		return fmt.Errorf("failed to get %s service: %w", service, err)
	}

	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	msg, err := client.Call(ctx, reqData)
	if err != nil {
		return mapServiceError(err)
	}

	// Check for error response
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(msg.Data, &errResp); err == nil && errResp.Error != "" {
		return mapServiceError(fmt.Errorf("%s", errResp.Error))
	}

	if err := json.Unmarshal(msg.Data, resp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
