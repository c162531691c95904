package inventory

import (
	"context"

	"github.com/example/inventory-service/domain/product"
	"github.com/example/inventory-service/schema"
)

// ProductPort is the product API consumed by other modules. It is
// implemented in-process by *Service and across the bus by the adapter
// returned from NewProductAdapter.
type ProductPort interface {
	ListProducts(ctx context.Context, query schema.PageQuery) (*ListProductsResponse, error)
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*product.Product, error)
	UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ListProductsRequest is the request for the list service.
type ListProductsRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListProductsResponse is one page of products and the total count.
type ListProductsResponse struct {
	Data  []product.Product `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// GetProductRequest is the request for the get service.
type GetProductRequest struct {
	ID int64 `json:"id"`
}

// CreateProductRequest is the request for the create service.
type CreateProductRequest struct {
	Article    string `json:"article"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"priceMinor"`
	Quantity   int64  `json:"quantity"`
}

// UpdateProductRequest is the request for the update service.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	ID         int64   `json:"id"`
	Article    *string `json:"article,omitempty"`
	Name       *string `json:"name,omitempty"`
	PriceMinor *int64  `json:"priceMinor,omitempty"`
	Quantity   *int64  `json:"quantity,omitempty"`
}

// DeleteProductRequest is the request for the delete service.
type DeleteProductRequest struct {
	ID int64 `json:"id"`
}

// DeleteProductResponse acknowledges a delete.
type DeleteProductResponse struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// changedFields names the fields an update request touches.
func (r *UpdateProductRequest) changedFields() []string {
	var fields []string
	if r.Article != nil {
		fields = append(fields, "article")
	}
	if r.Name != nil {
		fields = append(fields, "name")
	}
	if r.PriceMinor != nil {
		fields = append(fields, "priceMinor")
	}
	if r.Quantity != nil {
		fields = append(fields, "quantity")
	}
	return fields
}

func (r *UpdateProductRequest) patch() product.Patch {
	return product.Patch{
		Article:    r.Article,
		Name:       r.Name,
		PriceMinor: r.PriceMinor,
		Quantity:   r.Quantity,
	}
}
