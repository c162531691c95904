package api

import (
	"github.com/example/inventory-service/domain/product"
)

// ProductResponse is the public representation of a product.
type ProductResponse struct {
	ID         int64  `json:"id"`
	Article    string `json:"article"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"priceMinor"`
	Quantity   int64  `json:"quantity"`
}

// ListResponse is one page of products plus the total row count.
type ListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
}

// MessageResponse is the body of every non-validation error.
type MessageResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse lists validation problems per field.
type ValidationErrorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// ModuleHealth is the health of one module.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Modules map[string]ModuleHealth `json:"modules"`
}

func toProductResponse(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Article:    p.Article,
		Name:       p.Name,
		PriceMinor: p.PriceMinor,
		Quantity:   p.Quantity,
	}
}

func toProductResponses(products []product.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	return out
}
