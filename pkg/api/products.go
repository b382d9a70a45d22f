package api

import (
	"context"
	"fmt"
	"net/http"
)

// ListProducts returns the full catalog, available or not.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/api/products/all", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns one catalog record.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct adds a catalog record (admin surface).
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}
	var product Product
	if err := c.do(ctx, http.MethodPost, "/api/products", nil, req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces a catalog record (admin surface).
func (c *Client) UpdateProduct(ctx context.Context, id int64, req ProductRequest) (*Product, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}
	var product Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), nil, req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a catalog record (admin surface).
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil, nil)
}
