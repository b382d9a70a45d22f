package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/smartcafe/smartcafe-client/pkg/enums"
	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
)

// CreateOrder submits a new order. The returned order carries the
// server-assigned id and authoritative total.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ActiveOrders returns every order not in a terminal status.
func (c *Client) ActiveOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/active", nil, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// CustomerOrders returns a customer's historical orders in backend order.
func (c *Client) CustomerOrders(ctx context.Context, name string) ([]Order, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	query := url.Values{"name": []string{name}}
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/customer", query, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus requests a status transition. The caller must not apply
// the result optimistically; the live feed echoes the confirmed order.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}
	var order Order
	path := fmt.Sprintf("/api/orders/%d/status", orderID)
	if err := c.do(ctx, http.MethodPatch, path, nil, StatusUpdateRequest{Status: status}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
