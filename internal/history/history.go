// Package history loads and shapes a customer's past orders for display.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smartcafe/smartcafe-client/pkg/api"
	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
	"github.com/smartcafe/smartcafe-client/pkg/storage"
)

// CustomerNameKey mirrors the cart's remembered-name key so history lookups
// reuse the name from the last checkout.
const CustomerNameKey = "smartCafeCustomerName"

const timestampLayout = "2 Jan 2006, 15:04"

type ordersAPI interface {
	CustomerOrders(ctx context.Context, name string) ([]api.Order, error)
}

// State tells the renderer which of the four panels to show.
type State string

const (
	// StatePrompt means no customer name is known yet.
	StatePrompt State = "prompt"
	// StateEmpty means the lookup succeeded but returned no orders.
	StateEmpty State = "empty"
	// StateError means the lookup failed; Message carries the reason.
	StateError State = "error"
	// StateTable means Rows carry the customer's orders.
	StateTable State = "table"
)

// View is the render-ready history panel.
type View struct {
	State        State
	CustomerName string
	Message      string
	Rows         []Row
}

// Row is one order in the history table.
type Row struct {
	OrderID     int64
	PlacedAt    string
	Status      string
	TotalAmount decimal.Decimal
	ItemSummary string
}

// ServiceParams wires a history service.
type ServiceParams struct {
	Store  storage.Store
	Orders ordersAPI
	Logger *logger.Logger
}

// Service fetches order history. Failures degrade to an error view rather
// than aborting the session.
type Service struct {
	store  storage.Store
	orders ordersAPI
	logg   *logger.Logger
}

// NewService builds a history service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("storage required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders api required")
	}
	return &Service{store: params.Store, orders: params.Orders, logg: params.Logger}, nil
}

// Load resolves the customer name and fetches their orders. An explicit name
// wins over the remembered one; with neither, the caller must prompt.
func (s *Service) Load(ctx context.Context, name string) View {
	if name == "" {
		stored, ok, err := s.store.Get(ctx, CustomerNameKey)
		if err != nil && s.logg != nil {
			s.logg.Warn(ctx, "failed to read remembered customer name: "+err.Error())
		}
		if ok {
			name = stored
		}
	}
	if name == "" {
		return View{State: StatePrompt}
	}

	orders, err := s.orders.CustomerOrders(ctx, name)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "failed to load order history", err)
		}
		return View{
			State:        StateError,
			CustomerName: name,
			Message:      pkgerrors.UserMessage(err),
		}
	}
	if len(orders) == 0 {
		return View{State: StateEmpty, CustomerName: name}
	}

	view := View{
		State:        StateTable,
		CustomerName: name,
		Rows:         make([]Row, 0, len(orders)),
	}
	for _, order := range orders {
		view.Rows = append(view.Rows, Row{
			OrderID:     order.ID,
			PlacedAt:    order.OrderTime.Format(timestampLayout),
			Status:      order.Status.String(),
			TotalAmount: order.TotalAmount,
			ItemSummary: summarize(order.Items),
		})
	}
	return view
}

// summarize renders items as "2x Latte, 1x Nasi Goreng".
func summarize(items []api.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", item.Quantity, item.ProductName))
	}
	return strings.Join(parts, ", ")
}
