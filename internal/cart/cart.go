// Package cart holds the client-local shopping cart: a single state container
// with one mutation path, mirrored to durable storage before every render.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
	"github.com/smartcafe/smartcafe-client/pkg/storage"
)

const (
	// StorageKey holds the serialized cart; CustomerNameKey the last-used
	// customer name. Both match the keys the web client wrote, so carts
	// survive a client swap.
	StorageKey      = "smartCafeCart"
	CustomerNameKey = "smartCafeCustomerName"

	defaultCustomerName = "Guest"
)

// Line is one cart entry. Name and UnitPrice are display caches; only
// identity and quantity are ever submitted.
type Line struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is UnitPrice times Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type ordersAPI interface {
	CreateOrder(ctx context.Context, req api.OrderRequest) (*api.Order, error)
}

type paymentsAPI interface {
	XenditInvoice(ctx context.Context, orderID int64) (*api.XenditInvoice, error)
}

// URLOpener opens the hosted payment page in a browsing context.
type URLOpener interface {
	Open(url string) error
}

// Renderer receives the cart view after every mutation.
type Renderer interface {
	RenderCart(view View)
}

// Notifier is the transient notification affordance (the toast).
type Notifier interface {
	Notify(level NoticeLevel, message string)
}

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Confirmation summarizes a placed order for the confirmation panel.
type Confirmation struct {
	OrderID     int64
	TotalAmount decimal.Decimal
	InvoiceURL  string
}

// ManagerParams wires a cart manager.
type ManagerParams struct {
	Store    storage.Store
	Orders   ordersAPI
	Payments paymentsAPI
	Opener   URLOpener
	Renderer Renderer
	Notifier Notifier
	Logger   *logger.Logger
}

// Manager owns the cart for the session. Storage holds the only durable copy,
// treated as a cache; server totals stay authoritative at checkout.
type Manager struct {
	mu       sync.Mutex
	lines    []Line
	store    storage.Store
	orders   ordersAPI
	payments paymentsAPI
	opener   URLOpener
	renderer Renderer
	notifier Notifier
	logg     *logger.Logger
}

// NewManager builds a cart manager with the required dependencies.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("storage required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders api required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments api required")
	}
	return &Manager{
		store:    params.Store,
		orders:   params.Orders,
		payments: params.Payments,
		opener:   params.Opener,
		renderer: params.Renderer,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// Load restores the persisted cart so a restart reconstructs the same cart
// exactly.
func (m *Manager) Load(ctx context.Context) error {
	raw, ok, err := m.store.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("loading cart: %w", err)
	}

	m.mu.Lock()
	if ok && raw != "" {
		var lines []Line
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("decoding stored cart: %w", err)
		}
		m.lines = lines
	}
	view := m.viewLocked()
	m.mu.Unlock()

	m.render(view)
	return nil
}

// AddItem increments the line for productID or appends a new one.
func (m *Manager) AddItem(ctx context.Context, productID int64, name string, unitPrice decimal.Decimal) error {
	err := m.apply(ctx, func() {
		for i := range m.lines {
			if m.lines[i].ProductID == productID {
				m.lines[i].Quantity++
				return
			}
		}
		m.lines = append(m.lines, Line{ProductID: productID, Name: name, UnitPrice: unitPrice, Quantity: 1})
	})
	if err != nil {
		return err
	}
	m.notify(NoticeSuccess, fmt.Sprintf("Added %s to cart", name))
	return nil
}

// RemoveItem deletes the line if present; absent is a no-op.
func (m *Manager) RemoveItem(ctx context.Context, productID int64) error {
	return m.apply(ctx, func() {
		kept := m.lines[:0]
		for _, line := range m.lines {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		m.lines = kept
	})
}

// ChangeQuantity adds delta to the line's quantity; a result of zero or less
// removes the line.
func (m *Manager) ChangeQuantity(ctx context.Context, productID int64, delta int) error {
	return m.apply(ctx, func() {
		for i := range m.lines {
			if m.lines[i].ProductID != productID {
				continue
			}
			m.lines[i].Quantity += delta
			if m.lines[i].Quantity <= 0 {
				m.lines = append(m.lines[:i], m.lines[i+1:]...)
			}
			return
		}
	})
}

// Total sums unit price times quantity over all lines.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, line := range m.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount sums quantities over all lines.
func (m *Manager) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, line := range m.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy in insertion order.
func (m *Manager) Lines() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

// Submit places the order. Only product identity and quantity are sent; the
// backend recomputes totals. Cash clears the cart immediately; other methods
// first open the hosted invoice, then clear. Payment completion is never
// awaited or verified.
func (m *Manager) Submit(ctx context.Context, customerName string, method enums.PaymentMethod) (*Confirmation, error) {
	m.mu.Lock()
	if len(m.lines) == 0 {
		m.mu.Unlock()
		err := pkgerrors.New(pkgerrors.CodeValidation, "Your cart is empty")
		m.notify(NoticeError, pkgerrors.UserMessage(err))
		return nil, err
	}

	if customerName == "" {
		customerName = defaultCustomerName
	}
	req := api.OrderRequest{
		CustomerName: customerName,
		Notes:        "",
		Items:        make([]api.OrderItemRequest, 0, len(m.lines)),
	}
	for _, line := range m.lines {
		req.Items = append(req.Items, api.OrderItemRequest{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			SpecialRequests: "",
		})
	}
	m.mu.Unlock()

	if customerName != defaultCustomerName {
		if err := m.store.Set(ctx, CustomerNameKey, customerName); err != nil && m.logg != nil {
			m.logg.Warn(ctx, "failed to remember customer name: "+err.Error())
		}
	}

	order, err := m.orders.CreateOrder(ctx, req)
	if err != nil {
		m.notify(NoticeError, pkgerrors.UserMessage(err))
		return nil, err
	}

	confirmation := &Confirmation{OrderID: order.ID, TotalAmount: order.TotalAmount}

	if method.RequiresInvoice() {
		invoice, err := m.payments.XenditInvoice(ctx, order.ID)
		if err != nil {
			// The order stays created backend-side; the cart keeps its
			// prior state so the session remains valid.
			m.notify(NoticeError, pkgerrors.UserMessage(err))
			return nil, err
		}
		confirmation.InvoiceURL = invoice.InvoiceURL
		if m.opener != nil {
			if err := m.opener.Open(invoice.InvoiceURL); err != nil && m.logg != nil {
				m.logg.Warn(ctx, "failed to open invoice url: "+err.Error())
			}
		}
		m.notify(NoticeInfo, "Please complete payment in the new window")
	}

	if err := m.clear(ctx); err != nil && m.logg != nil {
		m.logg.Error(ctx, "failed to clear cart after order", err)
	}
	m.notify(NoticeSuccess, fmt.Sprintf("Order #%d placed successfully!", order.ID))
	return confirmation, nil
}

func (m *Manager) clear(ctx context.Context) error {
	return m.apply(ctx, func() {
		m.lines = nil
	})
}

// apply is the single mutation entry point: mutate, persist, then render.
func (m *Manager) apply(ctx context.Context, mutate func()) error {
	m.mu.Lock()
	mutate()
	raw, err := json.Marshal(m.lines)
	view := m.viewLocked()
	m.mu.Unlock()

	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := m.store.Set(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("persisting cart: %w", err)
	}
	m.render(view)
	return nil
}

func (m *Manager) render(view View) {
	if m.renderer != nil {
		m.renderer.RenderCart(view)
	}
}

func (m *Manager) notify(level NoticeLevel, message string) {
	if m.notifier != nil {
		m.notifier.Notify(level, message)
	}
}
