package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
)

func init() {
	// The backend reads and writes amounts as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderTime handles the backend's zone-less timestamp format alongside
// RFC 3339.
type OrderTime struct {
	time.Time
}

const localDateTimeLayout = "2006-01-02T15:04:05"

func (t *OrderTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(localDateTimeLayout, raw, time.Local)
	if err != nil {
		return fmt.Errorf("parsing order time %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

func (t OrderTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(localDateTimeLayout) + `"`), nil
}

// Order is the shared order representation: REST responses and feed messages
// carry the identical shape, always as a full snapshot.
type Order struct {
	ID             int64             `json:"id"`
	OrderTime      OrderTime         `json:"orderTime"`
	Status         enums.OrderStatus `json:"status"`
	TotalAmount    decimal.Decimal   `json:"totalAmount"`
	CustomerName   string            `json:"customerName"`
	Notes          string            `json:"notes"`
	Items          []OrderItem       `json:"items"`
	TotalItemCount int               `json:"totalItemCount"`
}

type OrderItem struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	ProductName     string          `json:"productName"`
	ProductType     string          `json:"productType"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	SpecialRequests string          `json:"specialRequests"`
}

// OrderRequest is the checkout payload. Only product identity and quantity
// are sent; the backend recomputes prices and totals.
type OrderRequest struct {
	CustomerName string             `json:"customerName"`
	Notes        string             `json:"notes"`
	Items        []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID       int64  `json:"productId" validate:"required,gt=0"`
	Quantity        int    `json:"quantity" validate:"required,gte=1"`
	SpecialRequests string `json:"specialRequests"`
}

// StatusUpdateRequest is the PATCH body for status-transition commands.
type StatusUpdateRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required"`
}

// Product carries the catalog record. The type-specific fields are optional:
// food has IsVegetarian, drinks have IsCold and Size.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ProductType  string          `json:"productType"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	Available    bool            `json:"available"`
	ImageURL     string          `json:"imageUrl"`
	IsVegetarian *bool           `json:"isVegetarian,omitempty"`
	IsCold       *bool           `json:"isCold,omitempty"`
	Size         *string         `json:"size,omitempty"`
}

// ProductRequest is the admin CRUD payload.
type ProductRequest struct {
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price" validate:"required"`
	Stock        int             `json:"stock" validate:"gte=0"`
	ProductType  string          `json:"productType" validate:"required,oneof=FOOD DRINK"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"imageUrl"`
	Available    bool            `json:"available"`
	IsVegetarian bool            `json:"isVegetarian"`
	IsCold       bool            `json:"isCold"`
	Size         string          `json:"size"`
}

// PaymentRequest drives the legacy direct payment path.
type PaymentRequest struct {
	OrderID int64               `json:"orderId" validate:"required,gt=0"`
	Method  enums.PaymentMethod `json:"method" validate:"required"`
	Amount  decimal.Decimal     `json:"amount" validate:"required"`
}

// Payment is the legacy direct payment record.
type Payment struct {
	ID      int64               `json:"id"`
	OrderID int64               `json:"orderId"`
	Method  enums.PaymentMethod `json:"method"`
	Amount  decimal.Decimal     `json:"amount"`
	Status  enums.PaymentStatus `json:"status"`
}

// XenditInvoice is the hosted payment page handle for an order.
type XenditInvoice struct {
	InvoiceURL string `json:"invoiceUrl"`
	ExternalID string `json:"externalId"`
}

type backendError struct {
	Message string `json:"message"`
}
