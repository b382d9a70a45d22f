package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smartcafe/smartcafe-client/pkg/config"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.APIConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
	require.NoError(t, err)
	return client, server
}

func TestCreateOrderSendsOnlyIdentityAndQuantity(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":101,"totalAmount":50000,"status":"PENDING","customerName":"Ayu","items":[]}`)
	}))

	order, err := client.CreateOrder(context.Background(), OrderRequest{
		CustomerName: "Ayu",
		Notes:        "",
		Items: []OrderItemRequest{
			{ProductID: 7, Quantity: 2, SpecialRequests: ""},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(101), order.ID)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, enums.OrderStatusPending, order.Status)

	items, ok := captured["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, float64(7), item["productId"])
	assert.Equal(t, float64(2), item["quantity"])
	assert.Equal(t, "", item["specialRequests"])
	// cached display fields must never be sent
	assert.NotContains(t, item, "name")
	assert.NotContains(t, item, "price")
	assert.NotContains(t, item, "unitPrice")
}

func TestCreateOrderRefusesEmptyItemsWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	_, err := client.CreateOrder(context.Background(), OrderRequest{CustomerName: "Guest"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Zero(t, calls)
}

func TestUpdateOrderStatusPatchesStatusBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/orders/42/status", r.URL.Path)

		var body StatusUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, enums.OrderStatusPreparing, body.Status)

		io.WriteString(w, `{"id":42,"status":"PREPARING","totalAmount":0,"items":[]}`)
	}))

	order, err := client.UpdateOrderStatus(context.Background(), 42, enums.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, order.Status)
}

func TestBackendErrorMessageIsSurfaced(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"Insufficient stock for product: Latte"}`)
	}))

	_, err := client.CreateOrder(context.Background(), OrderRequest{
		Items: []OrderItemRequest{{ProductID: 7, Quantity: 99}},
	})
	require.Error(t, err)
	assert.Equal(t, "Insufficient stock for product: Latte", pkgerrors.UserMessage(err))
}

func TestCustomerOrdersEncodesName(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/customer", r.URL.Path)
		require.Equal(t, "Ayu Lestari", r.URL.Query().Get("name"))
		io.WriteString(w, `[]`)
	}))

	orders, err := client.CustomerOrders(context.Background(), "Ayu Lestari")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCustomerOrdersRequiresName(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.CustomerOrders(context.Background(), "")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestXenditInvoiceFailureMapsToPaymentInit(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.XenditInvoice(context.Background(), 101)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePaymentInit, typed.Code())
}

func TestXenditInvoiceSuccess(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/payments/xendit-invoice", r.URL.Path)
		require.Equal(t, "101", r.URL.Query().Get("orderId"))
		io.WriteString(w, `{"invoiceUrl":"https://checkout.example/inv-101","externalId":"inv-101"}`)
	}))

	invoice, err := client.XenditInvoice(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/inv-101", invoice.InvoiceURL)
}

func TestProcessPaymentPostsValidatedBody(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/payments", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":55,"orderId":101,"method":"CASH","amount":50000,"status":"COMPLETED"}`)
	}))

	payment, err := client.ProcessPayment(context.Background(), PaymentRequest{
		OrderID: 101,
		Method:  enums.PaymentMethodCash,
		Amount:  decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	assert.Equal(t, float64(101), captured["orderId"])
	assert.Equal(t, "CASH", captured["method"])
	assert.Equal(t, float64(50000), captured["amount"])

	assert.Equal(t, int64(55), payment.ID)
	assert.Equal(t, enums.PaymentStatusCompleted, payment.Status)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(50000)))
}

func TestProcessPaymentRefusesInvalidRequestWithoutNetworkCall(t *testing.T) {
	t.Parallel()

	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	_, err := client.ProcessPayment(context.Background(), PaymentRequest{Method: enums.PaymentMethodCash})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	assert.Zero(t, calls)
}

func TestDeleteProductIssuesDelete(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/products/9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteProduct(context.Background(), 9))
}

func TestOrderTimeAcceptsBackendFormats(t *testing.T) {
	t.Parallel()

	var order Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"orderTime":"2026-08-30T14:05:00","totalAmount":0,"items":[]}`), &order))
	assert.Equal(t, 14, order.OrderTime.Hour())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"orderTime":"2026-08-30T14:05:00Z","totalAmount":0,"items":[]}`), &order))
	assert.Equal(t, time.UTC, order.OrderTime.Location())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"orderTime":null,"totalAmount":0,"items":[]}`), &order))
	assert.True(t, order.OrderTime.IsZero())
}

func TestProductRequestValidation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.CreateProduct(context.Background(), ProductRequest{
		Name:        "",
		Price:       decimal.NewFromInt(25000),
		ProductType: "DRINK",
	})
	require.Error(t, err)

	_, err = client.CreateProduct(context.Background(), ProductRequest{
		Name:        "Latte",
		Price:       decimal.NewFromInt(25000),
		ProductType: "SNACK",
	})
	require.Error(t, err)
}
