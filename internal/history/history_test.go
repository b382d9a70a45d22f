package history

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
	"github.com/smartcafe/smartcafe-client/pkg/storage"
)

type stubOrders struct {
	names  []string
	orders []api.Order
	err    error
}

func (s *stubOrders) CustomerOrders(_ context.Context, name string) ([]api.Order, error) {
	s.names = append(s.names, name)
	if s.err != nil {
		return nil, s.err
	}
	return s.orders, nil
}

func newService(t *testing.T, store storage.Store, orders *stubOrders) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Store: store, Orders: orders})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLoadWithoutAnyNamePrompts(t *testing.T) {
	orders := &stubOrders{}
	svc := newService(t, storage.NewMemory(), orders)

	view := svc.Load(context.Background(), "")
	assert.Equal(t, StatePrompt, view.State)
	assert.Empty(t, orders.names, "no lookup without a name")
}

func TestLoadFallsBackToRememberedName(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, CustomerNameKey, "Budi"))
	orders := &stubOrders{}
	svc := newService(t, store, orders)

	view := svc.Load(ctx, "")
	assert.Equal(t, StateEmpty, view.State)
	assert.Equal(t, "Budi", view.CustomerName)
	assert.Equal(t, []string{"Budi"}, orders.names)
}

func TestLoadExplicitNameWinsOverRemembered(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, CustomerNameKey, "Budi"))
	orders := &stubOrders{}
	svc := newService(t, store, orders)

	svc.Load(ctx, "Sari")
	assert.Equal(t, []string{"Sari"}, orders.names)
}

func TestLoadBuildsTableRows(t *testing.T) {
	placed := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
	orders := &stubOrders{orders: []api.Order{{
		ID:          101,
		OrderTime:   api.OrderTime{Time: placed},
		Status:      enums.OrderStatusPreparing,
		TotalAmount: decimal.NewFromInt(80000),
		Items: []api.OrderItem{
			{Quantity: 2, ProductName: "Latte"},
			{Quantity: 1, ProductName: "Nasi Goreng"},
		},
	}}}
	svc := newService(t, storage.NewMemory(), orders)

	view := svc.Load(context.Background(), "Budi")
	require.Equal(t, StateTable, view.State)
	require.Len(t, view.Rows, 1)

	row := view.Rows[0]
	assert.Equal(t, int64(101), row.OrderID)
	assert.Equal(t, "5 Mar 2024, 14:30", row.PlacedAt)
	assert.Equal(t, "PREPARING", row.Status)
	assert.True(t, row.TotalAmount.Equal(decimal.NewFromInt(80000)))
	assert.Equal(t, "2x Latte, 1x Nasi Goreng", row.ItemSummary)
}

func TestLoadFailureDegradesToErrorView(t *testing.T) {
	orders := &stubOrders{err: pkgerrors.New(pkgerrors.CodeBackend, "history unavailable")}
	svc := newService(t, storage.NewMemory(), orders)

	view := svc.Load(context.Background(), "Budi")
	assert.Equal(t, StateError, view.State)
	assert.Equal(t, "Budi", view.CustomerName)
	assert.NotEmpty(t, view.Message)
}
