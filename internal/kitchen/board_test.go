package kitchen

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/config"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
	"github.com/smartcafe/smartcafe-client/pkg/feed"
)

type manualTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

type manualScheduler struct {
	tasks []*manualTask
}

func (s *manualScheduler) Schedule(d time.Duration, fn func()) Cancel {
	task := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return func() { task.cancelled = true }
}

// fire runs every pending task with the given delay.
func (s *manualScheduler) fire(delay time.Duration) {
	for _, task := range s.tasks {
		if task.fired || task.cancelled || task.delay != delay {
			continue
		}
		task.fired = true
		task.fn()
	}
}

func (s *manualScheduler) pending(delay time.Duration) int {
	count := 0
	for _, task := range s.tasks {
		if !task.fired && !task.cancelled && task.delay == delay {
			count++
		}
	}
	return count
}

type stubKitchenOrders struct {
	active    []api.Order
	activeErr error

	patched   []int64
	statuses  []enums.OrderStatus
	updateErr error
}

func (s *stubKitchenOrders) ActiveOrders(context.Context) ([]api.Order, error) {
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	return s.active, nil
}

func (s *stubKitchenOrders) UpdateOrderStatus(_ context.Context, orderID int64, status enums.OrderStatus) (*api.Order, error) {
	s.patched = append(s.patched, orderID)
	s.statuses = append(s.statuses, status)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &api.Order{ID: orderID, Status: status}, nil
}

type countingAlerter struct {
	count int
}

func (a *countingAlerter) Alert() { a.count++ }

type captureListener struct {
	snapshots []Snapshot
}

func (l *captureListener) OnBoard(snapshot Snapshot) {
	l.snapshots = append(l.snapshots, snapshot)
}

func testConfig() config.KitchenConfig {
	// Distinct delays so firing by delay hits exactly one kind of task.
	return config.KitchenConfig{
		RemovalGrace:   3 * time.Second,
		NewMarkTTL:     2 * time.Second,
		UpdatedMarkTTL: 1 * time.Second,
	}
}

func newTestBoard(t *testing.T) (*Board, *stubKitchenOrders, *manualScheduler, *countingAlerter, *captureListener) {
	t.Helper()
	orders := &stubKitchenOrders{}
	sched := &manualScheduler{}
	alerter := &countingAlerter{}
	listener := &captureListener{}
	board, err := NewBoard(BoardParams{
		Orders:    orders,
		Scheduler: sched,
		Alerter:   alerter,
		Listener:  listener,
		Config:    testConfig(),
	})
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	return board, orders, sched, alerter, listener
}

func order(id int64, status enums.OrderStatus) api.Order {
	return api.Order{
		ID:           id,
		Status:       status,
		CustomerName: "Budi",
		TotalAmount:  decimal.NewFromInt(50000),
		OrderTime:    api.OrderTime{Time: time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)},
		Items: []api.OrderItem{
			{Quantity: 2, ProductName: "Latte", ProductType: "DRINK"},
		},
	}
}

func TestCardItemsCarryProductDetails(t *testing.T) {
	board, _, _, _, _ := newTestBoard(t)

	incoming := order(1, enums.OrderStatusPending)
	incoming.Items = []api.OrderItem{
		{Quantity: 2, ProductName: "Latte", ProductType: "DRINK", SpecialRequests: "less sugar"},
		{Quantity: 1, ProductName: "Nasi Goreng", ProductType: "FOOD"},
	}
	board.Apply(incoming)

	snap := board.Snapshot()
	require.Len(t, snap.Cards, 1)
	require.Len(t, snap.Cards[0].Items, 2)
	assert.Equal(t, CardItem{Quantity: 2, Name: "Latte", ProductType: "DRINK", SpecialRequests: "less sugar"}, snap.Cards[0].Items[0])
	assert.Equal(t, CardItem{Quantity: 1, Name: "Nasi Goreng", ProductType: "FOOD"}, snap.Cards[0].Items[1])
}

func TestNewOrderPrependsAlertsOnceAndMarksNew(t *testing.T) {
	board, _, sched, alerter, _ := newTestBoard(t)

	board.Apply(order(1, enums.OrderStatusPending))
	board.Apply(order(2, enums.OrderStatusPending))

	snap := board.Snapshot()
	require.Len(t, snap.Cards, 2)
	assert.Equal(t, int64(2), snap.Cards[0].OrderID, "newest card first")
	assert.True(t, snap.Cards[0].New)
	assert.Equal(t, 2, alerter.count, "one alert per new order")

	sched.fire(testConfig().NewMarkTTL)
	snap = board.Snapshot()
	assert.False(t, snap.Cards[0].New)
	assert.False(t, snap.Cards[1].New)
}

func TestSeedSkipsTerminalAndNeverAlerts(t *testing.T) {
	board, orders, sched, alerter, _ := newTestBoard(t)
	orders.active = []api.Order{
		order(1, enums.OrderStatusPending),
		order(2, enums.OrderStatusCompleted),
		order(3, enums.OrderStatusPreparing),
	}

	require.NoError(t, board.Seed(context.Background()))

	snap := board.Snapshot()
	require.Len(t, snap.Cards, 2)
	assert.Equal(t, int64(3), snap.Cards[0].OrderID)
	assert.Equal(t, int64(1), snap.Cards[1].OrderID)
	assert.False(t, snap.Cards[0].New)
	assert.Equal(t, 0, alerter.count)
	assert.Empty(t, sched.tasks)
}

func TestUpdateReplacesCardWholesaleAndMarksUpdated(t *testing.T) {
	board, _, sched, _, _ := newTestBoard(t)

	board.Apply(order(1, enums.OrderStatusPending))
	sched.fire(testConfig().NewMarkTTL)

	updated := order(1, enums.OrderStatusPreparing)
	updated.Items = []api.OrderItem{{Quantity: 3, ProductName: "Latte"}}
	board.Apply(updated)

	snap := board.Snapshot()
	require.Len(t, snap.Cards, 1)
	assert.Equal(t, enums.OrderStatusPreparing, snap.Cards[0].Status)
	assert.Equal(t, 3, snap.Cards[0].Items[0].Quantity)
	assert.True(t, snap.Cards[0].Updated)

	sched.fire(testConfig().UpdatedMarkTTL)
	assert.False(t, board.Snapshot().Cards[0].Updated)
}

func TestTerminalSnapshotRemovesAfterGrace(t *testing.T) {
	board, _, sched, _, _ := newTestBoard(t)

	board.Apply(order(1, enums.OrderStatusPending))
	board.Apply(order(1, enums.OrderStatusCompleted))

	snap := board.Snapshot()
	require.Len(t, snap.Cards, 1)
	assert.True(t, snap.Cards[0].Removing)
	assert.Equal(t, enums.OrderStatusCompleted, snap.Cards[0].Status)

	sched.fire(testConfig().RemovalGrace)
	assert.Empty(t, board.Snapshot().Cards)
}

func TestTerminalSnapshotForUnknownOrderIsIgnored(t *testing.T) {
	board, _, _, alerter, _ := newTestBoard(t)

	board.Apply(order(9, enums.OrderStatusCancelled))
	assert.Empty(t, board.Snapshot().Cards)
	assert.Equal(t, 0, alerter.count)
}

func TestLateSnapshotRescuesCardInGracePeriod(t *testing.T) {
	board, _, sched, _, _ := newTestBoard(t)

	board.Apply(order(1, enums.OrderStatusPending))
	board.Apply(order(1, enums.OrderStatusCancelled))
	require.Equal(t, 1, sched.pending(testConfig().RemovalGrace))

	board.Apply(order(1, enums.OrderStatusPreparing))
	assert.Equal(t, 0, sched.pending(testConfig().RemovalGrace), "removal cancelled")

	snap := board.Snapshot()
	require.Len(t, snap.Cards, 1)
	assert.False(t, snap.Cards[0].Removing)
	assert.Equal(t, enums.OrderStatusPreparing, snap.Cards[0].Status)
}

func TestRequestStatusChangeIssuesSingleAllowedTransition(t *testing.T) {
	board, orders, _, _, _ := newTestBoard(t)

	board.Apply(order(1, enums.OrderStatusPending))
	require.NoError(t, board.RequestStatusChange(context.Background(), 1))
	assert.Equal(t, []enums.OrderStatus{enums.OrderStatusPreparing}, orders.statuses)

	// Not optimistic: the card stays PENDING until a snapshot echoes back.
	assert.Equal(t, enums.OrderStatusPending, board.Snapshot().Cards[0].Status)

	board.Apply(order(1, enums.OrderStatusPreparing))
	require.NoError(t, board.RequestStatusChange(context.Background(), 1))
	assert.Equal(t, enums.OrderStatusReady, orders.statuses[1])
}

func TestRequestStatusChangeFailureLeavesBoardUntouched(t *testing.T) {
	board, orders, _, _, _ := newTestBoard(t)
	orders.updateErr = pkgerrors.New(pkgerrors.CodeBackend, "backend down")

	board.Apply(order(1, enums.OrderStatusPending))
	err := board.RequestStatusChange(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, enums.OrderStatusPending, board.Snapshot().Cards[0].Status)
}

func TestRequestStatusChangeRejectsUnknownOrder(t *testing.T) {
	board, orders, _, _, _ := newTestBoard(t)

	err := board.RequestStatusChange(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
	assert.Empty(t, orders.patched)
}

func TestSetConnectionReflectedInSnapshot(t *testing.T) {
	board, _, _, _, listener := newTestBoard(t)

	board.SetConnection(feed.StateConnected)
	assert.Equal(t, feed.StateConnected, board.Snapshot().Connection)
	require.NotEmpty(t, listener.snapshots)
	assert.Equal(t, feed.StateConnected, listener.snapshots[len(listener.snapshots)-1].Connection)
}
