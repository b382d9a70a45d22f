// Package kitchen maintains the live order board: a newest-first card list
// driven entirely by full order snapshots from the feed.
package kitchen

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/config"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
	pkgerrors "github.com/smartcafe/smartcafe-client/pkg/errors"
	"github.com/smartcafe/smartcafe-client/pkg/feed"
	"github.com/smartcafe/smartcafe-client/pkg/logger"
	"github.com/smartcafe/smartcafe-client/pkg/metrics"
)

type ordersAPI interface {
	ActiveOrders(ctx context.Context) ([]api.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status enums.OrderStatus) (*api.Order, error)
}

// Alerter fires the audible new-order cue.
type Alerter interface {
	Alert()
}

// Listener receives a fresh board snapshot after every change.
type Listener interface {
	OnBoard(snapshot Snapshot)
}

// Card is one order on the board.
type Card struct {
	OrderID      int64
	CustomerName string
	PlacedAt     string
	Status       enums.OrderStatus
	TotalAmount  decimal.Decimal
	Notes        string
	Items        []CardItem

	// New and Updated are short-lived visual marks; Removing means a
	// terminal snapshot arrived and the card is in its grace period.
	New      bool
	Updated  bool
	Removing bool
}

// CardItem is one line on a card.
type CardItem struct {
	Quantity        int
	Name            string
	ProductType     string
	SpecialRequests string
}

// Snapshot is the immutable board state handed to the listener.
type Snapshot struct {
	Cards      []Card
	Connection feed.State
}

// BoardParams wires a board.
type BoardParams struct {
	Orders    ordersAPI
	Scheduler Scheduler
	Alerter   Alerter
	Listener  Listener
	Metrics   *metrics.FeedMetrics
	Logger    *logger.Logger
	Config    config.KitchenConfig
}

type boardEntry struct {
	card         Card
	clearNew     Cancel
	clearUpdated Cancel
	removal      Cancel
}

// Board owns the kitchen card list. All entry points are safe for concurrent
// use; the feed goroutine and scheduler callbacks serialize on the mutex.
type Board struct {
	mu         sync.Mutex
	order      []int64
	entries    map[int64]*boardEntry
	connection feed.State

	orders    ordersAPI
	scheduler Scheduler
	alerter   Alerter
	listener  Listener
	met       *metrics.FeedMetrics
	logg      *logger.Logger
	cfg       config.KitchenConfig
}

// NewBoard builds a kitchen board with the required dependencies.
func NewBoard(params BoardParams) (*Board, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders api required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	return &Board{
		entries:    make(map[int64]*boardEntry),
		connection: feed.StateDisconnected,
		orders:     params.Orders,
		scheduler:  params.Scheduler,
		alerter:    params.Alerter,
		listener:   params.Listener,
		met:        params.Metrics,
		logg:       params.Logger,
		cfg:        params.Config,
	}, nil
}

// Seed fills the board from the active-orders endpoint on cold start. Seeded
// cards never alert and carry no marks; terminal orders are skipped.
func (b *Board) Seed(ctx context.Context) error {
	orders, err := b.orders.ActiveOrders(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	for _, order := range orders {
		if order.Status.IsTerminal() {
			continue
		}
		if _, ok := b.entries[order.ID]; ok {
			continue
		}
		b.entries[order.ID] = &boardEntry{card: cardFrom(order)}
		b.order = append([]int64{order.ID}, b.order...)
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snapshot)
	return nil
}

// Apply folds one feed snapshot into the board. The snapshot is
// authoritative: a known card is replaced wholesale, an unknown non-terminal
// order becomes a new card at the top, and a terminal status starts the
// removal grace period.
func (b *Board) Apply(order api.Order) {
	b.mu.Lock()
	entry, known := b.entries[order.ID]

	switch {
	case order.Status.IsTerminal():
		if !known {
			b.mu.Unlock()
			return
		}
		entry.card = replaceCard(entry.card, order)
		b.startRemovalLocked(entry, order.ID)

	case !known:
		entry = &boardEntry{card: cardFrom(order)}
		entry.card.New = true
		b.entries[order.ID] = entry
		b.order = append([]int64{order.ID}, b.order...)
		entry.clearNew = b.scheduler.Schedule(b.cfg.NewMarkTTL, func() {
			b.clearMark(order.ID, markNew)
		})
		if b.alerter != nil {
			b.alerter.Alert()
		}

	default:
		// A late non-terminal snapshot can rescue a card already in its
		// grace period; the last message wins.
		if entry.removal != nil {
			entry.removal()
			entry.removal = nil
		}
		entry.card = replaceCard(entry.card, order)
		entry.card.Updated = true
		if entry.clearUpdated != nil {
			entry.clearUpdated()
		}
		entry.clearUpdated = b.scheduler.Schedule(b.cfg.UpdatedMarkTTL, func() {
			b.clearMark(order.ID, markUpdated)
		})
	}

	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snapshot)
}

// SetConnection records the feed state for the board banner.
func (b *Board) SetConnection(state feed.State) {
	b.mu.Lock()
	b.connection = state
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snapshot)
}

// RequestStatusChange issues the single allowed transition for the order's
// current status. The board is never updated optimistically; the change lands
// when its snapshot echoes back over the feed.
func (b *Board) RequestStatusChange(ctx context.Context, orderID int64) error {
	b.mu.Lock()
	entry, ok := b.entries[orderID]
	if !ok {
		b.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order #%d is not on the board", orderID))
	}
	current := entry.card.Status
	b.mu.Unlock()

	next, ok := current.NextKitchenAction()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("no further action for order #%d in status %s", orderID, current))
	}

	if _, err := b.orders.UpdateOrderStatus(ctx, orderID, next); err != nil {
		b.met.IncStatusChange("error")
		if b.logg != nil {
			b.logg.Error(ctx, "status change rejected", err)
		}
		return err
	}
	b.met.IncStatusChange("ok")
	return nil
}

// Snapshot returns the current board state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

type mark int

const (
	markNew mark = iota
	markUpdated
)

func (b *Board) clearMark(orderID int64, which mark) {
	b.mu.Lock()
	entry, ok := b.entries[orderID]
	if !ok {
		b.mu.Unlock()
		return
	}
	switch which {
	case markNew:
		entry.card.New = false
		entry.clearNew = nil
	case markUpdated:
		entry.card.Updated = false
		entry.clearUpdated = nil
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snapshot)
}

// startRemovalLocked marks the card and schedules its drop after the grace
// period. Callers hold b.mu.
func (b *Board) startRemovalLocked(entry *boardEntry, orderID int64) {
	if entry.removal != nil {
		return
	}
	entry.card.Removing = true
	entry.card.New = false
	entry.card.Updated = false
	entry.removal = b.scheduler.Schedule(b.cfg.RemovalGrace, func() {
		b.remove(orderID)
	})
}

func (b *Board) remove(orderID int64) {
	b.mu.Lock()
	entry, ok := b.entries[orderID]
	if !ok {
		b.mu.Unlock()
		return
	}
	if entry.clearNew != nil {
		entry.clearNew()
	}
	if entry.clearUpdated != nil {
		entry.clearUpdated()
	}
	delete(b.entries, orderID)
	for i, id := range b.order {
		if id == orderID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	snapshot := b.snapshotLocked()
	b.mu.Unlock()

	b.publish(snapshot)
}

func (b *Board) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		Cards:      make([]Card, 0, len(b.order)),
		Connection: b.connection,
	}
	for _, id := range b.order {
		entry := b.entries[id]
		card := entry.card
		card.Items = make([]CardItem, len(entry.card.Items))
		copy(card.Items, entry.card.Items)
		snapshot.Cards = append(snapshot.Cards, card)
	}
	return snapshot
}

func (b *Board) publish(snapshot Snapshot) {
	if b.listener != nil {
		b.listener.OnBoard(snapshot)
	}
}

func cardFrom(order api.Order) Card {
	card := Card{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		PlacedAt:     order.OrderTime.Format("15:04"),
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		Notes:        order.Notes,
		Items:        make([]CardItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		card.Items = append(card.Items, CardItem{
			Quantity:        item.Quantity,
			Name:            item.ProductName,
			ProductType:     item.ProductType,
			SpecialRequests: item.SpecialRequests,
		})
	}
	return card
}

// replaceCard rebuilds the card from the snapshot, keeping only the
// board-local marks that survive an update.
func replaceCard(prev Card, order api.Order) Card {
	card := cardFrom(order)
	card.New = prev.New
	return card
}
