// Package view renders the client surfaces to a terminal. Every renderer
// takes a prepared view model; no package here talks to the network.
package view

import (
	"fmt"
	"io"
	"sync"

	"github.com/smartcafe/smartcafe-client/internal/cart"
	"github.com/smartcafe/smartcafe-client/internal/history"
	"github.com/smartcafe/smartcafe-client/internal/kitchen"
	"github.com/smartcafe/smartcafe-client/pkg/api"
	"github.com/smartcafe/smartcafe-client/pkg/enums"
	"github.com/smartcafe/smartcafe-client/pkg/feed"
)

// StatusBadge maps an order status to its short display label.
func StatusBadge(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusPending:
		return "[PENDING]"
	case enums.OrderStatusPreparing:
		return "[PREPARING]"
	case enums.OrderStatusReady:
		return "[READY]"
	case enums.OrderStatusCompleted:
		return "[DONE]"
	case enums.OrderStatusCancelled:
		return "[CANCELLED]"
	default:
		return "[" + status.String() + "]"
	}
}

// Terminal writes the customer and kitchen surfaces to a writer. Writes are
// serialized so the feed goroutine and the input loop do not interleave.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal builds a terminal UI over the writer.
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

// Notify prints a transient toast line.
func (t *Terminal) Notify(level cart.NoticeLevel, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch level {
	case cart.NoticeError:
		fmt.Fprintf(t.out, "!! %s\n", message)
	case cart.NoticeSuccess:
		fmt.Fprintf(t.out, "** %s\n", message)
	default:
		fmt.Fprintf(t.out, "-- %s\n", message)
	}
}

// Alert rings the terminal bell for a new kitchen order.
func (t *Terminal) Alert() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.out, "\a")
}

// RenderCart prints the cart panel.
func (t *Terminal) RenderCart(v cart.View) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintln(t.out, "=== Your Cart ===")
	if v.Empty {
		fmt.Fprintln(t.out, "Your cart is empty")
		return
	}
	for _, line := range v.Lines {
		fmt.Fprintf(t.out, "%dx %-24s %10s\n", line.Quantity, line.Name, FormatRupiah(line.Subtotal))
	}
	fmt.Fprintf(t.out, "Total (%d items): %s\n", v.ItemCount, FormatRupiah(v.Total))
}

// RenderCatalog prints the product list for one menu tab.
func (t *Terminal) RenderCatalog(products []api.Product) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(products) == 0 {
		fmt.Fprintln(t.out, "No products in this category")
		return
	}
	for _, p := range products {
		marker := " "
		if !p.Available || p.Stock == 0 {
			marker = "x"
		}
		fmt.Fprintf(t.out, "[%s] #%-3d %-24s %10s  stock=%d\n", marker, p.ID, p.Name, FormatRupiah(p.Price), p.Stock)
	}
}

// RenderHistory prints one of the four history panels.
func (t *Terminal) RenderHistory(v history.View) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch v.State {
	case history.StatePrompt:
		fmt.Fprintln(t.out, "Enter your name to see your orders")
	case history.StateEmpty:
		fmt.Fprintf(t.out, "No orders yet for %s\n", v.CustomerName)
	case history.StateError:
		fmt.Fprintf(t.out, "Could not load orders: %s\n", v.Message)
	case history.StateTable:
		fmt.Fprintf(t.out, "=== Orders for %s ===\n", v.CustomerName)
		for _, row := range v.Rows {
			fmt.Fprintf(t.out, "#%-4d %-18s %-12s %10s  %s\n",
				row.OrderID, row.PlacedAt, row.Status, FormatRupiah(row.TotalAmount), row.ItemSummary)
		}
	}
}

// OnBoard repaints the kitchen board from a snapshot.
func (t *Terminal) OnBoard(snapshot kitchen.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "=== Kitchen Board (%s) ===\n", connectionLabel(snapshot.Connection))
	if len(snapshot.Cards) == 0 {
		fmt.Fprintln(t.out, "No active orders")
		return
	}
	for _, card := range snapshot.Cards {
		fmt.Fprintf(t.out, "%s #%d %s %s %s%s\n",
			StatusBadge(card.Status), card.OrderID, card.CustomerName, card.PlacedAt,
			FormatRupiah(card.TotalAmount), cardMarks(card))
		for _, item := range card.Items {
			line := fmt.Sprintf("    %dx %s", item.Quantity, item.Name)
			if item.ProductType != "" {
				line += " [" + item.ProductType + "]"
			}
			if item.SpecialRequests != "" {
				line += " (" + item.SpecialRequests + ")"
			}
			fmt.Fprintln(t.out, line)
		}
		if card.Notes != "" {
			fmt.Fprintf(t.out, "    note: %s\n", card.Notes)
		}
	}
}

func cardMarks(card kitchen.Card) string {
	switch {
	case card.Removing:
		return " (leaving)"
	case card.New:
		return " (NEW)"
	case card.Updated:
		return " (updated)"
	default:
		return ""
	}
}

func connectionLabel(state feed.State) string {
	switch state {
	case feed.StateConnected:
		return "live"
	case feed.StateConnecting:
		return "connecting"
	default:
		return "offline, retrying"
	}
}
