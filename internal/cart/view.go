package cart

import "github.com/shopspring/decimal"

// View is the render-ready snapshot handed to the UI after each mutation.
type View struct {
	Lines     []LineView
	Total     decimal.Decimal
	ItemCount int
	Empty     bool
}

// LineView is one rendered cart row.
type LineView struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

// viewLocked builds a View; callers hold m.mu.
func (m *Manager) viewLocked() View {
	view := View{
		Lines: make([]LineView, 0, len(m.lines)),
		Total: decimal.Zero,
	}
	for _, line := range m.lines {
		subtotal := line.Subtotal()
		view.Lines = append(view.Lines, LineView{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
		})
		view.Total = view.Total.Add(subtotal)
		view.ItemCount += line.Quantity
	}
	view.Empty = len(view.Lines) == 0
	return view
}
