package enums

import "fmt"

// OrderStatus tracks the lifecycle of a cafe order. The backend owns every
// transition; clients only request them and render what the feed confirms.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the backend allows moving to target.
// Cancellation is only reachable from PENDING or PREPARING.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPreparing || target == OrderStatusCancelled
	case OrderStatusPreparing:
		return target == OrderStatusReady || target == OrderStatusCancelled
	case OrderStatusReady:
		return target == OrderStatusCompleted
	default:
		return false
	}
}

// NextKitchenAction returns the single transition kitchen staff may request
// from the current status, or false when no action exists. There is no
// client-side action towards CANCELLED.
func (s OrderStatus) NextKitchenAction() (OrderStatus, bool) {
	switch s {
	case OrderStatusPending:
		return OrderStatusPreparing, true
	case OrderStatusPreparing:
		return OrderStatusReady, true
	case OrderStatusReady:
		return OrderStatusCompleted, true
	default:
		return "", false
	}
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
