package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks an order (and each of its items) through fulfilment.
type OrderStatus string

const (
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusReturnRequested OrderStatus = "return_requested"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturnRequested,
}

// Labels persisted by the legacy storefront before statuses were normalized.
var legacyOrderStatusLabels = map[string]OrderStatus{
	"قيد المعالجة":     OrderStatusProcessing,
	"تم التسليم":       OrderStatusDelivered,
	"تم الإلغاء":       OrderStatusCancelled,
	"طلب استرجاع":      OrderStatusReturnRequested,
	"return-requested": OrderStatusReturnRequested,
	"canceled":         OrderStatusCancelled,
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusReturnRequested},
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

// IsTerminal reports whether no further transition leaves this status.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is permitted.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input, including legacy labels, into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	trimmed := strings.TrimSpace(value)
	if mapped, ok := legacyOrderStatusLabels[trimmed]; ok {
		return mapped, nil
	}
	lowered := strings.ToLower(trimmed)
	for _, candidate := range validOrderStatuses {
		if string(candidate) == lowered {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
