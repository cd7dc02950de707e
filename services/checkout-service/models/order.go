package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks how far a checkout attempt has progressed.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCommitted OrderStatus = "committed"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusCommitted: {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid order status")
}

// OrderItem is one purchased line, copied verbatim from the checkout event.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// Order is an immutable record of one completed checkout. The composite key
// (UserName, OrderDate) is unique: the checkout service assigns a fresh
// ISO-8601 OrderDate per processed event, so order history is append-only.
type Order struct {
	UserName   string          `json:"userName"`
	OrderDate  string          `json:"orderDate"`
	RequestID  string          `json:"requestId,omitempty"`
	FirstName  string          `json:"firstName,omitempty"`
	LastName   string          `json:"lastName,omitempty"`
	Email      string          `json:"email,omitempty"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Items      []OrderItem     `json:"items"`
	Status     OrderStatus     `json:"status"`
}
