// Package contracts defines the wire types carried on the checkout event
// bus and the acknowledgment topic. Both services marshal and unmarshal
// these shapes, so they live outside either service tree.
package contracts

import (
	"github.com/shopspring/decimal"
)

// Event bus routing tags for the checkout saga.
const (
	SourceCartCheckout     = "com.shoppingCart.cart.cartCheckout"
	DetailTypeCartCheckout = "CartCheckout"

	SourceCheckoutAck     = "com.shoppingCart.cart.checkoutAck"
	DetailTypeCheckoutAck = "CheckoutAck"
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// EventItem is a single cart line as it appears on the wire.
type EventItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// CheckoutEvent is published by the cart service when a user checks out.
// TotalPrice is computed once at publish time and never recomputed
// downstream. RequestID is assigned at publish time and lets the checkout
// service deduplicate redeliveries; consumers must tolerate its absence.
type CheckoutEvent struct {
	RequestID  string          `json:"requestId,omitempty"`
	UserName   string          `json:"userName"`
	FirstName  string          `json:"firstName,omitempty"`
	LastName   string          `json:"lastName,omitempty"`
	Email      string          `json:"email,omitempty"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Items      []EventItem     `json:"items"`
}

// CheckoutAck flows back from the checkout service once an order has been
// durably recorded. It is a transient message, never persisted.
type CheckoutAck struct {
	UserName       string `json:"userName"`
	EventAck       bool   `json:"eventAck"`
	EventProcessed bool   `json:"eventProcessed"`
}
