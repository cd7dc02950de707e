package models

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CartItem is a single product line in a user's cart.
type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

// Cart holds the pending items for one user. UserName is the store key.
type Cart struct {
	UserName string     `json:"userName"`
	Items    []CartItem `json:"items"`
}

// TotalPrice sums price*quantity over all items. Decimal arithmetic keeps
// the sum exact regardless of item ordering.
func (c Cart) TotalPrice() decimal.Decimal {
	return lo.Reduce(c.Items, func(total decimal.Decimal, item CartItem, _ int) decimal.Decimal {
		return total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}, decimal.Zero)
}

// CheckoutRequest is the payload POSTed to /cart/checkout. Only UserName is
// required; the rest is passed through onto the checkout event.
type CheckoutRequest struct {
	UserName  string `json:"userName"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}
