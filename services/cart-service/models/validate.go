package models

import (
	"fmt"

	apperrors "github.com/yashrajoria/shopping-cart-backend/services/common/errors"
)

// ValidateCart checks the schema-level invariants on a cart before it is
// stored: key present, at least one item, each item well formed.
func ValidateCart(cart Cart) error {
	if cart.UserName == "" {
		return apperrors.Validation("User Name is missing")
	}
	if len(cart.Items) == 0 {
		return apperrors.Validation("Cart Items are missing")
	}
	for i, item := range cart.Items {
		if err := validateItem(i, item); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(i int, item CartItem) error {
	if item.ProductID == "" {
		return apperrors.Validation(fmt.Sprintf("item %d: Product ID is missing", i))
	}
	if item.Price.IsNegative() {
		return apperrors.Validation(fmt.Sprintf("item %d: price must not be negative", i))
	}
	if item.Quantity < 1 {
		return apperrors.Validation(fmt.Sprintf("item %d: quantity must be at least 1", i))
	}
	return nil
}

// ValidateCheckoutRequest checks that a checkout request names its user.
func ValidateCheckoutRequest(req CheckoutRequest) error {
	if req.UserName == "" {
		return apperrors.Validation("User Name is missing")
	}
	return nil
}
