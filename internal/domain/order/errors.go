package order

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Sentinel errors for order validation and lookup.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// InvalidQuantityError indicates a cart line with a non-positive quantity.
type InvalidQuantityError struct {
	VariantID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for variant %s", e.VariantID)
}

// IncompleteShippingError indicates required shipping fields were left empty.
type IncompleteShippingError struct {
	Missing []string
}

func (e *IncompleteShippingError) Error() string {
	return "incomplete shipping address: missing " + strings.Join(e.Missing, ", ")
}

// VariantUnavailableError indicates cart variants that no longer exist or were
// disabled between cart-build and checkout. The caller must rebuild the cart;
// lines are never silently dropped.
type VariantUnavailableError struct {
	VariantIDs []string
}

func (e *VariantUnavailableError) Error() string {
	return "variants unavailable: " + strings.Join(e.VariantIDs, ", ")
}

// InvalidTransitionError indicates a status change the fulfillment state
// machine does not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
