// Package catalog holds the product catalog: acoustic panel variants priced
// in integer cents.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a variant does not exist or is unavailable.
var ErrNotFound = errors.New("variant not found")

// Variant is a purchasable panel configuration: a product in a specific
// thickness, size, and face color. Prices live here, not on the product.
type Variant struct {
	ID          string
	ProductID   string
	ProductName string
	Thickness   string
	Size        string
	FaceColor   string
	PriceCents  int64
	Available   bool
}

// Description renders the variant attributes for display and for snapshotting
// into order items.
func (v Variant) Description() string {
	return fmt.Sprintf("%s, %s, %s", v.Thickness, v.Size, v.FaceColor)
}

// Repository defines read access to the catalog.
type Repository interface {
	// List returns all available variants for storefront display.
	List(ctx context.Context) ([]Variant, error)
	// GetByIDs returns the available variants among the requested IDs.
	// Missing or disabled variants are absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]Variant, error)
}
