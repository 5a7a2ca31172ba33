package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a discount code does not exist or is inactive.
var ErrNotFound = errors.New("discount code not found")

// Code is an admin-managed promotional discount code. Codes are ingested in
// bulk from partner dumps and surfaced to the storefront for display; order
// pricing itself applies the member/global rate, not codes.
type Code struct {
	Code        string
	Percent     decimal.Decimal
	Description string
	Active      bool
	ValidUntil  *time.Time
}

// Repository defines lookup and bulk-load operations for discount codes.
type Repository interface {
	// FindByCode looks up an active code, case-insensitively.
	FindByCode(ctx context.Context, code string) (*Code, error)
	// UpsertBatch inserts codes, ignoring ones already present. Used by the
	// bulk ingest tool.
	UpsertBatch(ctx context.Context, codes []Code) error
}
