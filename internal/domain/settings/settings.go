// Package settings holds store-wide configuration read at operation time.
package settings

import (
	"context"

	"github.com/shopspring/decimal"
)

// Settings are the live store-wide rates. They are read fresh for every
// pricing and award operation; changes apply to subsequent orders only, never
// retroactively.
type Settings struct {
	// GlobalDiscountPercent applies to every order unless the member's own
	// rate is higher.
	GlobalDiscountPercent decimal.Decimal
	// PointsPerDollarSpent is the accrual rate for the loyalty program,
	// applied to the post-discount order total.
	PointsPerDollarSpent decimal.Decimal
}

// Repository defines read access to the settings row.
type Repository interface {
	Get(ctx context.Context) (Settings, error)
}
