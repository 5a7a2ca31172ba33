// Package member holds the loyalty program member model.
package member

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a member does not exist or is inactive.
	ErrNotFound = errors.New("member not found")
	// ErrInsufficientPoints is returned when a redemption would take the
	// member's balance below zero.
	ErrInsufficientPoints = errors.New("insufficient points balance")
)

// Member is a loyalty program participant. PointsBalance is the cached sum of
// the member's ledger entries; the two are kept in step by updating both
// inside the same transaction.
type Member struct {
	ID              string
	Email           string
	Active          bool
	DiscountPercent decimal.Decimal
	PointsBalance   int64
}

// Repository defines read access to members. Balance mutations never go
// through here; they ride inside the order award and reward redemption
// transactions.
type Repository interface {
	// GetByID returns an active member, or ErrNotFound when the member does
	// not exist or has been deactivated.
	GetByID(ctx context.Context, id string) (*Member, error)
}
