package reward

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/quietline/storefront/internal/domain/ledger"
)

// ErrUnavailable is returned when a reward type does not exist or is no
// longer active.
var ErrUnavailable = errors.New("reward unavailable")

// Type is a redeemable reward offered in exchange for loyalty points.
type Type struct {
	ID         string
	Name       string
	PointsCost int64
	ValueCents int64
	Active     bool
}

// Status is the lifecycle state of a minted voucher.
type Status string

const (
	StatusActive  Status = "active"
	StatusUsed    Status = "used"
	StatusExpired Status = "expired"
)

// Redeemed is a voucher minted in exchange for points. PointsSpent snapshots
// the reward's cost at redemption time; later price changes do not affect
// history.
type Redeemed struct {
	ID           string
	RewardTypeID string
	MemberID     string
	VoucherCode  string
	PointsSpent  int64
	Status       Status
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// RedeemParams is the atomic storage unit for a redemption: conditionally
// debit the member's balance, insert the voucher, and append the ledger
// entry, all in one transaction. A failure partway leaves no state behind.
type RedeemParams struct {
	Redeemed Redeemed
	Entry    ledger.Entry
}

// Repository defines persistence operations for reward types and vouchers.
type Repository interface {
	// GetType returns an active reward type, or ErrUnavailable when the
	// reward does not exist or has been deactivated.
	GetType(ctx context.Context, id string) (*Type, error)
	ListTypes(ctx context.Context) ([]Type, error)
	// Redeem applies the debit-mint-append unit. The balance check is a
	// conditional update at the storage layer; an insufficient balance
	// surfaces member.ErrInsufficientPoints with nothing written.
	Redeem(ctx context.Context, params RedeemParams) error
	ListByMember(ctx context.Context, memberID string) ([]Redeemed, error)
	// MarkExpired transitions active vouchers past their expiry to expired
	// and reports how many were affected.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}
