package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quietline/storefront/internal/domain/ledger"
)

// Status is the fulfillment state of an order. The progression is linear
// (pending through delivered) with cancelled as an absorbing alternate branch
// reachable from any non-terminal state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// statusRank orders the linear progression. Cancelled sits outside it.
var statusRank = map[Status]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

// ParseStatus converts a raw string into a Status.
// It returns ErrInvalidStatus for anything outside the known six values.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is legal. Re-saving the
// current status is allowed (an idempotent no-op for fulfillment purposes),
// cancellation is allowed from any non-terminal state, and the linear
// progression only moves forward.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

// Shipping holds the destination address captured at placement.
type Shipping struct {
	FirstName string
	LastName  string
	Line1     string
	Line2     string
	City      string
	State     string
	Postcode  string
	Phone     string
}

// missingFields returns the names of required shipping fields that are empty.
func (s Shipping) missingFields() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"firstName", s.FirstName},
		{"lastName", s.LastName},
		{"line1", s.Line1},
		{"city", s.City},
		{"state", s.State},
		{"postcode", s.Postcode},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// Item is a single order line. Product name, variant description, and unit
// price are snapshotted from the catalog at placement so historical orders
// are decoupled from later price and name changes.
type Item struct {
	ProductName        string
	VariantDescription string
	Quantity           int
	UnitPriceCents     int64
	LineTotalCents     int64
}

// Order is a priced, persisted customer order. Subtotal, discount, and total
// are immutable after creation; status and PointsEarned are the only fields
// mutated afterwards.
type Order struct {
	ID                  string
	Number              string
	MemberID            string
	Status              Status
	SubtotalCents       int64
	DiscountPercent     decimal.Decimal
	DiscountAmountCents int64
	TotalCents          int64
	PointsEarned        int64
	Shipping            Shipping
	Notes               string
	Items               []Item
	CreatedAt           time.Time
}

// PointsAward is the atomic storage unit for crediting loyalty points on
// delivery: set the order's PointsEarned, add to the member's balance, and
// append the ledger entry, all in one transaction.
type PointsAward struct {
	OrderID  string
	MemberID string
	Points   int64
	Entry    ledger.Entry
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order header and its items as one transaction.
	// No partial order is ever visible to readers.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByMember(ctx context.Context, memberID string) ([]Order, error)
	// UpdateStatus writes the new status. Returns ErrNotFound when the order
	// does not exist.
	UpdateStatus(ctx context.Context, id string, status Status) error
	// AwardPoints applies the three-way points credit guarded by a
	// conditional update on points_earned = 0. It returns false without
	// error when another writer already awarded points for this order.
	AwardPoints(ctx context.Context, award PointsAward) (bool, error)
}
