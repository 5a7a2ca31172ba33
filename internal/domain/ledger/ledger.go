// Package ledger holds the append-only loyalty points ledger. Every balance
// change has exactly one entry here, written in the same transaction as the
// balance update, so a member's balance always equals the sum of their
// entries.
package ledger

import (
	"context"
	"time"
)

// ReferenceType identifies what kind of record a ledger entry points at.
type ReferenceType string

const (
	ReferenceOrder  ReferenceType = "order"
	ReferenceReward ReferenceType = "reward"
)

// Entry is a single points movement. Positive ChangeAmount is a credit,
// negative a debit. Entries are never updated or deleted.
type Entry struct {
	ID            string
	MemberID      string
	ChangeAmount  int64
	Reason        string
	ReferenceType ReferenceType
	ReferenceID   string
	CreatedAt     time.Time
}

// Repository defines read access to the ledger. Writes happen only inside the
// order award and reward redemption transactions.
type Repository interface {
	// ListByMember returns a member's entries, newest first.
	ListByMember(ctx context.Context, memberID string) ([]Entry, error)
	// SumForMember returns the sum of the member's change amounts, which
	// must equal the member's points balance.
	SumForMember(ctx context.Context, memberID string) (int64, error)
}
