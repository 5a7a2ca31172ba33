package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/quietline/storefront/internal/domain/ledger"
)

// UpdateStatus moves an order through the fulfillment state machine and
// returns the updated order. Arriving at delivered for the first time
// triggers the loyalty points award.
//
// The award is guarded twice: the PointsEarned == 0 check here short-circuits
// the common re-save case, and the storage layer's conditional update inside
// AwardPoints guarantees at-most-once crediting even when two writers race
// on the same delivered transition.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next Status) (*Order, error) {
	if _, err := ParseStatus(string(next)); err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}

	prev := o.Status
	if !prev.CanTransition(next) {
		return nil, &InvalidTransitionError{From: prev, To: next}
	}

	if prev != next {
		if err := s.orders.UpdateStatus(ctx, orderID, next); err != nil {
			return nil, errors.Wrap(err, "update status")
		}
		o.Status = next
	}

	if next != StatusDelivered || prev == StatusDelivered || o.PointsEarned != 0 {
		return o, nil
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get settings")
	}

	points := PointsForTotal(o.TotalCents, cfg.PointsPerDollarSpent)
	if points <= 0 {
		return o, nil
	}

	awarded, err := s.orders.AwardPoints(ctx, PointsAward{
		OrderID:  o.ID,
		MemberID: o.MemberID,
		Points:   points,
		Entry: ledger.Entry{
			MemberID:      o.MemberID,
			ChangeAmount:  points,
			Reason:        fmt.Sprintf("points earned for order %s", o.Number),
			ReferenceType: ledger.ReferenceOrder,
			ReferenceID:   o.ID,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "award points")
	}
	if awarded {
		o.PointsEarned = points
	}

	return o, nil
}
