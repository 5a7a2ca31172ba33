package reward

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/quietline/storefront/internal/domain/ledger"
	"github.com/quietline/storefront/internal/domain/member"
)

// voucherValidityMonths is how long a minted voucher stays redeemable.
const voucherValidityMonths = 12

// Service encapsulates reward redemption business logic.
type Service struct {
	rewards Repository

	// voucherCode mints unique human-typeable voucher codes. Uniqueness is
	// the only contract; the format is a wiring concern.
	voucherCode func() string
	now         func() time.Time
}

// NewService creates a reward Service with the required dependencies.
func NewService(rewards Repository, voucherCode func() string) *Service {
	return &Service{
		rewards:     rewards,
		voucherCode: voucherCode,
		now:         time.Now,
	}
}

// Redeem exchanges points for a voucher. The reward type must exist and be
// active; the member must hold at least the reward's cost in points. The
// debit, voucher insert, and ledger append happen as one atomic storage unit,
// so the member is never debited without a voucher or vice versa.
func (s *Service) Redeem(ctx context.Context, memberID, rewardTypeID string) (*Redeemed, error) {
	rt, err := s.rewards.GetType(ctx, rewardTypeID)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, ErrUnavailable
		}
		return nil, errors.Wrap(err, "get reward type")
	}

	now := s.now()
	red := Redeemed{
		ID:           uuid.New().String(),
		RewardTypeID: rt.ID,
		MemberID:     memberID,
		VoucherCode:  s.voucherCode(),
		PointsSpent:  rt.PointsCost,
		Status:       StatusActive,
		ExpiresAt:    now.AddDate(0, voucherValidityMonths, 0),
		CreatedAt:    now,
	}

	err = s.rewards.Redeem(ctx, RedeemParams{
		Redeemed: red,
		Entry: ledger.Entry{
			MemberID:      memberID,
			ChangeAmount:  -rt.PointsCost,
			Reason:        fmt.Sprintf("redeemed reward %q", rt.Name),
			ReferenceType: ledger.ReferenceReward,
			ReferenceID:   red.ID,
		},
	})
	if err != nil {
		if errors.Is(err, member.ErrInsufficientPoints) || errors.Is(err, member.ErrNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "redeem reward")
	}

	return &red, nil
}

// ListTypes returns the active reward catalog.
func (s *Service) ListTypes(ctx context.Context) ([]Type, error) {
	return s.rewards.ListTypes(ctx)
}

// ListByMember returns a member's redeemed vouchers, newest first.
func (s *Service) ListByMember(ctx context.Context, memberID string) ([]Redeemed, error) {
	return s.rewards.ListByMember(ctx, memberID)
}

// ExpireVouchers sweeps active vouchers past their expiry into the expired
// state. Intended for a periodic maintenance job.
func (s *Service) ExpireVouchers(ctx context.Context) (int64, error) {
	return s.rewards.MarkExpired(ctx, s.now())
}
