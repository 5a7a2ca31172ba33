package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietline/storefront/internal/domain/catalog"
	"github.com/quietline/storefront/internal/domain/ledger"
	"github.com/quietline/storefront/internal/domain/member"
	"github.com/quietline/storefront/internal/domain/order"
	"github.com/quietline/storefront/internal/domain/reward"
	"github.com/quietline/storefront/internal/domain/settings"
)

// store is an in-memory stand-in for the database that mimics the real
// repositories' transactional behaviour: every balance change appends a
// ledger entry in the same operation, and the redemption debit is refused
// when the balance would go negative.
type store struct {
	balance int64
	entries []ledger.Entry
	orders  map[string]*order.Order
}

func (s *store) append(e ledger.Entry) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()
	s.entries = append(s.entries, e)
}

func (s *store) sum() int64 {
	var total int64
	for _, e := range s.entries {
		total += e.ChangeAmount
	}
	return total
}

// order.Repository

func (s *store) Create(_ context.Context, o *order.Order) error {
	s.orders[o.ID] = o
	return nil
}

func (s *store) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return o, nil
}

func (s *store) ListByMember(_ context.Context, _ string) ([]order.Order, error) {
	return nil, nil
}

func (s *store) UpdateStatus(_ context.Context, id string, status order.Status) error {
	o, ok := s.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	return nil
}

func (s *store) AwardPoints(_ context.Context, award order.PointsAward) (bool, error) {
	o, ok := s.orders[award.OrderID]
	if !ok || o.PointsEarned != 0 {
		return false, nil
	}
	o.PointsEarned = award.Points
	s.balance += award.Points
	s.append(award.Entry)
	return true, nil
}

// reward.Repository, split out because its method set collides with the
// order repository's.

var creditReward = reward.Type{
	ID:         "credit-25",
	Name:       "$25 Store Credit",
	PointsCost: 25,
	ValueCents: 2500,
	Active:     true,
}

type rewardRepo struct{ s *store }

func (rewardRepo) GetType(_ context.Context, id string) (*reward.Type, error) {
	if id != creditReward.ID {
		return nil, reward.ErrUnavailable
	}
	rt := creditReward
	return &rt, nil
}

func (rewardRepo) ListTypes(_ context.Context) ([]reward.Type, error) {
	return []reward.Type{creditReward}, nil
}

func (r rewardRepo) Redeem(_ context.Context, params reward.RedeemParams) error {
	if r.s.balance < params.Redeemed.PointsSpent {
		return member.ErrInsufficientPoints
	}
	r.s.balance -= params.Redeemed.PointsSpent
	r.s.append(params.Entry)
	return nil
}

func (rewardRepo) ListByMember(_ context.Context, _ string) ([]reward.Redeemed, error) {
	return nil, nil
}

func (rewardRepo) MarkExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

// member / catalog / settings lookups

func (s *store) memberRepo() memberRepo { return memberRepo{s} }

type memberRepo struct{ s *store }

func (r memberRepo) GetByID(_ context.Context, id string) (*member.Member, error) {
	return &member.Member{
		ID:            id,
		Email:         id + "@example.com",
		Active:        true,
		PointsBalance: r.s.balance,
	}, nil
}

type variantRepo struct{}

func (variantRepo) List(_ context.Context) ([]catalog.Variant, error) { return nil, nil }

func (variantRepo) GetByIDs(_ context.Context, ids []string) ([]catalog.Variant, error) {
	out := make([]catalog.Variant, len(ids))
	for i, id := range ids {
		out[i] = catalog.Variant{
			ID:          id,
			ProductID:   "wave-baffle",
			ProductName: "Wave Ceiling Baffle",
			Thickness:   "25mm",
			Size:        "1200x300mm",
			FaceColor:   "Slate",
			PriceCents:  500000, // $5000 per unit earns 50 points on delivery
			Available:   true,
		}
	}
	return out, nil
}

type settingsRepo struct{}

func (settingsRepo) Get(_ context.Context) (settings.Settings, error) {
	return settings.Settings{
		GlobalDiscountPercent: decimal.Zero,
		PointsPerDollarSpent:  decimal.RequireFromString("0.01"),
	}, nil
}

// TestBalanceMatchesLedger drives the full earn/spend cycle through the real
// services and checks the reconciliation invariant after every step: the
// member's balance always equals the sum of their ledger entries.
func TestBalanceMatchesLedger(t *testing.T) {
	ctx := context.Background()
	s := &store{orders: make(map[string]*order.Order)}

	orderSvc := order.NewService(variantRepo{}, s.memberRepo(), settingsRepo{}, s,
		func() string { return "AP-20260830-" + uuid.NewString()[:6] })
	rewardSvc := reward.NewService(rewardRepo{s}, func() string { return uuid.NewString() })

	shipping := order.Shipping{
		FirstName: "Ada", LastName: "Marsh", Line1: "12 Felt St",
		City: "Brunswick", State: "VIC", Postcode: "3056",
	}

	verify := func() {
		t.Helper()
		assert.Equal(t, s.balance, s.sum(), "balance diverged from ledger sum")
	}

	// Three orders placed and delivered, 50 points each.
	var orderIDs []string
	for range 3 {
		o, err := orderSvc.Place(ctx, order.PlaceRequest{
			MemberID: "m1",
			Lines:    []order.CartLine{{VariantID: "wave-25-1200-slate", Quantity: 1}},
			Shipping: shipping,
		})
		require.NoError(t, err)
		orderIDs = append(orderIDs, o.ID)
		verify()

		_, err = orderSvc.UpdateStatus(ctx, o.ID, order.StatusDelivered)
		require.NoError(t, err)
		verify()
	}
	require.Equal(t, int64(150), s.balance)

	// Redeliver: no double credit.
	_, err := orderSvc.UpdateStatus(ctx, orderIDs[0], order.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, int64(150), s.balance)
	verify()

	// Spend down in 25 point increments.
	for range 6 {
		_, err := rewardSvc.Redeem(ctx, "m1", "credit-25")
		require.NoError(t, err)
		verify()
	}
	assert.Equal(t, int64(0), s.balance)

	// Nothing left: the debit is refused and the ledger untouched.
	_, err = rewardSvc.Redeem(ctx, "m1", "credit-25")
	require.ErrorIs(t, err, member.ErrInsufficientPoints)
	verify()

	assert.Len(t, s.entries, 9)
}
