package reward

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietline/storefront/internal/domain/ledger"
	"github.com/quietline/storefront/internal/domain/member"
)

// --- Mock implementations ---

type mockRewardRepo struct {
	types map[string]*Type

	redeemed  []RedeemParams
	redeemErr error

	expired int64
}

func (m *mockRewardRepo) GetType(_ context.Context, id string) (*Type, error) {
	rt, ok := m.types[id]
	if !ok || !rt.Active {
		return nil, ErrUnavailable
	}
	return rt, nil
}

func (m *mockRewardRepo) ListTypes(_ context.Context) ([]Type, error) {
	return nil, nil
}

func (m *mockRewardRepo) Redeem(_ context.Context, params RedeemParams) error {
	if m.redeemErr != nil {
		return m.redeemErr
	}
	m.redeemed = append(m.redeemed, params)
	return nil
}

func (m *mockRewardRepo) ListByMember(_ context.Context, _ string) ([]Redeemed, error) {
	return nil, nil
}

func (m *mockRewardRepo) MarkExpired(_ context.Context, _ time.Time) (int64, error) {
	return m.expired, nil
}

// --- Helpers ---

func newRewardRepo(types ...Type) *mockRewardRepo {
	byID := make(map[string]*Type, len(types))
	for i := range types {
		byID[types[i].ID] = &types[i]
	}
	return &mockRewardRepo{types: byID}
}

func newTestService(repo *mockRewardRepo) *Service {
	svc := NewService(repo, func() string { return "Q7H4-M2XW-9KPD" })
	svc.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

var creditReward = Type{
	ID:         "credit-25",
	Name:       "$25 Store Credit",
	PointsCost: 25,
	ValueCents: 2500,
	Active:     true,
}

// --- Tests ---

func TestRedeem_UnknownReward(t *testing.T) {
	svc := newTestService(newRewardRepo())

	_, err := svc.Redeem(context.Background(), "m1", "missing")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestRedeem_InactiveReward(t *testing.T) {
	retired := creditReward
	retired.Active = false
	svc := newTestService(newRewardRepo(retired))

	_, err := svc.Redeem(context.Background(), "m1", retired.ID)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestRedeem_InsufficientPoints(t *testing.T) {
	repo := newRewardRepo(creditReward)
	repo.redeemErr = member.ErrInsufficientPoints
	svc := newTestService(repo)

	_, err := svc.Redeem(context.Background(), "m1", creditReward.ID)
	require.ErrorIs(t, err, member.ErrInsufficientPoints)
	assert.Empty(t, repo.redeemed)
}

func TestRedeem_MemberNotFound(t *testing.T) {
	repo := newRewardRepo(creditReward)
	repo.redeemErr = member.ErrNotFound
	svc := newTestService(repo)

	_, err := svc.Redeem(context.Background(), "ghost", creditReward.ID)
	require.ErrorIs(t, err, member.ErrNotFound)
}

func TestRedeem_Success(t *testing.T) {
	repo := newRewardRepo(creditReward)
	svc := newTestService(repo)

	red, err := svc.Redeem(context.Background(), "m1", creditReward.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, red.ID)
	assert.Equal(t, creditReward.ID, red.RewardTypeID)
	assert.Equal(t, "m1", red.MemberID)
	assert.Equal(t, "Q7H4-M2XW-9KPD", red.VoucherCode)
	assert.Equal(t, int64(25), red.PointsSpent)
	assert.Equal(t, StatusActive, red.Status)

	// Vouchers are valid for a year from minting.
	assert.Equal(t, time.Date(2027, 8, 30, 12, 0, 0, 0, time.UTC), red.ExpiresAt)

	require.Len(t, repo.redeemed, 1)
	params := repo.redeemed[0]
	assert.Equal(t, *red, params.Redeemed)
	assert.Equal(t, "m1", params.Entry.MemberID)
	assert.Equal(t, int64(-25), params.Entry.ChangeAmount)
	assert.Equal(t, ledger.ReferenceReward, params.Entry.ReferenceType)
	assert.Equal(t, red.ID, params.Entry.ReferenceID)
	assert.Contains(t, params.Entry.Reason, creditReward.Name)
}

func TestRedeem_StorageError(t *testing.T) {
	repo := newRewardRepo(creditReward)
	repo.redeemErr = errors.New("db down")
	svc := newTestService(repo)

	_, err := svc.Redeem(context.Background(), "m1", creditReward.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redeem reward")
}

func TestExpireVouchers(t *testing.T) {
	repo := newRewardRepo()
	repo.expired = 3
	svc := newTestService(repo)

	n, err := svc.ExpireVouchers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
