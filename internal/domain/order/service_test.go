package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietline/storefront/internal/domain/catalog"
	"github.com/quietline/storefront/internal/domain/member"
	"github.com/quietline/storefront/internal/domain/settings"
)

// --- Mock implementations ---

type mockVariantRepo struct {
	byID   map[string]catalog.Variant
	getErr error
}

func (m *mockVariantRepo) List(_ context.Context) ([]catalog.Variant, error) {
	return nil, nil
}

func (m *mockVariantRepo) GetByIDs(_ context.Context, ids []string) ([]catalog.Variant, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []catalog.Variant
	for _, id := range ids {
		if v, ok := m.byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type mockMemberRepo struct {
	members map[string]*member.Member
}

func (m *mockMemberRepo) GetByID(_ context.Context, id string) (*member.Member, error) {
	mem, ok := m.members[id]
	if !ok {
		return nil, member.ErrNotFound
	}
	return mem, nil
}

type mockSettingsRepo struct {
	cfg settings.Settings
	err error
}

func (m *mockSettingsRepo) Get(_ context.Context) (settings.Settings, error) {
	return m.cfg, m.err
}

type mockOrderRepo struct {
	byID map[string]*Order

	createdOrder *Order
	createErr    error

	updatedStatus Status
	updateErr     error

	awards    []PointsAward
	awardOK   bool
	awardErr  error
	awardCall int
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	m.createdOrder = o
	return m.createErr
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockOrderRepo) ListByMember(_ context.Context, _ string) ([]Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedStatus = status
	if o, ok := m.byID[id]; ok {
		o.Status = status
	}
	return nil
}

func (m *mockOrderRepo) AwardPoints(_ context.Context, award PointsAward) (bool, error) {
	m.awardCall++
	if m.awardErr != nil {
		return false, m.awardErr
	}
	m.awards = append(m.awards, award)
	return m.awardOK, nil
}

// --- Helpers ---

func newTestVariant(id string, priceCents int64) catalog.Variant {
	return catalog.Variant{
		ID:          id,
		ProductID:   "studio-panel",
		ProductName: "Studio Broadband Panel",
		Thickness:   "50mm",
		Size:        "600x600mm",
		FaceColor:   "Natural Oak",
		PriceCents:  priceCents,
		Available:   true,
	}
}

func newVariantRepo(variants ...catalog.Variant) *mockVariantRepo {
	byID := make(map[string]catalog.Variant, len(variants))
	for _, v := range variants {
		byID[v.ID] = v
	}
	return &mockVariantRepo{byID: byID}
}

func newMemberRepo(members ...*member.Member) *mockMemberRepo {
	byID := make(map[string]*member.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	return &mockMemberRepo{members: byID}
}

func testSettings(global, perDollar string) *mockSettingsRepo {
	return &mockSettingsRepo{cfg: settings.Settings{
		GlobalDiscountPercent: decimal.RequireFromString(global),
		PointsPerDollarSpent:  decimal.RequireFromString(perDollar),
	}}
}

func testMember(id, discount string) *member.Member {
	return &member.Member{
		ID:              id,
		Email:           id + "@example.com",
		Active:          true,
		DiscountPercent: decimal.RequireFromString(discount),
	}
}

func validShipping() Shipping {
	return Shipping{
		FirstName: "Ada",
		LastName:  "Marsh",
		Line1:     "12 Felt St",
		City:      "Brunswick",
		State:     "VIC",
		Postcode:  "3056",
	}
}

func newTestService(variants *mockVariantRepo, members *mockMemberRepo, cfg *mockSettingsRepo, orders *mockOrderRepo) *Service {
	return NewService(variants, members, cfg, orders, func() string { return "AP-20260830-TEST01" })
}

// --- Tests ---

func TestPlace_EmptyCart(t *testing.T) {
	svc := newTestService(newVariantRepo(), newMemberRepo(), testSettings("0", "0.01"), &mockOrderRepo{})

	_, err := svc.Place(context.Background(), PlaceRequest{MemberID: "m1"})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlace_InvalidQuantity(t *testing.T) {
	svc := newTestService(
		newVariantRepo(newTestVariant("v1", 5000)),
		newMemberRepo(testMember("m1", "0")),
		testSettings("0", "0.01"),
		&mockOrderRepo{},
	)

	_, err := svc.Place(context.Background(), PlaceRequest{
		MemberID: "m1",
		Lines:    []CartLine{{VariantID: "v1", Quantity: 0}},
		Shipping: validShipping(),
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "v1", iqErr.VariantID)
}

func TestPlace_IncompleteShipping(t *testing.T) {
	svc := newTestService(
		newVariantRepo(newTestVariant("v1", 5000)),
		newMemberRepo(testMember("m1", "0")),
		testSettings("0", "0.01"),
		&mockOrderRepo{},
	)

	ship := validShipping()
	ship.City = ""
	ship.Postcode = ""

	_, err := svc.Place(context.Background(), PlaceRequest{
		MemberID: "m1",
		Lines:    []CartLine{{VariantID: "v1", Quantity: 1}},
		Shipping: ship,
	})

	var shipErr *IncompleteShippingError
	require.ErrorAs(t, err, &shipErr)
	assert.Equal(t, []string{"city", "postcode"}, shipErr.Missing)
}

func TestPlace_MemberNotFound(t *testing.T) {
	svc := newTestService(
		newVariantRepo(newTestVariant("v1", 5000)),
		newMemberRepo(),
		testSettings("0", "0.01"),
		&mockOrderRepo{},
	)

	_, err := svc.Place(context.Background(), PlaceRequest{
		MemberID: "ghost",
		Lines:    []CartLine{{VariantID: "v1", Quantity: 1}},
		Shipping: validShipping(),
	})

	require.ErrorIs(t, err, member.ErrNotFound)
}

func TestPlace_VariantUnavailable(t *testing.T) {
	svc := newTestService(
		newVariantRepo(newTestVariant("v1", 5000)),
		newMemberRepo(testMember("m1", "0")),
		testSettings("0", "0.01"),
		&mockOrderRepo{},
	)

	_, err := svc.Place(context.Background(), PlaceRequest{
		MemberID: "m1",
		Lines: []CartLine{
			{VariantID: "v1", Quantity: 1},
			{VariantID: "gone", Quantity: 2},
		},
		Shipping: validShipping(),
	})

	var unavailErr *VariantUnavailableError
	require.ErrorAs(t, err, &unavailErr)
	assert.Equal(t, []string{"gone"}, unavailErr.VariantIDs)
}

func TestPlace_PricesAndDiscounts(t *testing.T) {
	v1 := newTestVariant("v1", 2500)
	v2 := newTestVariant("v2", 5000)
	repo := &mockOrderRepo{}
	svc := newTestService(
		newVariantRepo(v1, v2),
		newMemberRepo(testMember("m1", "10")),
		testSettings("5", "0.01"),
		repo,
	)

	o, err := svc.Place(context.Background(), PlaceRequest{
		MemberID: "m1",
		Lines: []CartLine{
			{VariantID: "v1", Quantity: 2}, // $50.00
			{VariantID: "v2", Quantity: 1}, // $50.00
		},
		Shipping: validShipping(),
		Notes:    "leave at door",
	})

	require.NoError(t, err)
	require.Same(t, o, repo.createdOrder)

	// Member rate 10% beats the global 5%.
	assert.Equal(t, int64(10000), o.SubtotalCents)
	assert.True(t, decimal.RequireFromString("10").Equal(o.DiscountPercent))
	assert.Equal(t, int64(1000), o.DiscountAmountCents)
	assert.Equal(t, int64(9000), o.TotalCents)

	assert.Equal(t, StatusPending, o.Status)
	assert.Zero(t, o.PointsEarned)
	assert.Equal(t, "AP-20260830-TEST01", o.Number)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "leave at door", o.Notes)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Studio Broadband Panel", o.Items[0].ProductName)
	assert.Equal(t, "50mm, 600x600mm, Natural Oak", o.Items[0].VariantDescription)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, int64(2500), o.Items[0].UnitPriceCents)
	assert.Equal(t, int64(5000), o.Items[0].LineTotalCents)
}

func TestPlace_GlobalRateWins(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newTestService(
		newVariantRepo(newTestVariant("v1", 10000)),
		newMemberRepo(testMember("m1", "5")),
		testSettings("15", "0.01"),
		repo,
	)

	o, err := svc.Place(context.Background(), PlaceRequest{
		MemberID: "m1",
		Lines:    []CartLine{{VariantID: "v1", Quantity: 1}},
		Shipping: validShipping(),
	})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15").Equal(o.DiscountPercent))
	assert.Equal(t, int64(1500), o.DiscountAmountCents)
	assert.Equal(t, int64(8500), o.TotalCents)
}

func TestPlace_RepeatedVariantLines(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newTestService(
		newVariantRepo(newTestVariant("v1", 2400)),
		newMemberRepo(testMember("m1", "0")),
		testSettings("0", "0.01"),
		repo,
	)

	o, err := svc.Place(context.Background(), PlaceRequest{
		MemberID: "m1",
		Lines: []CartLine{
			{VariantID: "v1", Quantity: 1},
			{VariantID: "v1", Quantity: 3},
		},
		Shipping: validShipping(),
	})

	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, int64(9600), o.SubtotalCents)
}

func TestPlace_CreateError(t *testing.T) {
	repo := &mockOrderRepo{createErr: errors.New("db write failed")}
	svc := newTestService(
		newVariantRepo(newTestVariant("v1", 5000)),
		newMemberRepo(testMember("m1", "0")),
		testSettings("0", "0.01"),
		repo,
	)

	_, err := svc.Place(context.Background(), PlaceRequest{
		MemberID: "m1",
		Lines:    []CartLine{{VariantID: "v1", Quantity: 1}},
		Shipping: validShipping(),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
}
