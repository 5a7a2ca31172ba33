package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/quietline/storefront/internal/domain/catalog"
	"github.com/quietline/storefront/internal/domain/member"
	"github.com/quietline/storefront/internal/domain/settings"
)

// CartLine is a client-submitted order line: a variant reference and a
// quantity. Prices are never trusted from the client; they are re-read from
// the catalog at placement.
type CartLine struct {
	VariantID string
	Quantity  int
}

// PlaceRequest holds the input for placing an order.
type PlaceRequest struct {
	MemberID string
	Lines    []CartLine
	Shipping Shipping
	Notes    string
}

// Service encapsulates order placement and fulfillment business logic.
type Service struct {
	variants catalog.Repository
	members  member.Repository
	settings settings.Repository
	orders   Repository

	// orderNumber mints unique human-readable order numbers. Uniqueness is
	// the only contract; the format is a wiring concern.
	orderNumber func() string
	now         func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	variants catalog.Repository,
	members member.Repository,
	settings settings.Repository,
	orders Repository,
	orderNumber func() string,
) *Service {
	return &Service{
		variants:    variants,
		members:     members,
		settings:    settings,
		orders:      orders,
		orderNumber: orderNumber,
		now:         time.Now,
	}
}

// Place validates the cart and shipping address, re-prices every line against
// the live catalog, applies the better of the member and global discount
// rates, and persists the order with its items as a single transaction.
// On any failure nothing is persisted.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, &InvalidQuantityError{VariantID: line.VariantID}
		}
	}
	if missing := req.Shipping.missingFields(); len(missing) > 0 {
		return nil, &IncompleteShippingError{Missing: missing}
	}

	mem, err := s.members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, errors.Wrap(err, "get member")
	}

	// Batch fetch all referenced variants; the repository returns only
	// available ones, so a shortfall means the cart references variants
	// deleted or disabled since it was built.
	ids := make([]string, 0, len(req.Lines))
	seen := make(map[string]struct{}, len(req.Lines))
	for _, line := range req.Lines {
		if _, ok := seen[line.VariantID]; ok {
			continue
		}
		seen[line.VariantID] = struct{}{}
		ids = append(ids, line.VariantID)
	}

	fetched, err := s.variants.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get variants")
	}

	byID := make(map[string]catalog.Variant, len(fetched))
	for _, v := range fetched {
		byID[v.ID] = v
	}
	if len(byID) != len(ids) {
		var unavailable []string
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				unavailable = append(unavailable, id)
			}
		}
		return nil, &VariantUnavailableError{VariantIDs: unavailable}
	}

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get settings")
	}

	// Price each line from the authoritative catalog, snapshotting name,
	// description, and unit price into the item.
	items := make([]Item, len(req.Lines))
	var subtotal int64
	for i, line := range req.Lines {
		v := byID[line.VariantID]
		lineTotal := v.PriceCents * int64(line.Quantity)
		items[i] = Item{
			ProductName:        v.ProductName,
			VariantDescription: v.Description(),
			Quantity:           line.Quantity,
			UnitPriceCents:     v.PriceCents,
			LineTotalCents:     lineTotal,
		}
		subtotal += lineTotal
	}

	rate := AppliedRate(cfg.GlobalDiscountPercent, mem.DiscountPercent)
	discount := DiscountAmountCents(subtotal, rate)

	o := &Order{
		ID:                  uuid.New().String(),
		Number:              s.orderNumber(),
		MemberID:            mem.ID,
		Status:              StatusPending,
		SubtotalCents:       subtotal,
		DiscountPercent:     rate,
		DiscountAmountCents: discount,
		TotalCents:          subtotal - discount,
		Shipping:            req.Shipping,
		Notes:               req.Notes,
		Items:               items,
		CreatedAt:           s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	return o, nil
}

// Get returns an order with its items.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListByMember returns a member's orders, newest first.
func (s *Service) ListByMember(ctx context.Context, memberID string) ([]Order, error) {
	return s.orders.ListByMember(ctx, memberID)
}
