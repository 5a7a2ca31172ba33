package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietline/storefront/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and every line item in one transaction.
// A failure at any point rolls the whole order back, so readers never see a
// header without its items.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	const insertOrder = `
		INSERT INTO orders (
			id, number, member_id, status, subtotal_cents, discount_percent,
			discount_amount_cents, total_cents, points_earned,
			ship_first_name, ship_last_name, ship_line1, ship_line2,
			ship_city, ship_state, ship_postcode, ship_phone,
			notes, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`

	_, err = tx.Exec(ctx, insertOrder,
		o.ID, o.Number, o.MemberID, o.Status, o.SubtotalCents, o.DiscountPercent,
		o.DiscountAmountCents, o.TotalCents, o.PointsEarned,
		o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.Line1, o.Shipping.Line2,
		o.Shipping.City, o.Shipping.State, o.Shipping.Postcode, o.Shipping.Phone,
		o.Notes, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	const insertItem = `
		INSERT INTO order_items (
			order_id, position, product_name, variant_description,
			quantity, unit_price_cents, line_total_cents
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`

	batch := &pgx.Batch{}
	for i, item := range o.Items {
		batch.Queue(insertItem,
			o.ID, i, item.ProductName, item.VariantDescription,
			item.Quantity, item.UnitPriceCents, item.LineTotalCents,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting order items for %q: %w", o.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.ID, err)
	}
	return nil
}

const orderColumns = `
	id, number, member_id, status, subtotal_cents, discount_percent,
	discount_amount_cents, total_cents, points_earned,
	ship_first_name, ship_last_name, ship_line1, ship_line2,
	ship_city, ship_state, ship_postcode, ship_phone, notes, created_at`

// GetByID returns an order with its items, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	items, err := r.itemsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// ListByMember returns a member's orders, newest first, without items.
func (r *OrderRepository) ListByMember(ctx context.Context, memberID string) ([]order.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE member_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for member %q: %w", memberID, err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// UpdateStatus writes the new status. Returns order.ErrNotFound when no row
// matched.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// AwardPoints performs the three-way points credit as one transaction:
// a conditional update on the order (points_earned = 0 doubles as the
// idempotency marker), the member balance credit, and the ledger append.
// Returns false when the conditional update matched no row, meaning a
// concurrent writer already awarded points for this order.
func (r *OrderRepository) AwardPoints(ctx context.Context, award order.PointsAward) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET points_earned = $2
		WHERE id = $1 AND points_earned = 0`,
		award.OrderID, award.Points,
	)
	if err != nil {
		return false, fmt.Errorf("setting points for order %q: %w", award.OrderID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE members SET points_balance = points_balance + $2
		WHERE id = $1`,
		award.MemberID, award.Points,
	)
	if err != nil {
		return false, fmt.Errorf("crediting member %q: %w", award.MemberID, err)
	}

	if err := insertLedgerEntry(ctx, tx, award.Entry); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing points award for order %q: %w", award.OrderID, err)
	}
	return true, nil
}

func (r *OrderRepository) itemsFor(ctx context.Context, orderID string) ([]order.Item, error) {
	const q = `
		SELECT product_name, variant_description, quantity,
		       unit_price_cents, line_total_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`

	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing items for order %q: %w", orderID, err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		err := rows.Scan(
			&it.ProductName, &it.VariantDescription, &it.Quantity,
			&it.UnitPriceCents, &it.LineTotalCents,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.MemberID, &o.Status, &o.SubtotalCents, &o.DiscountPercent,
		&o.DiscountAmountCents, &o.TotalCents, &o.PointsEarned,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.Line1, &o.Shipping.Line2,
		&o.Shipping.City, &o.Shipping.State, &o.Shipping.Postcode, &o.Shipping.Phone,
		&o.Notes, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
