package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietline/storefront/internal/domain/discount"
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode looks up an active, unexpired discount code case-insensitively.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Code, error) {
	const q = `
		SELECT code, percent, description, active, valid_until
		FROM discount_codes
		WHERE code = UPPER($1) AND active
		  AND (valid_until IS NULL OR valid_until > now())`

	var c discount.Code
	err := r.pool.QueryRow(ctx, q, code).Scan(&c.Code, &c.Percent, &c.Description, &c.Active, &c.ValidUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount code %q: %w", code, err)
	}
	return &c, nil
}

// UpsertBatch inserts codes in a single batch, skipping codes already present.
// Used by the bulk ingest tool, which may re-run over the same dumps.
func (r *DiscountRepository) UpsertBatch(ctx context.Context, codes []discount.Code) error {
	if len(codes) == 0 {
		return nil
	}

	const q = `
		INSERT INTO discount_codes (code, percent, description, active, valid_until)
		VALUES (UPPER($1), $2, $3, $4, $5)
		ON CONFLICT (code) DO NOTHING`

	batch := &pgx.Batch{}
	for _, c := range codes {
		batch.Queue(q, c.Code, c.Percent, c.Description, c.Active, c.ValidUntil)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting %d discount codes: %w", len(codes), err)
	}
	return nil
}
