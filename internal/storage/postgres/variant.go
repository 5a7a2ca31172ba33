package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietline/storefront/internal/domain/catalog"
)

var _ catalog.Repository = (*VariantRepository)(nil)

// VariantRepository implements catalog.Repository backed by PostgreSQL.
type VariantRepository struct {
	pool *pgxpool.Pool
}

// NewVariantRepository returns a VariantRepository that uses the given pool.
func NewVariantRepository(pool *pgxpool.Pool) *VariantRepository {
	return &VariantRepository{pool: pool}
}

const variantColumns = `
	v.id, v.product_id, p.name, v.thickness, v.size, v.face_color,
	v.price_cents, v.available`

// List returns all available variants joined with their product names,
// ordered for stable catalog display.
func (r *VariantRepository) List(ctx context.Context) ([]catalog.Variant, error) {
	q := `
		SELECT ` + variantColumns + `
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.available
		ORDER BY p.name, v.id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing variants: %w", err)
	}
	defer rows.Close()

	return scanVariants(rows)
}

// GetByIDs returns the available variants among the requested IDs. Missing or
// disabled variants are simply absent from the result; the order service
// detects the shortfall and rejects the cart.
func (r *VariantRepository) GetByIDs(ctx context.Context, ids []string) ([]catalog.Variant, error) {
	q := `
		SELECT ` + variantColumns + `
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = ANY($1) AND v.available`

	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("getting variants: %w", err)
	}
	defer rows.Close()

	return scanVariants(rows)
}

func scanVariants(rows pgx.Rows) ([]catalog.Variant, error) {
	var variants []catalog.Variant
	for rows.Next() {
		var v catalog.Variant
		err := rows.Scan(
			&v.ID, &v.ProductID, &v.ProductName, &v.Thickness, &v.Size,
			&v.FaceColor, &v.PriceCents, &v.Available,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}
