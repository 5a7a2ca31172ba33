package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietline/storefront/internal/domain/settings"
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
// The settings table holds a single row enforced by a CHECK constraint.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get reads the store-wide rates. Called once per pricing or award operation
// so admin edits take effect immediately.
func (r *SettingsRepository) Get(ctx context.Context) (settings.Settings, error) {
	const q = `
		SELECT global_discount_percent, points_per_dollar_spent
		FROM settings
		WHERE id = 1`

	var s settings.Settings
	if err := r.pool.QueryRow(ctx, q).Scan(&s.GlobalDiscountPercent, &s.PointsPerDollarSpent); err != nil {
		return settings.Settings{}, fmt.Errorf("getting settings: %w", err)
	}
	return s, nil
}
