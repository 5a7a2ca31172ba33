package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietline/storefront/internal/domain/member"
)

var _ member.Repository = (*MemberRepository)(nil)

// MemberRepository implements member.Repository backed by PostgreSQL.
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository returns a MemberRepository that uses the given pool.
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// GetByID returns an active member by id. Inactive and missing members both
// surface member.ErrNotFound.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*member.Member, error) {
	const q = `
		SELECT id, email, active, discount_percent, points_balance
		FROM members
		WHERE id = $1 AND active`

	var m member.Member
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&m.ID, &m.Email, &m.Active, &m.DiscountPercent, &m.PointsBalance,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, member.ErrNotFound
		}
		return nil, fmt.Errorf("getting member %q: %w", id, err)
	}

	return &m, nil
}
