package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietline/storefront/internal/domain/member"
	"github.com/quietline/storefront/internal/domain/reward"
)

var _ reward.Repository = (*RewardRepository)(nil)

// RewardRepository implements reward.Repository backed by PostgreSQL.
type RewardRepository struct {
	pool *pgxpool.Pool
}

// NewRewardRepository returns a RewardRepository that uses the given pool.
func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

// GetType returns an active reward type, or reward.ErrUnavailable when the
// reward is missing or deactivated.
func (r *RewardRepository) GetType(ctx context.Context, id string) (*reward.Type, error) {
	const q = `
		SELECT id, name, points_cost, value_cents, active
		FROM reward_types
		WHERE id = $1 AND active`

	var t reward.Type
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.PointsCost, &t.ValueCents, &t.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reward.ErrUnavailable
		}
		return nil, fmt.Errorf("getting reward type %q: %w", id, err)
	}
	return &t, nil
}

// ListTypes returns the active reward catalog ordered by cost.
func (r *RewardRepository) ListTypes(ctx context.Context) ([]reward.Type, error) {
	const q = `
		SELECT id, name, points_cost, value_cents, active
		FROM reward_types
		WHERE active
		ORDER BY points_cost, name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing reward types: %w", err)
	}
	defer rows.Close()

	var types []reward.Type
	for rows.Next() {
		var t reward.Type
		if err := rows.Scan(&t.ID, &t.Name, &t.PointsCost, &t.ValueCents, &t.Active); err != nil {
			return nil, fmt.Errorf("scanning reward type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// Redeem performs the debit-mint-append unit in one transaction. The balance
// check is the conditional update itself: zero rows affected means the member
// is missing or short on points, and nothing is written.
func (r *RewardRepository) Redeem(ctx context.Context, params reward.RedeemParams) error {
	red := params.Redeemed

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	tag, err := tx.Exec(ctx, `
		UPDATE members SET points_balance = points_balance - $2
		WHERE id = $1 AND points_balance >= $2`,
		red.MemberID, red.PointsSpent,
	)
	if err != nil {
		return fmt.Errorf("debiting member %q: %w", red.MemberID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.debitFailure(ctx, tx, red.MemberID)
	}

	const insertVoucher = `
		INSERT INTO redeemed_rewards (
			id, reward_type_id, member_id, voucher_code,
			points_spent, status, expires_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = tx.Exec(ctx, insertVoucher,
		red.ID, red.RewardTypeID, red.MemberID, red.VoucherCode,
		red.PointsSpent, red.Status, red.ExpiresAt, red.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting voucher %q: %w", red.VoucherCode, err)
	}

	if err := insertLedgerEntry(ctx, tx, params.Entry); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing redemption %q: %w", red.ID, err)
	}
	return nil
}

// debitFailure distinguishes a missing member from an insufficient balance
// after the conditional debit matched no row.
func (r *RewardRepository) debitFailure(ctx context.Context, tx pgx.Tx, memberID string) error {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM members WHERE id = $1 AND active)`, memberID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking member %q: %w", memberID, err)
	}
	if !exists {
		return member.ErrNotFound
	}
	return member.ErrInsufficientPoints
}

// ListByMember returns a member's redeemed vouchers, newest first.
func (r *RewardRepository) ListByMember(ctx context.Context, memberID string) ([]reward.Redeemed, error) {
	const q = `
		SELECT id, reward_type_id, member_id, voucher_code,
		       points_spent, status, expires_at, created_at
		FROM redeemed_rewards
		WHERE member_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing vouchers for member %q: %w", memberID, err)
	}
	defer rows.Close()

	var redeemed []reward.Redeemed
	for rows.Next() {
		var red reward.Redeemed
		err := rows.Scan(
			&red.ID, &red.RewardTypeID, &red.MemberID, &red.VoucherCode,
			&red.PointsSpent, &red.Status, &red.ExpiresAt, &red.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning voucher: %w", err)
		}
		redeemed = append(redeemed, red)
	}
	return redeemed, rows.Err()
}

// MarkExpired sweeps active vouchers past their expiry into the expired state.
func (r *RewardRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE redeemed_rewards SET status = 'expired'
		WHERE status = 'active' AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("expiring vouchers: %w", err)
	}
	return tag.RowsAffected(), nil
}
