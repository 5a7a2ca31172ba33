package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietline/storefront/internal/domain/ledger"
)

var _ ledger.Repository = (*LedgerRepository)(nil)

// LedgerRepository implements ledger.Repository backed by PostgreSQL.
// The ledger table is append-only: rows are only ever inserted, and only from
// inside the award/redeem transactions.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository returns a LedgerRepository that uses the given pool.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// ListByMember returns a member's ledger entries, newest first.
func (r *LedgerRepository) ListByMember(ctx context.Context, memberID string) ([]ledger.Entry, error) {
	const q = `
		SELECT id, member_id, change_amount, reason, reference_type, reference_id, created_at
		FROM points_ledger
		WHERE member_id = $1
		ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, q, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing ledger for member %q: %w", memberID, err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		err := rows.Scan(
			&e.ID, &e.MemberID, &e.ChangeAmount, &e.Reason,
			&e.ReferenceType, &e.ReferenceID, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumForMember returns the sum of all change amounts for the member. By the
// ledger invariant this equals the member's current points balance.
func (r *LedgerRepository) SumForMember(ctx context.Context, memberID string) (int64, error) {
	const q = `
		SELECT COALESCE(SUM(change_amount), 0)
		FROM points_ledger
		WHERE member_id = $1`

	var sum int64
	if err := r.pool.QueryRow(ctx, q, memberID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing ledger for member %q: %w", memberID, err)
	}
	return sum, nil
}

// insertLedgerEntry appends a ledger row inside the caller's transaction.
// Shared by the points-award and redemption units.
func insertLedgerEntry(ctx context.Context, tx pgx.Tx, e ledger.Entry) error {
	id := e.ID
	if id == "" {
		id = uuid.New().String()
	}

	const q = `
		INSERT INTO points_ledger (id, member_id, change_amount, reason, reference_type, reference_id)
		VALUES ($1,$2,$3,$4,$5,$6)`

	_, err := tx.Exec(ctx, q, id, e.MemberID, e.ChangeAmount, e.Reason, e.ReferenceType, e.ReferenceID)
	if err != nil {
		return fmt.Errorf("appending ledger entry for member %q: %w", e.MemberID, err)
	}
	return nil
}
