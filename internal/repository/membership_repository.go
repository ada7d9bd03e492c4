package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eedition-gateway/internal/domain"
)

// MembershipRepository answers membership-status questions for the
// entitlement engine. It fills the membership-capability slot when the
// commerce add-on is deployed.
type MembershipRepository interface {
	ActiveMembershipPlans(ctx context.Context, readerID string) ([]string, error)
}

type membershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository returns a Postgres-backed implementation.
func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &membershipRepository{pool: pool}
}

func (r *membershipRepository) ActiveMembershipPlans(ctx context.Context, readerID string) ([]string, error) {
	const query = `
        SELECT plan_id FROM memberships
        WHERE reader_id=$1 AND status=$2`

	rows, err := r.pool.Query(ctx, query, readerID, domain.MembershipStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []string
	for rows.Next() {
		var planID string
		if err := rows.Scan(&planID); err != nil {
			return nil, err
		}
		plans = append(plans, planID)
	}
	return plans, rows.Err()
}
