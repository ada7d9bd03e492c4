package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eedition-gateway/internal/domain"
)

// SubscriptionRepository answers subscription-status questions for the
// entitlement engine. It fills the subscription-capability slot when the
// commerce add-on is deployed.
type SubscriptionRepository interface {
	HasActiveSubscription(ctx context.Context, readerID, planID string) (bool, error)
}

type subscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository returns a Postgres-backed implementation.
func NewSubscriptionRepository(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepository{pool: pool}
}

func (r *subscriptionRepository) HasActiveSubscription(ctx context.Context, readerID, planID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions
            WHERE reader_id=$1 AND plan_id=$2 AND status=$3
        )`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, readerID, planID, domain.SubscriptionStatusActive).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
