package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/model"
)

const subscriptionColumns = `id, user_id, plan_type, status, current_period_start, current_period_end,
	days_used, created_at, updated_at`

func (r *subscriptionRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var sub model.Subscription
	if err := r.db.GetContext(ctx, &sub, query, userID); err != nil {
		return nil, notFound(err, "get latest subscription")
	}
	return &sub, nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	var sub model.Subscription
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, notFound(err, "get subscription")
	}
	return &sub, nil
}

func (r *subscriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubscriptionState) error {
	query := `UPDATE subscriptions SET status = $1, updated_at = $2 WHERE id = $3`
	return execOne(ctx, r.db, "update subscription status", query, status, time.Now(), id)
}

func (r *subscriptionRepository) UpdateDaysUsed(ctx context.Context, id uuid.UUID, days int) error {
	query := `UPDATE subscriptions SET days_used = $1, updated_at = $2 WHERE id = $3`
	return execOne(ctx, r.db, "update subscription days used", query, days, time.Now(), id)
}
