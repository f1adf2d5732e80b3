package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/model"
)

func (r *goalRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Goal, error) {
	query := `
		SELECT id, user_id, target_value, reset_day, is_enabled, created_at, updated_at
		FROM goals WHERE user_id = $1
	`
	var goal model.Goal
	if err := r.db.GetContext(ctx, &goal, query, userID); err != nil {
		return nil, notFound(err, "get goal")
	}
	return &goal, nil
}

// Upsert keeps one goal per user.
func (r *goalRepository) Upsert(ctx context.Context, goal *model.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, target_value, reset_day, is_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET target_value = EXCLUDED.target_value,
			reset_day = EXCLUDED.reset_day,
			is_enabled = EXCLUDED.is_enabled,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	row := r.db.QueryRowxContext(ctx, query, goal.ID, goal.UserID, goal.TargetValue, goal.ResetDay, goal.IsEnabled, time.Now())
	if err := row.Scan(&goal.ID, &goal.CreatedAt, &goal.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

func (r *goalRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return execOne(ctx, r.db, "delete goal", `DELETE FROM goals WHERE user_id = $1`, userID)
}
