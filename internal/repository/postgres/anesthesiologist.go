package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/model"
)

const anesthesiologistColumns = `id, name, email, crm, specialty, phone, cpf, subscription_plan,
	subscription_status, trial_ends_at, free_months, created_at, updated_at`

func (r *anesthesiologistRepository) Create(ctx context.Context, a *model.Anesthesiologist) error {
	query := `
		INSERT INTO anesthesiologists (
			id, name, email, crm, specialty, phone, cpf, subscription_plan,
			subscription_status, trial_ends_at, free_months, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.Name,
		a.Email,
		a.CRM,
		a.Specialty,
		a.Phone,
		a.CPF,
		a.SubscriptionPlan,
		a.SubscriptionStatus,
		a.TrialEndsAt,
		a.FreeMonths,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create anesthesiologist: %w", err)
	}
	return nil
}

func (r *anesthesiologistRepository) Get(ctx context.Context, id uuid.UUID) (*model.Anesthesiologist, error) {
	query := `SELECT ` + anesthesiologistColumns + ` FROM anesthesiologists WHERE id = $1`

	var a model.Anesthesiologist
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, notFound(err, "get anesthesiologist")
	}
	return &a, nil
}

func (r *anesthesiologistRepository) GetByEmail(ctx context.Context, email string) (*model.Anesthesiologist, error) {
	query := `SELECT ` + anesthesiologistColumns + ` FROM anesthesiologists WHERE lower(email) = lower($1)`

	var a model.Anesthesiologist
	if err := r.db.GetContext(ctx, &a, query, email); err != nil {
		return nil, notFound(err, "get anesthesiologist by email")
	}
	return &a, nil
}

func (r *anesthesiologistRepository) Update(ctx context.Context, a *model.Anesthesiologist) error {
	query := `
		UPDATE anesthesiologists
		SET name = $1, crm = $2, specialty = $3, phone = $4, cpf = $5, updated_at = $6
		WHERE id = $7
	`
	a.UpdatedAt = time.Now()
	return execOne(ctx, r.db, "update anesthesiologist", query,
		a.Name, a.CRM, a.Specialty, a.Phone, a.CPF, a.UpdatedAt, a.ID,
	)
}

func (r *anesthesiologistRepository) UpdateSubscriptionStatus(ctx context.Context, id uuid.UUID, status model.SubscriptionStatus) error {
	query := `UPDATE anesthesiologists SET subscription_status = $1, updated_at = $2 WHERE id = $3`
	return execOne(ctx, r.db, "update subscription status", query, status, time.Now(), id)
}

func (r *anesthesiologistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "delete anesthesiologist", `DELETE FROM anesthesiologists WHERE id = $1`, id)
}
