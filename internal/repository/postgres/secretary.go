package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/model"
)

const secretaryColumns = `id, name, email, phone, cpf, registered_at, status, created_at, updated_at`

func (r *secretaryRepository) Create(ctx context.Context, s *model.Secretary) error {
	query := `
		INSERT INTO secretaries (id, name, email, phone, cpf, registered_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	if s.RegisteredAt.IsZero() {
		s.RegisteredAt = s.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Email, s.Phone, s.CPF, s.RegisteredAt, s.Status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create secretary: %w", err)
	}
	return nil
}

func (r *secretaryRepository) Get(ctx context.Context, id uuid.UUID) (*model.Secretary, error) {
	query := `SELECT ` + secretaryColumns + ` FROM secretaries WHERE id = $1`

	var s model.Secretary
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, notFound(err, "get secretary")
	}
	return &s, nil
}

func (r *secretaryRepository) GetByEmail(ctx context.Context, email string) (*model.Secretary, error) {
	query := `SELECT ` + secretaryColumns + ` FROM secretaries WHERE lower(email) = lower($1)`

	var s model.Secretary
	if err := r.db.GetContext(ctx, &s, query, email); err != nil {
		return nil, notFound(err, "get secretary by email")
	}
	return &s, nil
}

func (r *secretaryRepository) Update(ctx context.Context, s *model.Secretary) error {
	query := `
		UPDATE secretaries
		SET name = $1, phone = $2, cpf = $3, status = $4, updated_at = $5
		WHERE id = $6
	`
	s.UpdatedAt = time.Now()
	return execOne(ctx, r.db, "update secretary", query,
		s.Name, s.Phone, s.CPF, s.Status, s.UpdatedAt, s.ID,
	)
}

func (r *secretaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "delete secretary", `DELETE FROM secretaries WHERE id = $1`, id)
}
