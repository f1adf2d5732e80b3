package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/model"
)

const credentialColumns = `id, email, password_hash, email_confirmed_at, metadata, created_at, updated_at`

func (r *credentialRepository) Create(ctx context.Context, c *model.Credential) error {
	query := `
		INSERT INTO credentials (id, email, password_hash, email_confirmed_at, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Email, c.PasswordHash, c.EmailConfirmedAt, c.Metadata, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) Get(ctx context.Context, id uuid.UUID) (*model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`

	var c model.Credential
	if err := r.db.GetContext(ctx, &c, query, id); err != nil {
		return nil, notFound(err, "get credential")
	}
	return &c, nil
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE lower(email) = lower($1)`

	var c model.Credential
	if err := r.db.GetContext(ctx, &c, query, email); err != nil {
		return nil, notFound(err, "get credential by email")
	}
	return &c, nil
}

// UpdatePassword stores a new hash. temporary marks a generated password the
// holder must replace at next login.
func (r *credentialRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, temporary bool) error {
	query := `
		UPDATE credentials
		SET password_hash = $1,
			metadata = jsonb_set(COALESCE(metadata, '{}'::jsonb), '{must_change_password}', to_jsonb($2::boolean)),
			updated_at = $3
		WHERE id = $4
	`
	return execOne(ctx, r.db, "update password", query, hash, temporary, time.Now(), id)
}

func (r *credentialRepository) MarkEmailConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE credentials SET email_confirmed_at = $1, updated_at = $1 WHERE id = $2`
	return execOne(ctx, r.db, "confirm email", query, at, id)
}

func (r *credentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "delete credential", `DELETE FROM credentials WHERE id = $1`, id)
}
