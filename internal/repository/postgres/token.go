package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/anesteasy/api/internal/model"
)

// Store replaces any outstanding token of the same purpose for the credential.
func (r *tokenRepository) Store(ctx context.Context, token *model.OneTimeToken) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM one_time_tokens
			WHERE credential_id = $1 AND purpose = $2 AND used_at IS NULL
		`, token.CredentialID, token.Purpose); err != nil {
			return fmt.Errorf("failed to clear previous tokens: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO one_time_tokens (token, credential_id, purpose, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, token.Token, token.CredentialID, token.Purpose, token.ExpiresAt, time.Now()); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		return nil
	})
}

func (r *tokenRepository) Consume(ctx context.Context, token string, purpose model.TokenPurpose) (*model.OneTimeToken, error) {
	query := `
		UPDATE one_time_tokens
		SET used_at = $1
		WHERE token = $2 AND purpose = $3 AND used_at IS NULL AND expires_at > $1
		RETURNING token, credential_id, purpose, expires_at, used_at
	`
	var t model.OneTimeToken
	if err := r.db.GetContext(ctx, &t, query, time.Now(), token, purpose); err != nil {
		return nil, notFound(err, "consume token")
	}
	return &t, nil
}
