package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/model"
)

// Each lookup scans both principal tables in a single statement so the caller
// sees every match at once and can reject an identity that exists in both.
// Email and CPF lookups also report credentials still waiting for email
// confirmation, under the kind they registered as.

const pendingCredentialFilter = `
	NOT EXISTS (SELECT 1 FROM anesthesiologists a WHERE a.id = c.id)
	AND NOT EXISTS (SELECT 1 FROM secretaries s WHERE s.id = c.id)
`

func (r *principalRepository) FindByID(ctx context.Context, id uuid.UUID) ([]model.PrincipalRow, error) {
	query := `
		SELECT 'anesthesiologist' AS kind, id, email FROM anesthesiologists WHERE id = $1
		UNION ALL
		SELECT 'secretary' AS kind, id, email FROM secretaries WHERE id = $1
	`
	return r.find(ctx, "find principal by id", query, id)
}

func (r *principalRepository) FindByEmail(ctx context.Context, email string) ([]model.PrincipalRow, error) {
	query := `
		SELECT 'anesthesiologist' AS kind, id, email FROM anesthesiologists WHERE lower(email) = lower($1)
		UNION ALL
		SELECT 'secretary' AS kind, id, email FROM secretaries WHERE lower(email) = lower($1)
		UNION ALL
		SELECT COALESCE(c.metadata->>'kind', 'anesthesiologist') AS kind, c.id, c.email
		FROM credentials c
		WHERE lower(c.email) = lower($1) AND ` + pendingCredentialFilter
	return r.find(ctx, "find principal by email", query, email)
}

func (r *principalRepository) FindByCPF(ctx context.Context, cpf string) ([]model.PrincipalRow, error) {
	query := `
		SELECT 'anesthesiologist' AS kind, id, email FROM anesthesiologists WHERE cpf = $1
		UNION ALL
		SELECT 'secretary' AS kind, id, email FROM secretaries WHERE cpf = $1
		UNION ALL
		SELECT COALESCE(c.metadata->>'kind', 'anesthesiologist') AS kind, c.id, c.email
		FROM credentials c
		WHERE c.metadata->>'cpf' = $1 AND ` + pendingCredentialFilter
	return r.find(ctx, "find principal by cpf", query, cpf)
}

func (r *principalRepository) find(ctx context.Context, what, query string, arg interface{}) ([]model.PrincipalRow, error) {
	var rows []model.PrincipalRow
	if err := r.db.SelectContext(ctx, &rows, query, arg); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", what, err)
	}
	return rows, nil
}
