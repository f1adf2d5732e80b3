package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
)

const feedbackLinkColumns = `id, procedure_id, surgeon_email, surgeon_phone, token, expires_at, responded_at, created_at`

func (r *feedbackRepository) CreateLink(ctx context.Context, link *model.FeedbackLink) error {
	query := `
		INSERT INTO feedback_links (id, procedure_id, surgeon_email, surgeon_phone, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		link.ID, link.ProcedureID, link.SurgeonEmail, link.SurgeonPhone, link.Token, link.ExpiresAt, link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create feedback link: %w", err)
	}
	return nil
}

func (r *feedbackRepository) GetLinkByToken(ctx context.Context, token string) (*model.FeedbackLink, error) {
	query := `SELECT ` + feedbackLinkColumns + ` FROM feedback_links WHERE token = $1`

	var link model.FeedbackLink
	if err := r.db.GetContext(ctx, &link, query, token); err != nil {
		return nil, notFound(err, "get feedback link")
	}
	return &link, nil
}

func (r *feedbackRepository) GetLinkByProcedure(ctx context.Context, procedureID uuid.UUID) (*model.FeedbackLink, error) {
	query := `
		SELECT ` + feedbackLinkColumns + `
		FROM feedback_links
		WHERE procedure_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var link model.FeedbackLink
	if err := r.db.GetContext(ctx, &link, query, procedureID); err != nil {
		return nil, notFound(err, "get feedback link by procedure")
	}
	return &link, nil
}

func (r *feedbackRepository) SaveResponse(ctx context.Context, link *model.FeedbackLink, resp *model.FeedbackResponse) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		result, err := tx.ExecContext(ctx, `
			UPDATE feedback_links SET responded_at = $1
			WHERE id = $2 AND responded_at IS NULL
		`, now, link.ID)
		if err != nil {
			return fmt.Errorf("failed to stamp feedback link: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}

		if resp.ID == uuid.Nil {
			resp.ID = uuid.New()
		}
		resp.FeedbackLinkID = link.ID
		resp.CreatedAt = now
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO feedback_responses (
				id, feedback_link_id, nausea_vomiting, headache, back_pain, anemia_transfusion, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, resp.ID, resp.FeedbackLinkID, resp.NauseaVomiting, resp.Headache, resp.BackPain, resp.AnemiaTransfusion, resp.CreatedAt); err != nil {
			return fmt.Errorf("failed to save feedback response: %w", err)
		}

		link.RespondedAt = &now
		return nil
	})
}

func (r *feedbackRepository) GetResponseByProcedure(ctx context.Context, procedureID uuid.UUID) (*model.FeedbackResponse, error) {
	query := `
		SELECT fr.id, fr.feedback_link_id, fr.nausea_vomiting, fr.headache, fr.back_pain,
			fr.anemia_transfusion, fr.created_at
		FROM feedback_responses fr
		JOIN feedback_links fl ON fl.id = fr.feedback_link_id
		WHERE fl.procedure_id = $1
		ORDER BY fr.created_at DESC
		LIMIT 1
	`
	var resp model.FeedbackResponse
	if err := r.db.GetContext(ctx, &resp, query, procedureID); err != nil {
		return nil, notFound(err, "get feedback response")
	}
	return &resp, nil
}
