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

const linkRequestColumns = `id, anesthesiologist_id, secretary_id, notification_id, status, created_at, updated_at`

func (r *delegationRepository) LinkExists(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM delegation_links
			WHERE anesthesiologist_id = $1 AND secretary_id = $2
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, anesthesiologistID, secretaryID); err != nil {
		return false, fmt.Errorf("failed to check delegation link: %w", err)
	}
	return exists, nil
}

const insertLinkQuery = `
	INSERT INTO delegation_links (anesthesiologist_id, secretary_id, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (anesthesiologist_id, secretary_id) DO NOTHING
`

func (r *delegationRepository) CreateLink(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, insertLinkQuery, anesthesiologistID, secretaryID, time.Now()); err != nil {
		return fmt.Errorf("failed to create delegation link: %w", err)
	}
	return nil
}

func (r *delegationRepository) DeleteLink(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error {
	query := `DELETE FROM delegation_links WHERE anesthesiologist_id = $1 AND secretary_id = $2`
	return execOne(ctx, r.db, "delete delegation link", query, anesthesiologistID, secretaryID)
}

func (r *delegationRepository) ListAnesthesiologistIDs(ctx context.Context, secretaryID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT anesthesiologist_id FROM delegation_links WHERE secretary_id = $1`

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, secretaryID); err != nil {
		return nil, fmt.Errorf("failed to list linked anesthesiologists: %w", err)
	}
	return ids, nil
}

func (r *delegationRepository) ListSecretaries(ctx context.Context, anesthesiologistID uuid.UUID) ([]*model.Secretary, error) {
	query := `
		SELECT s.id, s.name, s.email, s.phone, s.cpf, s.registered_at, s.status, s.created_at, s.updated_at
		FROM secretaries s
		JOIN delegation_links l ON l.secretary_id = s.id
		WHERE l.anesthesiologist_id = $1
		ORDER BY s.name ASC
	`
	var secretaries []*model.Secretary
	if err := r.db.SelectContext(ctx, &secretaries, query, anesthesiologistID); err != nil {
		return nil, fmt.Errorf("failed to list linked secretaries: %w", err)
	}
	return secretaries, nil
}

func (r *delegationRepository) ListAnesthesiologists(ctx context.Context, secretaryID uuid.UUID) ([]*model.Anesthesiologist, error) {
	query := `
		SELECT a.id, a.name, a.email, a.crm, a.specialty, a.phone, a.cpf, a.subscription_plan,
			a.subscription_status, a.trial_ends_at, a.free_months, a.created_at, a.updated_at
		FROM anesthesiologists a
		JOIN delegation_links l ON l.anesthesiologist_id = a.id
		WHERE l.secretary_id = $1
		ORDER BY a.name ASC
	`
	var owners []*model.Anesthesiologist
	if err := r.db.SelectContext(ctx, &owners, query, secretaryID); err != nil {
		return nil, fmt.Errorf("failed to list linked anesthesiologists: %w", err)
	}
	return owners, nil
}

func (r *delegationRepository) CreateRequest(ctx context.Context, req *model.LinkRequest) error {
	query := `
		INSERT INTO link_requests (id, anesthesiologist_id, secretary_id, notification_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = model.LinkRequestPending
	}
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.AnesthesiologistID, req.SecretaryID, req.NotificationID, req.Status, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create link request: %w", err)
	}
	return nil
}

func (r *delegationRepository) GetRequest(ctx context.Context, id uuid.UUID) (*model.LinkRequest, error) {
	query := `SELECT ` + linkRequestColumns + ` FROM link_requests WHERE id = $1`

	var req model.LinkRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, notFound(err, "get link request")
	}
	return &req, nil
}

func (r *delegationRepository) GetRequestByNotification(ctx context.Context, notificationID uuid.UUID) (*model.LinkRequest, error) {
	query := `SELECT ` + linkRequestColumns + ` FROM link_requests WHERE notification_id = $1`

	var req model.LinkRequest
	if err := r.db.GetContext(ctx, &req, query, notificationID); err != nil {
		return nil, notFound(err, "get link request by notification")
	}
	return &req, nil
}

func (r *delegationRepository) FindPendingRequest(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) (*model.LinkRequest, error) {
	query := `
		SELECT ` + linkRequestColumns + `
		FROM link_requests
		WHERE anesthesiologist_id = $1 AND secretary_id = $2 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`
	var req model.LinkRequest
	if err := r.db.GetContext(ctx, &req, query, anesthesiologistID, secretaryID); err != nil {
		return nil, notFound(err, "find pending link request")
	}
	return &req, nil
}

func (r *delegationRepository) ListRequests(ctx context.Context, secretaryID uuid.UUID, status *model.LinkRequestStatus) ([]*model.LinkRequest, error) {
	query := `SELECT ` + linkRequestColumns + ` FROM link_requests WHERE secretary_id = $1`
	args := []interface{}{secretaryID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	var reqs []*model.LinkRequest
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list link requests: %w", err)
	}
	return reqs, nil
}

// AcceptRequest returns repository.ErrStateChanged, writing nothing, when the
// request is no longer pending.
func (r *delegationRepository) AcceptRequest(ctx context.Context, req *model.LinkRequest) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		result, err := tx.ExecContext(ctx, `
			UPDATE link_requests SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
		`, model.LinkRequestAccepted, now, req.ID, model.LinkRequestPending)
		if err != nil {
			return fmt.Errorf("failed to accept link request: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrStateChanged
		}

		if _, err := tx.ExecContext(ctx, insertLinkQuery, req.AnesthesiologistID, req.SecretaryID, now); err != nil {
			return fmt.Errorf("failed to create delegation link: %w", err)
		}

		if req.NotificationID != nil {
			if _, err := tx.ExecContext(ctx, `UPDATE notifications SET is_read = true WHERE id = $1`, *req.NotificationID); err != nil {
				return fmt.Errorf("failed to mark notification read: %w", err)
			}
		}

		req.Status = model.LinkRequestAccepted
		req.UpdatedAt = now
		return nil
	})
}

func (r *delegationRepository) TransitionRequest(ctx context.Context, id uuid.UUID, from, to model.LinkRequestStatus) (bool, error) {
	query := `UPDATE link_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition link request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
