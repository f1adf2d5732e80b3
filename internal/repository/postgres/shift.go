package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/anesteasy/api/internal/model"
)

const shiftColumns = `id, user_id, title, start_date, end_date, shift_type, hospital_name,
	description, is_recurring, recurrence_type, recurrence_end_date, parent_shift_id,
	is_generated, occurrence_date, created_at, updated_at`

const insertShiftQuery = `
	INSERT INTO shifts (
		id, user_id, title, start_date, end_date, shift_type, hospital_name,
		description, is_recurring, recurrence_type, recurrence_end_date, parent_shift_id,
		is_generated, occurrence_date, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

func prepareShift(shift *model.Shift) {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	now := time.Now()
	shift.CreatedAt = now
	shift.UpdatedAt = now
}

func insertShift(ctx context.Context, db sqlx.ExecerContext, shift *model.Shift) error {
	_, err := db.ExecContext(ctx, insertShiftQuery,
		shift.ID,
		shift.UserID,
		shift.Title,
		shift.StartDate,
		shift.EndDate,
		shift.ShiftType,
		shift.HospitalName,
		shift.Description,
		shift.IsRecurring,
		shift.RecurrenceType,
		shift.RecurrenceEndDate,
		shift.ParentShiftID,
		shift.IsGenerated,
		shift.OccurrenceDate,
		shift.CreatedAt,
		shift.UpdatedAt,
	)
	return err
}

func (r *shiftRepository) Create(ctx context.Context, shift *model.Shift) error {
	prepareShift(shift)
	if err := insertShift(ctx, r.db, shift); err != nil {
		return fmt.Errorf("failed to create shift: %w", err)
	}
	return nil
}

func (r *shiftRepository) CreateBatch(ctx context.Context, shifts []*model.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, shift := range shifts {
			prepareShift(shift)
			if err := insertShift(ctx, tx, shift); err != nil {
				return fmt.Errorf("failed to create shift batch: %w", err)
			}
		}
		return nil
	})
}

func (r *shiftRepository) Get(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	var shift model.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		return nil, notFound(err, "get shift")
	}
	return &shift, nil
}

func (r *shiftRepository) Update(ctx context.Context, shift *model.Shift) error {
	query := `
		UPDATE shifts
		SET title = $1, start_date = $2, end_date = $3, shift_type = $4,
			hospital_name = $5, description = $6, updated_at = $7
		WHERE id = $8
	`
	shift.UpdatedAt = time.Now()
	return execOne(ctx, r.db, "update shift", query,
		shift.Title,
		shift.StartDate,
		shift.EndDate,
		shift.ShiftType,
		shift.HospitalName,
		shift.Description,
		shift.UpdatedAt,
		shift.ID,
	)
}

func (r *shiftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "delete shift", `DELETE FROM shifts WHERE id = $1`, id)
}

func (r *shiftRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE user_id = $1 ORDER BY start_date ASC`

	var shifts []*model.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	return shifts, nil
}

// ListInRange returns shifts whose interval intersects [start, end].
func (r *shiftRepository) ListInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*model.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE user_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date ASC
	`

	var shifts []*model.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, ownerID, start, end); err != nil {
		return nil, fmt.Errorf("failed to list shifts in range: %w", err)
	}
	return shifts, nil
}

// FindOverlapping returns shifts whose half-open interval overlaps [start, end).
func (r *shiftRepository) FindOverlapping(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE user_id = $1 AND start_date < $3 AND end_date > $2
	`
	args := []interface{}{ownerID, start, end}
	if excludeID != nil {
		query += ` AND id != $4`
		args = append(args, *excludeID)
	}
	query += ` ORDER BY start_date ASC`

	var shifts []*model.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find overlapping shifts: %w", err)
	}
	return shifts, nil
}

// ListGroup returns the root shift and every child pointing at it.
func (r *shiftRepository) ListGroup(ctx context.Context, rootID uuid.UUID) ([]*model.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE id = $1 OR parent_shift_id = $1
		ORDER BY start_date ASC
	`

	var shifts []*model.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, rootID); err != nil {
		return nil, fmt.Errorf("failed to list shift group: %w", err)
	}
	return shifts, nil
}

const updateCommonFieldsQuery = `
	UPDATE shifts
	SET title = COALESCE($1, title),
		shift_type = COALESCE($2, shift_type),
		hospital_name = COALESCE($3, hospital_name),
		description = COALESCE($4, description),
		updated_at = $5
`

func (r *shiftRepository) UpdateCommonFields(ctx context.Context, ids []uuid.UUID, fields model.ShiftCommonFields) error {
	if len(ids) == 0 || fields.Empty() {
		return nil
	}
	_, err := r.db.ExecContext(ctx, updateCommonFieldsQuery+`WHERE id = ANY($6)`,
		fields.Title,
		fields.ShiftType,
		fields.HospitalName,
		fields.Description,
		time.Now(),
		pq.Array(uuidStrings(ids)),
	)
	if err != nil {
		return fmt.Errorf("failed to update shift group: %w", err)
	}
	return nil
}

func (r *shiftRepository) RegenerateSeries(ctx context.Context, parent *model.Shift, children []*model.Shift, common model.ShiftCommonFields) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		parent.UpdatedAt = time.Now()
		if err := execOne(ctx, tx, "move series parent", `
			UPDATE shifts SET start_date = $1, end_date = $2, updated_at = $3 WHERE id = $4
		`, parent.StartDate, parent.EndDate, parent.UpdatedAt, parent.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM shifts
			WHERE parent_shift_id = $1
			AND id NOT IN (
				SELECT shift_id FROM shift_exceptions
				WHERE parent_shift_id = $1 AND shift_id IS NOT NULL
			)
		`, parent.ID); err != nil {
			return fmt.Errorf("failed to delete series children: %w", err)
		}

		if !common.Empty() {
			if _, err := tx.ExecContext(ctx, updateCommonFieldsQuery+`WHERE id = $6 OR parent_shift_id = $6`,
				common.Title,
				common.ShiftType,
				common.HospitalName,
				common.Description,
				parent.UpdatedAt,
				parent.ID,
			); err != nil {
				return fmt.Errorf("failed to update series fields: %w", err)
			}
		}

		for _, child := range children {
			prepareShift(child)
			if err := insertShift(ctx, tx, child); err != nil {
				return fmt.Errorf("failed to insert series child: %w", err)
			}
		}
		return nil
	})
}

func (r *shiftRepository) ListExceptions(ctx context.Context, parentID uuid.UUID) ([]*model.ShiftException, error) {
	query := `
		SELECT id, parent_shift_id, occurrence_date, kind, shift_id, created_at
		FROM shift_exceptions
		WHERE parent_shift_id = $1
		ORDER BY occurrence_date ASC
	`

	var exceptions []*model.ShiftException
	if err := r.db.SelectContext(ctx, &exceptions, query, parentID); err != nil {
		return nil, fmt.Errorf("failed to list shift exceptions: %w", err)
	}
	return exceptions, nil
}

func (r *shiftRepository) UpsertException(ctx context.Context, exception *model.ShiftException) error {
	query := `
		INSERT INTO shift_exceptions (id, parent_shift_id, occurrence_date, kind, shift_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (parent_shift_id, occurrence_date)
		DO UPDATE SET kind = EXCLUDED.kind, shift_id = EXCLUDED.shift_id
	`
	if exception.ID == uuid.Nil {
		exception.ID = uuid.New()
	}
	exception.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		exception.ID,
		exception.ParentShiftID,
		exception.OccurrenceDate,
		exception.Kind,
		exception.ShiftID,
		exception.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert shift exception: %w", err)
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
