package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/anesteasy/api/internal/model"
)

const procedureColumns = `id, user_id, secretary_id, procedure_name, procedure_type, procedure_date,
	procedure_value, patient_name, patient_age, patient_gender, hospital_clinic, surgeon_name,
	anesthesia_type, duration_minutes, payment_status, payment_method, payment_date, notes,
	created_at, updated_at`

const installmentColumns = `id, procedure_id, number, amount, due_date, received, received_date, created_at, updated_at`

func (r *procedureRepository) Create(ctx context.Context, p *model.Procedure) error {
	query := `
		INSERT INTO procedures (
			id, user_id, secretary_id, procedure_name, procedure_type, procedure_date,
			procedure_value, patient_name, patient_age, patient_gender, hospital_clinic, surgeon_name,
			anesthesia_type, duration_minutes, payment_status, payment_method, payment_date, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.SecretaryID,
		p.ProcedureName,
		p.ProcedureType,
		p.ProcedureDate,
		p.ProcedureValue,
		p.PatientName,
		p.PatientAge,
		p.PatientGender,
		p.HospitalClinic,
		p.SurgeonName,
		p.AnesthesiaType,
		p.DurationMin,
		p.PaymentStatus,
		p.PaymentMethod,
		p.PaymentDate,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create procedure: %w", err)
	}
	return nil
}

func (r *procedureRepository) Get(ctx context.Context, id uuid.UUID) (*model.Procedure, error) {
	query := `SELECT ` + procedureColumns + ` FROM procedures WHERE id = $1`

	var p model.Procedure
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, notFound(err, "get procedure")
	}
	return &p, nil
}

func (r *procedureRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Procedure, error) {
	query := `SELECT ` + procedureColumns + ` FROM procedures WHERE user_id = $1 ORDER BY procedure_date DESC`

	var procedures []*model.Procedure
	if err := r.db.SelectContext(ctx, &procedures, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list procedures: %w", err)
	}
	return procedures, nil
}

func (r *procedureRepository) ListByOwners(ctx context.Context, ownerIDs []uuid.UUID) ([]*model.Procedure, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + procedureColumns + ` FROM procedures WHERE user_id = ANY($1) ORDER BY procedure_date DESC`

	var procedures []*model.Procedure
	if err := r.db.SelectContext(ctx, &procedures, query, pq.Array(uuidStrings(ownerIDs))); err != nil {
		return nil, fmt.Errorf("failed to list procedures for owners: %w", err)
	}
	return procedures, nil
}

func (r *procedureRepository) ListBySecretary(ctx context.Context, secretaryID uuid.UUID) ([]*model.Procedure, error) {
	query := `SELECT ` + procedureColumns + ` FROM procedures WHERE secretary_id = $1 ORDER BY procedure_date DESC`

	var procedures []*model.Procedure
	if err := r.db.SelectContext(ctx, &procedures, query, secretaryID); err != nil {
		return nil, fmt.Errorf("failed to list procedures for secretary: %w", err)
	}
	return procedures, nil
}

func (r *procedureRepository) ListByDateRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]*model.Procedure, error) {
	query := `
		SELECT ` + procedureColumns + `
		FROM procedures
		WHERE user_id = $1 AND procedure_date >= $2 AND procedure_date <= $3
		ORDER BY procedure_date DESC
	`
	var procedures []*model.Procedure
	if err := r.db.SelectContext(ctx, &procedures, query, ownerID, start, end); err != nil {
		return nil, fmt.Errorf("failed to list procedures in range: %w", err)
	}
	return procedures, nil
}

// Update applies a sparse column update. Columns outside the mutable set are rejected.
func (r *procedureRepository) Update(ctx context.Context, id uuid.UUID, fields model.ProcedureUpdate) error {
	if len(fields) == 0 {
		return nil
	}

	columns := make([]string, 0, len(fields))
	for column := range fields {
		if _, ok := model.ProcedureMutableFields[column]; !ok {
			return fmt.Errorf("column %q is not updatable", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	sets := make([]string, 0, len(columns)+1)
	args := make([]interface{}, 0, len(columns)+2)
	for i, column := range columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, i+1))
		args = append(args, fields[column])
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(columns)+1))
	args = append(args, time.Now(), id)

	query := fmt.Sprintf(`UPDATE procedures SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	return execOne(ctx, r.db, "update procedure", query, args...)
}

func (r *procedureRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, "delete procedure", `DELETE FROM procedures WHERE id = $1`, id)
}

func (r *procedureRepository) CreateLogs(ctx context.Context, logs []*model.ProcedureLog) error {
	if len(logs) == 0 {
		return nil
	}
	query := `
		INSERT INTO procedure_logs (
			id, procedure_id, changed_by_id, changed_by_type, changed_by_name,
			field_name, old_value, new_value, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		for _, l := range logs {
			if l.ID == uuid.Nil {
				l.ID = uuid.New()
			}
			l.CreatedAt = now
			if _, err := tx.ExecContext(ctx, query,
				l.ID, l.ProcedureID, l.ChangedByID, l.ChangedByType, l.ChangedByName,
				l.FieldName, l.OldValue, l.NewValue, l.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to create procedure log: %w", err)
			}
		}
		return nil
	})
}

func (r *procedureRepository) ListLogs(ctx context.Context, procedureID uuid.UUID) ([]*model.ProcedureLog, error) {
	query := `
		SELECT id, procedure_id, changed_by_id, changed_by_type, changed_by_name,
			field_name, old_value, new_value, created_at
		FROM procedure_logs
		WHERE procedure_id = $1
		ORDER BY created_at DESC
	`
	var logs []*model.ProcedureLog
	if err := r.db.SelectContext(ctx, &logs, query, procedureID); err != nil {
		return nil, fmt.Errorf("failed to list procedure logs: %w", err)
	}
	return logs, nil
}

func (r *procedureRepository) ListInstallments(ctx context.Context, procedureID uuid.UUID) ([]*model.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE procedure_id = $1 ORDER BY number ASC`

	var installments []*model.Installment
	if err := r.db.SelectContext(ctx, &installments, query, procedureID); err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	return installments, nil
}

func (r *procedureRepository) ListInstallmentsByProcedures(ctx context.Context, procedureIDs []uuid.UUID) ([]*model.Installment, error) {
	if len(procedureIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE procedure_id = ANY($1) ORDER BY procedure_id, number ASC`

	var installments []*model.Installment
	if err := r.db.SelectContext(ctx, &installments, query, pq.Array(uuidStrings(procedureIDs))); err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	return installments, nil
}

func (r *procedureRepository) GetInstallment(ctx context.Context, id uuid.UUID) (*model.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`

	var installment model.Installment
	if err := r.db.GetContext(ctx, &installment, query, id); err != nil {
		return nil, notFound(err, "get installment")
	}
	return &installment, nil
}

func (r *procedureRepository) CreateInstallments(ctx context.Context, installments []*model.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	query := `
		INSERT INTO installments (id, procedure_id, number, amount, due_date, received, received_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now()
		for _, in := range installments {
			if in.ID == uuid.Nil {
				in.ID = uuid.New()
			}
			in.CreatedAt = now
			in.UpdatedAt = now
			if _, err := tx.ExecContext(ctx, query,
				in.ID, in.ProcedureID, in.Number, in.Amount, in.DueDate, in.Received, in.ReceivedDate, in.CreatedAt, in.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to create installment: %w", err)
			}
		}
		return nil
	})
}

func (r *procedureRepository) UpdateInstallment(ctx context.Context, installment *model.Installment) error {
	query := `
		UPDATE installments
		SET amount = $1, due_date = $2, received = $3, received_date = $4, updated_at = $5
		WHERE id = $6
	`
	installment.UpdatedAt = time.Now()
	return execOne(ctx, r.db, "update installment", query,
		installment.Amount,
		installment.DueDate,
		installment.Received,
		installment.ReceivedDate,
		installment.UpdatedAt,
		installment.ID,
	)
}

func (r *procedureRepository) DeleteInstallments(ctx context.Context, procedureID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM installments WHERE procedure_id = $1`, procedureID); err != nil {
		return fmt.Errorf("failed to delete installments: %w", err)
	}
	return nil
}
