package model

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentMethodInstallments marks procedures paid in installments.
const PaymentMethodInstallments = "installments"

type Procedure struct {
	Base
	UserID         uuid.UUID     `db:"user_id" json:"user_id"`
	SecretaryID    *uuid.UUID    `db:"secretary_id" json:"secretary_id,omitempty"`
	ProcedureName  string        `db:"procedure_name" json:"procedure_name"`
	ProcedureType  string        `db:"procedure_type" json:"procedure_type"`
	ProcedureDate  time.Time     `db:"procedure_date" json:"procedure_date"`
	ProcedureValue float64       `db:"procedure_value" json:"procedure_value"`
	PatientName    *string       `db:"patient_name" json:"patient_name,omitempty"`
	PatientAge     *int          `db:"patient_age" json:"patient_age,omitempty"`
	PatientGender  *string       `db:"patient_gender" json:"patient_gender,omitempty"`
	HospitalClinic *string       `db:"hospital_clinic" json:"hospital_clinic,omitempty"`
	SurgeonName    *string       `db:"surgeon_name" json:"surgeon_name,omitempty"`
	AnesthesiaType *string       `db:"anesthesia_type" json:"anesthesia_type,omitempty"`
	DurationMin    *int          `db:"duration_minutes" json:"duration_minutes,omitempty"`
	PaymentStatus  PaymentStatus `db:"payment_status" json:"payment_status"`
	PaymentMethod  *string       `db:"payment_method" json:"payment_method,omitempty"`
	PaymentDate    *time.Time    `db:"payment_date" json:"payment_date,omitempty"`
	Notes          *string       `db:"notes" json:"notes,omitempty"`
}

type CreateProcedureRequest struct {
	UserID         *uuid.UUID     `json:"user_id"`
	ProcedureName  string         `json:"procedure_name" binding:"required,max=200"`
	ProcedureType  string         `json:"procedure_type" binding:"required,max=100"`
	ProcedureDate  time.Time      `json:"procedure_date" binding:"required"`
	ProcedureValue float64        `json:"procedure_value" binding:"gte=0"`
	PatientName    *string        `json:"patient_name" binding:"omitempty,max=200"`
	PatientAge     *int           `json:"patient_age" binding:"omitempty,gte=0,lte=150"`
	PatientGender  *string        `json:"patient_gender" binding:"omitempty,max=20"`
	HospitalClinic *string        `json:"hospital_clinic" binding:"omitempty,max=200"`
	SurgeonName    *string        `json:"surgeon_name" binding:"omitempty,max=200"`
	AnesthesiaType *string        `json:"anesthesia_type" binding:"omitempty,max=100"`
	DurationMin    *int           `json:"duration_minutes" binding:"omitempty,gte=0"`
	PaymentStatus  *PaymentStatus `json:"payment_status" binding:"omitempty,oneof=pending paid cancelled"`
	PaymentMethod  *string        `json:"payment_method" binding:"omitempty,max=50"`
	PaymentDate    *time.Time     `json:"payment_date"`
	Notes          *string        `json:"notes" binding:"omitempty,max=4000"`
}

// ProcedureUpdate is a sparse column → value update; only mutable columns are accepted.
type ProcedureUpdate map[string]interface{}

// ProcedureMutableFields lists the columns a caller may change.
var ProcedureMutableFields = map[string]struct{}{
	"procedure_name":   {},
	"procedure_type":   {},
	"procedure_date":   {},
	"procedure_value":  {},
	"patient_name":     {},
	"patient_age":      {},
	"patient_gender":   {},
	"hospital_clinic":  {},
	"surgeon_name":     {},
	"anesthesia_type":  {},
	"duration_minutes": {},
	"payment_status":   {},
	"payment_method":   {},
	"payment_date":     {},
	"notes":            {},
}

type ActorType string

const (
	ActorAnesthesiologist ActorType = "anesthesiologist"
	ActorSecretary        ActorType = "secretary"
)

// ProcedureLog is one changed field of one procedure update.
type ProcedureLog struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ProcedureID   uuid.UUID `db:"procedure_id" json:"procedure_id"`
	ChangedByID   uuid.UUID `db:"changed_by_id" json:"changed_by_id"`
	ChangedByType ActorType `db:"changed_by_type" json:"changed_by_type"`
	ChangedByName string    `db:"changed_by_name" json:"changed_by_name"`
	FieldName     string    `db:"field_name" json:"field_name"`
	OldValue      *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue      *string   `db:"new_value" json:"new_value,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

type Installment struct {
	Base
	ProcedureID  uuid.UUID  `db:"procedure_id" json:"procedure_id"`
	Number       int        `db:"number" json:"number"`
	Amount       float64    `db:"amount" json:"amount"`
	DueDate      *time.Time `db:"due_date" json:"due_date,omitempty"`
	Received     bool       `db:"received" json:"received"`
	ReceivedDate *time.Time `db:"received_date" json:"received_date,omitempty"`
}

type CreateInstallmentRequest struct {
	Number  int        `json:"number" binding:"required,gte=1"`
	Amount  float64    `json:"amount" binding:"gte=0"`
	DueDate *time.Time `json:"due_date"`
}

type UpdateInstallmentRequest struct {
	Received     *bool      `json:"received"`
	ReceivedDate *time.Time `json:"received_date"`
	Amount       *float64   `json:"amount" binding:"omitempty,gte=0"`
	DueDate      *time.Time `json:"due_date"`
}

// ProcedureStats summarizes an owner's procedures by payment state.
type ProcedureStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Cancelled      int     `json:"cancelled"`
	TotalValue     float64 `json:"total_value"`
	CompletedValue float64 `json:"completed_value"`
	PendingValue   float64 `json:"pending_value"`
}
