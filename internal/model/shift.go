package model

import (
	"time"

	"github.com/google/uuid"
)

type ShiftType string

const (
	ShiftTypeFixedHospital ShiftType = "fixed_hospital"
	ShiftTypeOnCall        ShiftType = "on_call"
)

type RecurrenceType string

const (
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

type Shift struct {
	Base
	UserID            uuid.UUID       `db:"user_id" json:"user_id"`
	Title             string          `db:"title" json:"title"`
	StartDate         time.Time       `db:"start_date" json:"start_date"`
	EndDate           time.Time       `db:"end_date" json:"end_date"`
	ShiftType         ShiftType       `db:"shift_type" json:"shift_type"`
	HospitalName      *string         `db:"hospital_name" json:"hospital_name,omitempty"`
	Description       *string         `db:"description" json:"description,omitempty"`
	IsRecurring       bool            `db:"is_recurring" json:"is_recurring"`
	RecurrenceType    *RecurrenceType `db:"recurrence_type" json:"recurrence_type,omitempty"`
	RecurrenceEndDate *string         `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	ParentShiftID     *uuid.UUID      `db:"parent_shift_id" json:"parent_shift_id,omitempty"`
	IsGenerated       bool            `db:"is_generated" json:"is_generated"`
	OccurrenceDate    *time.Time      `db:"occurrence_date" json:"occurrence_date,omitempty"`
}

// GroupID is the id addressing the recurring group this shift belongs to.
func (s *Shift) GroupID() uuid.UUID {
	if s.ParentShiftID != nil {
		return *s.ParentShiftID
	}
	return s.ID
}

type ShiftExceptionKind string

const (
	ShiftExceptionOverride  ShiftExceptionKind = "override"
	ShiftExceptionCancelled ShiftExceptionKind = "cancelled"
)

// ShiftException marks one occurrence of a series that was edited on its own
// or cancelled, so regeneration leaves that date alone.
type ShiftException struct {
	ID             uuid.UUID          `db:"id" json:"id"`
	ParentShiftID  uuid.UUID          `db:"parent_shift_id" json:"parent_shift_id"`
	OccurrenceDate time.Time          `db:"occurrence_date" json:"occurrence_date"`
	Kind           ShiftExceptionKind `db:"kind" json:"kind"`
	ShiftID        *uuid.UUID         `db:"shift_id" json:"shift_id,omitempty"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

type CreateShiftRequest struct {
	UserID            *uuid.UUID      `json:"user_id"`
	Title             string          `json:"title" binding:"required,max=200"`
	StartDate         time.Time       `json:"start_date" binding:"required"`
	EndDate           time.Time       `json:"end_date" binding:"required,gtfield=StartDate"`
	ShiftType         ShiftType       `json:"shift_type" binding:"required,oneof=fixed_hospital on_call"`
	HospitalName      *string         `json:"hospital_name" binding:"omitempty,max=200"`
	Description       *string         `json:"description" binding:"omitempty,max=2000"`
	IsRecurring       bool            `json:"is_recurring"`
	RecurrenceType    *RecurrenceType `json:"recurrence_type" binding:"omitempty,oneof=weekly monthly"`
	RecurrenceEndDate *string         `json:"recurrence_end_date"`
}

// UpdateShiftRequest carries the fields a caller may change. Nil means untouched.
type UpdateShiftRequest struct {
	Title        *string    `json:"title" binding:"omitempty,max=200"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	ShiftType    *ShiftType `json:"shift_type" binding:"omitempty,oneof=fixed_hospital on_call"`
	HospitalName *string    `json:"hospital_name" binding:"omitempty,max=200"`
	Description  *string    `json:"description" binding:"omitempty,max=2000"`
}

// HasTemporal reports whether the request moves the shift in time.
func (r *UpdateShiftRequest) HasTemporal() bool {
	return r.StartDate != nil || r.EndDate != nil
}

// Common returns the non-temporal part of the request.
func (r *UpdateShiftRequest) Common() ShiftCommonFields {
	return ShiftCommonFields{
		Title:        r.Title,
		ShiftType:    r.ShiftType,
		HospitalName: r.HospitalName,
		Description:  r.Description,
	}
}

// ShiftCommonFields are propagated to every member of a group.
type ShiftCommonFields struct {
	Title        *string
	ShiftType    *ShiftType
	HospitalName *string
	Description  *string
}

func (f ShiftCommonFields) Empty() bool {
	return f.Title == nil && f.ShiftType == nil && f.HospitalName == nil && f.Description == nil
}
