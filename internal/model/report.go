package model

import "time"

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ProcedureReport is the procedure listing of one owner with its totals.
type ProcedureReport struct {
	Procedures  []*Procedure    `json:"procedures"`
	Stats       *ProcedureStats `json:"stats"`
	Period      ReportPeriod    `json:"period"`
	GeneratedAt time.Time       `json:"generated_at"`
}
