package model

import "github.com/google/uuid"

type Goal struct {
	Base
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	TargetValue float64   `db:"target_value" json:"target_value"`
	ResetDay    int       `db:"reset_day" json:"reset_day"`
	IsEnabled   bool      `db:"is_enabled" json:"is_enabled"`
}

type SaveGoalRequest struct {
	TargetValue float64 `json:"target_value" binding:"gte=0"`
	ResetDay    int     `json:"reset_day" binding:"required,gte=1,lte=31"`
	IsEnabled   bool    `json:"is_enabled"`
}
