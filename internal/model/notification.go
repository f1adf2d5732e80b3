package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationInfo        NotificationType = "info"
	NotificationLinkRequest NotificationType = "link_request"
)

type Notification struct {
	ID        uuid.UUID        `db:"id" json:"id"`
	UserID    uuid.UUID        `db:"user_id" json:"user_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

type CreateNotificationRequest struct {
	UserID  *uuid.UUID       `json:"user_id"`
	Title   string           `json:"title" binding:"required,max=200"`
	Message string           `json:"message" binding:"required,max=2000"`
	Type    NotificationType `json:"type" binding:"omitempty,oneof=info link_request"`
}
