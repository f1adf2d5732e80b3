package notification

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type Service interface {
	Create(ctx context.Context, actor *model.Principal, req *model.CreateNotificationRequest) (*model.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) []*model.Notification
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo  repository.NotificationRepository
	links repository.DelegationRepository
}

func NewService(repo repository.NotificationRepository, links repository.DelegationRepository) Service {
	return &service{repo: repo, links: links}
}

// Create stores a notification for the actor, or for a principal linked to
// the actor when req.UserID names one.
func (s *service) Create(ctx context.Context, actor *model.Principal, req *model.CreateNotificationRequest) (*model.Notification, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	recipient := actor.ID
	if req.UserID != nil && *req.UserID != actor.ID {
		if err := s.checkLinked(ctx, actor, *req.UserID); err != nil {
			return nil, err
		}
		recipient = *req.UserID
	}

	n := &model.Notification{
		UserID:  recipient,
		Title:   strings.TrimSpace(req.Title),
		Message: strings.TrimSpace(req.Message),
		Type:    req.Type,
	}
	if n.Type == "" {
		n.Type = model.NotificationInfo
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, apperrors.Internal(err)
	}
	return n, nil
}

func (s *service) checkLinked(ctx context.Context, actor *model.Principal, other uuid.UUID) error {
	var (
		linked bool
		err    error
	)
	switch {
	case actor.IsAnesthesiologist():
		linked, err = s.links.LinkExists(ctx, actor.ID, other)
	case actor.IsSecretary():
		linked, err = s.links.LinkExists(ctx, other, actor.ID)
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	if !linked {
		return apperrors.Forbidden("recipient is not linked to you")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) []*model.Notification {
	notifications, err := s.repo.List(ctx, userID, unreadOnly)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list notifications")
		return []*model.Notification{}
	}
	return notifications
}

func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("notification", err)
	}
	if err != nil {
		return apperrors.Internal(err)
	}
	if n.UserID != userID {
		return apperrors.Forbidden("")
	}
	if n.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func validate(req *model.CreateNotificationRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.Validation("title is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return apperrors.Validation("message is required")
	}
	return nil
}
