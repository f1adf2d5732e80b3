package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/anesteasy/api/internal/repository"
)

type shiftRepository struct {
	BaseRepository
}

type principalRepository struct {
	BaseRepository
}

type anesthesiologistRepository struct {
	BaseRepository
}

type secretaryRepository struct {
	BaseRepository
}

type delegationRepository struct {
	BaseRepository
}

type procedureRepository struct {
	BaseRepository
}

type notificationRepository struct {
	BaseRepository
}

type goalRepository struct {
	BaseRepository
}

type feedbackRepository struct {
	BaseRepository
}

type subscriptionRepository struct {
	BaseRepository
}

type credentialRepository struct {
	BaseRepository
}

type tokenRepository struct {
	BaseRepository
}

type outboxRepository struct {
	BaseRepository
}

func NewShiftRepository(db *sqlx.DB) repository.ShiftRepository {
	return &shiftRepository{NewBaseRepository(db)}
}

func NewPrincipalRepository(db *sqlx.DB) repository.PrincipalRepository {
	return &principalRepository{NewBaseRepository(db)}
}

func NewAnesthesiologistRepository(db *sqlx.DB) repository.AnesthesiologistRepository {
	return &anesthesiologistRepository{NewBaseRepository(db)}
}

func NewSecretaryRepository(db *sqlx.DB) repository.SecretaryRepository {
	return &secretaryRepository{NewBaseRepository(db)}
}

func NewDelegationRepository(db *sqlx.DB) repository.DelegationRepository {
	return &delegationRepository{NewBaseRepository(db)}
}

func NewProcedureRepository(db *sqlx.DB) repository.ProcedureRepository {
	return &procedureRepository{NewBaseRepository(db)}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{NewBaseRepository(db)}
}

func NewGoalRepository(db *sqlx.DB) repository.GoalRepository {
	return &goalRepository{NewBaseRepository(db)}
}

func NewFeedbackRepository(db *sqlx.DB) repository.FeedbackRepository {
	return &feedbackRepository{NewBaseRepository(db)}
}

func NewSubscriptionRepository(db *sqlx.DB) repository.SubscriptionRepository {
	return &subscriptionRepository{NewBaseRepository(db)}
}

func NewCredentialRepository(db *sqlx.DB) repository.CredentialRepository {
	return &credentialRepository{NewBaseRepository(db)}
}

func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{NewBaseRepository(db)}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}
