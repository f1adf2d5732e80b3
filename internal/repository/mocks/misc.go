package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/anesteasy/api/internal/model"
)

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *NotificationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	args := m.Called(ctx, id)
	n, _ := args.Get(0).(*model.Notification)
	return n, args.Error(1)
}

func (m *NotificationRepository) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	n, _ := args.Get(0).([]*model.Notification)
	return n, args.Error(1)
}

func (m *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type GoalRepository struct {
	mock.Mock
}

func (m *GoalRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.Goal, error) {
	args := m.Called(ctx, userID)
	g, _ := args.Get(0).(*model.Goal)
	return g, args.Error(1)
}

func (m *GoalRepository) Upsert(ctx context.Context, goal *model.Goal) error {
	return m.Called(ctx, goal).Error(0)
}

func (m *GoalRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type FeedbackRepository struct {
	mock.Mock
}

func (m *FeedbackRepository) CreateLink(ctx context.Context, link *model.FeedbackLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *FeedbackRepository) GetLinkByToken(ctx context.Context, token string) (*model.FeedbackLink, error) {
	args := m.Called(ctx, token)
	l, _ := args.Get(0).(*model.FeedbackLink)
	return l, args.Error(1)
}

func (m *FeedbackRepository) GetLinkByProcedure(ctx context.Context, procedureID uuid.UUID) (*model.FeedbackLink, error) {
	args := m.Called(ctx, procedureID)
	l, _ := args.Get(0).(*model.FeedbackLink)
	return l, args.Error(1)
}

func (m *FeedbackRepository) SaveResponse(ctx context.Context, link *model.FeedbackLink, resp *model.FeedbackResponse) error {
	return m.Called(ctx, link, resp).Error(0)
}

func (m *FeedbackRepository) GetResponseByProcedure(ctx context.Context, procedureID uuid.UUID) (*model.FeedbackResponse, error) {
	args := m.Called(ctx, procedureID)
	r, _ := args.Get(0).(*model.FeedbackResponse)
	return r, args.Error(1)
}

type SubscriptionRepository struct {
	mock.Mock
}

func (m *SubscriptionRepository) GetLatest(ctx context.Context, userID uuid.UUID) (*model.Subscription, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*model.Subscription)
	return s, args.Error(1)
}

func (m *SubscriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Subscription, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*model.Subscription)
	return s, args.Error(1)
}

func (m *SubscriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubscriptionState) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *SubscriptionRepository) UpdateDaysUsed(ctx context.Context, id uuid.UUID, days int) error {
	return m.Called(ctx, id, days).Error(0)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	e, _ := args.Get(0).([]*model.OutboxEvent)
	return e, args.Error(1)
}

func (m *OutboxRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	return m.Called(ctx, id, status, errMsg).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
