package notification

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, actor *model.Principal, req *model.CreateNotificationRequest) (*model.Notification, error) {
	args := m.Called(ctx, actor, req)
	n, _ := args.Get(0).(*model.Notification)
	return n, args.Error(1)
}

func (m *mockService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) []*model.Notification {
	n, _ := m.Called(ctx, userID, unreadOnly).Get(0).([]*model.Notification)
	return n
}

func (m *mockService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func setup(p *model.Principal) (*gin.Engine, *mockService) {
	gin.SetMode(gin.TestMode)
	svc := new(mockService)
	r := gin.New()
	api := r.Group("")
	api.Use(func(c *gin.Context) {
		handler.SetPrincipal(c, p)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return r, svc
}

func TestList_UnreadFilter(t *testing.T) {
	p := &model.Principal{ID: uuid.New(), Kind: model.PrincipalSecretary, Secretary: &model.Secretary{}}
	r, svc := setup(p)
	svc.On("List", mock.Anything, p.ID, true).Return([]*model.Notification{{Title: "Nova solicitação"}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications?unread=true", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nova solicitação")
}

func TestMarkRead_OtherUsersNotification(t *testing.T) {
	p := &model.Principal{ID: uuid.New(), Kind: model.PrincipalSecretary, Secretary: &model.Secretary{}}
	r, svc := setup(p)
	id := uuid.New()
	svc.On("MarkRead", mock.Anything, p.ID, id).Return(apperrors.Forbidden(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/"+id.String()+"/read", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
