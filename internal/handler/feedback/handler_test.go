package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	feedbackService "github.com/anesteasy/api/internal/service/feedback"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) URL(token string) string {
	return m.Called(token).String(0)
}

func (m *mockService) CreateLink(ctx context.Context, actor *model.Principal, procedureID uuid.UUID, req *model.CreateFeedbackLinkRequest) (*model.FeedbackLink, error) {
	args := m.Called(ctx, actor, procedureID, req)
	l, _ := args.Get(0).(*model.FeedbackLink)
	return l, args.Error(1)
}

func (m *mockService) Validate(ctx context.Context, token string) (*model.FeedbackLink, error) {
	args := m.Called(ctx, token)
	l, _ := args.Get(0).(*model.FeedbackLink)
	return l, args.Error(1)
}

func (m *mockService) Submit(ctx context.Context, token string, req *model.SubmitFeedbackRequest) (*model.FeedbackResponse, error) {
	args := m.Called(ctx, token, req)
	r, _ := args.Get(0).(*model.FeedbackResponse)
	return r, args.Error(1)
}

func (m *mockService) Status(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) (*model.FeedbackStatus, error) {
	args := m.Called(ctx, actor, procedureID)
	s, _ := args.Get(0).(*model.FeedbackStatus)
	return s, args.Error(1)
}

func (m *mockService) Response(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) (*model.FeedbackResponse, error) {
	args := m.Called(ctx, actor, procedureID)
	r, _ := args.Get(0).(*model.FeedbackResponse)
	return r, args.Error(1)
}

func setup(t *testing.T, p *model.Principal) (*gin.Engine, *mockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handler.RegisterValidators())

	svc := new(mockService)
	h := NewHandler(svc)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(func(c *gin.Context) {
		handler.SetPrincipal(c, p)
		c.Next()
	})
	h.RegisterProcedureRoutes(protected)
	return r, svc
}

func send(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLink_ReturnsURL(t *testing.T) {
	p := &model.Principal{ID: uuid.New(), Kind: model.PrincipalAnesthesiologist, Anesthesiologist: &model.Anesthesiologist{}}
	r, svc := setup(t, p)
	procID := uuid.New()
	svc.On("CreateLink", mock.Anything, p, procID, mock.Anything).Return(&model.FeedbackLink{Token: "abc"}, nil)
	svc.On("URL", "abc").Return("https://app.example/feedback/abc")

	w := send(r, http.MethodPost, "/api/v1/procedures/"+procID.String()+"/feedback", map[string]interface{}{
		"surgeon_email": "cirurgiao@example.com",
		"send_email":    true,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "https://app.example/feedback/abc")
}

func TestValidate_HidesLinkDetails(t *testing.T) {
	r, svc := setup(t, nil)
	svc.On("Validate", mock.Anything, "tok").Return(&model.FeedbackLink{
		Token:        "tok",
		SurgeonEmail: "cirurgiao@example.com",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil)

	w := send(r, http.MethodGet, "/api/v1/feedback/tok", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)
	assert.NotContains(t, w.Body.String(), "cirurgiao@example.com")
}

func TestSubmit_SecondAnswerConflicts(t *testing.T) {
	r, svc := setup(t, nil)
	svc.On("Submit", mock.Anything, "tok", mock.Anything).
		Return(nil, apperrors.Conflict(feedbackService.ErrAlreadyAnswered.Error(), feedbackService.ErrAlreadyAnswered))

	w := send(r, http.MethodPost, "/api/v1/feedback/tok", map[string]bool{"headache": true})
	assert.Equal(t, http.StatusConflict, w.Code)
}
