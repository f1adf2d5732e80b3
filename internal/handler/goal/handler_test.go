package goal

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Get(ctx context.Context, userID uuid.UUID) *model.Goal {
	g, _ := m.Called(ctx, userID).Get(0).(*model.Goal)
	return g
}

func (m *mockService) Save(ctx context.Context, userID uuid.UUID, req *model.SaveGoalRequest) (*model.Goal, error) {
	args := m.Called(ctx, userID, req)
	g, _ := args.Get(0).(*model.Goal)
	return g, args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func TestSave(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, handler.RegisterValidators())

	p := &model.Principal{ID: uuid.New(), Kind: model.PrincipalAnesthesiologist, Anesthesiologist: &model.Anesthesiologist{}}
	svc := new(mockService)
	r := gin.New()
	api := r.Group("")
	api.Use(func(c *gin.Context) {
		handler.SetPrincipal(c, p)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)

	put := func(body interface{}) *httptest.ResponseRecorder {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPut, "/goal", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	svc.On("Save", mock.Anything, p.ID, mock.Anything).Return(&model.Goal{TargetValue: 50000, ResetDay: 5, IsEnabled: true}, nil)

	w := put(map[string]interface{}{"target_value": 50000, "reset_day": 5, "is_enabled": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reset_day":5`)

	w = put(map[string]interface{}{"target_value": 50000, "reset_day": 32})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Save", 1)
}
