package shift

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
	shiftService "github.com/anesteasy/api/internal/service/shift"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ListShifts(ctx context.Context, ownerID uuid.UUID) []*model.Shift {
	shifts, _ := m.Called(ctx, ownerID).Get(0).([]*model.Shift)
	return shifts
}

func (m *mockService) ListShiftsInRange(ctx context.Context, ownerID uuid.UUID, rangeStart, rangeEnd time.Time) []*model.Shift {
	shifts, _ := m.Called(ctx, ownerID, rangeStart, rangeEnd).Get(0).([]*model.Shift)
	return shifts
}

func (m *mockService) GetShift(ctx context.Context, actor *model.Principal, id uuid.UUID) (*model.Shift, error) {
	args := m.Called(ctx, actor, id)
	shift, _ := args.Get(0).(*model.Shift)
	return shift, args.Error(1)
}

func (m *mockService) CheckOverlap(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool {
	return m.Called(ctx, ownerID, start, end, excludeID).Bool(0)
}

func (m *mockService) CreateShift(ctx context.Context, actor *model.Principal, req *model.CreateShiftRequest) (*model.Shift, error) {
	args := m.Called(ctx, actor, req)
	shift, _ := args.Get(0).(*model.Shift)
	return shift, args.Error(1)
}

func (m *mockService) GetShiftGroup(ctx context.Context, shiftID uuid.UUID) []*model.Shift {
	shifts, _ := m.Called(ctx, shiftID).Get(0).([]*model.Shift)
	return shifts
}

func (m *mockService) UpdateShift(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateShiftRequest) (*model.Shift, error) {
	args := m.Called(ctx, actor, id, req)
	shift, _ := args.Get(0).(*model.Shift)
	return shift, args.Error(1)
}

func (m *mockService) UpdateShiftGroup(ctx context.Context, actor *model.Principal, shiftID uuid.UUID, req *model.UpdateShiftRequest) error {
	return m.Called(ctx, actor, shiftID, req).Error(0)
}

func (m *mockService) DeleteShiftGroup(ctx context.Context, actor *model.Principal, shiftID uuid.UUID, onlyThis bool) (bool, error) {
	args := m.Called(ctx, actor, shiftID, onlyThis)
	return args.Bool(0), args.Error(1)
}

func setup(t *testing.T) (*gin.Engine, *mockService, *model.Principal) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, handler.RegisterValidators())

	id := uuid.New()
	p := &model.Principal{ID: id, Kind: model.PrincipalAnesthesiologist, Anesthesiologist: &model.Anesthesiologist{}}
	svc := new(mockService)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		handler.SetPrincipal(c, p)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return r, svc, p
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

func TestCreateShift_OverlapIsConflict(t *testing.T) {
	r, svc, p := setup(t)
	svc.On("CreateShift", mock.Anything, p, mock.Anything).
		Return(nil, apperrors.Conflict(shiftService.ErrShiftOverlap.Error(), shiftService.ErrShiftOverlap))

	w := send(r, http.MethodPost, "/api/v1/shifts", map[string]interface{}{
		"title":      "Plantão",
		"start_date": "2024-01-01T07:00:00Z",
		"end_date":   "2024-01-01T19:00:00Z",
		"shift_type": "on_call",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "overlaps")
}

func TestCreateShift_RejectsInvertedInterval(t *testing.T) {
	r, svc, _ := setup(t)

	w := send(r, http.MethodPost, "/api/v1/shifts", map[string]interface{}{
		"title":      "Plantão",
		"start_date": "2024-01-01T19:00:00Z",
		"end_date":   "2024-01-01T07:00:00Z",
		"shift_type": "on_call",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateShift", mock.Anything, mock.Anything, mock.Anything)
}

func TestListShifts_Range(t *testing.T) {
	r, svc, p := setup(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)
	svc.On("ListShiftsInRange", mock.Anything, p.ID, start, end).Return([]*model.Shift{{Title: "A"}})

	w := send(r, http.MethodGet, "/api/v1/shifts?start=2024-01-01T00:00:00Z&end=2024-01-31T23:59:59Z", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"A"`)
	svc.AssertNotCalled(t, "ListShifts", mock.Anything, mock.Anything)
}

func TestListShifts_BadBound(t *testing.T) {
	r, _, _ := setup(t)

	w := send(r, http.MethodGet, "/api/v1/shifts?start=yesterday&end=2024-01-31T23:59:59Z", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteShift_OnlyThis(t *testing.T) {
	r, svc, p := setup(t)
	id := uuid.New()
	svc.On("DeleteShiftGroup", mock.Anything, p, id, true).Return(true, nil)

	w := send(r, http.MethodDelete, "/api/v1/shifts/"+id.String()+"?only_this=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":true`)
	svc.AssertExpectations(t)
}

func TestGetGroup_ChecksAccessFirst(t *testing.T) {
	r, svc, p := setup(t)
	id := uuid.New()
	svc.On("GetShift", mock.Anything, p, id).Return(nil, apperrors.Forbidden(""))

	w := send(r, http.MethodGet, "/api/v1/shifts/"+id.String()+"/group", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "GetShiftGroup", mock.Anything, mock.Anything)
}

func TestGetShift_BadID(t *testing.T) {
	r, _, _ := setup(t)

	w := send(r, http.MethodGet, "/api/v1/shifts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
