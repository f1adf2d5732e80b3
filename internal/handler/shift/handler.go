package shift

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/httputil"
)

type Service interface {
	ListShifts(ctx context.Context, ownerID uuid.UUID) []*model.Shift
	ListShiftsInRange(ctx context.Context, ownerID uuid.UUID, rangeStart, rangeEnd time.Time) []*model.Shift
	GetShift(ctx context.Context, actor *model.Principal, id uuid.UUID) (*model.Shift, error)
	CheckOverlap(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool
	CreateShift(ctx context.Context, actor *model.Principal, req *model.CreateShiftRequest) (*model.Shift, error)
	GetShiftGroup(ctx context.Context, shiftID uuid.UUID) []*model.Shift
	UpdateShift(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateShiftRequest) (*model.Shift, error)
	UpdateShiftGroup(ctx context.Context, actor *model.Principal, shiftID uuid.UUID, req *model.UpdateShiftRequest) error
	DeleteShiftGroup(ctx context.Context, actor *model.Principal, shiftID uuid.UUID, onlyThis bool) (bool, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	shifts := r.Group("/shifts")
	{
		shifts.GET("", h.ListShifts)
		shifts.POST("", h.CreateShift)
		shifts.POST("/overlap", h.CheckOverlap)
		shifts.GET("/:id", h.GetShift)
		shifts.GET("/:id/group", h.GetGroup)
		shifts.PUT("/:id", h.UpdateShift)
		shifts.PUT("/:id/group", h.UpdateGroup)
		shifts.DELETE("/:id", h.DeleteShift)
	}
}

type overlapRequest struct {
	StartDate time.Time  `json:"start_date" binding:"required"`
	EndDate   time.Time  `json:"end_date" binding:"required,gtfield=StartDate"`
	ExcludeID *uuid.UUID `json:"exclude_id"`
}

// ListShifts returns every shift of the caller, or those intersecting
// [start, end] when both RFC 3339 bounds are given.
func (h *Handler) ListShifts(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}

	startRaw, endRaw := c.Query("start"), c.Query("end")
	if startRaw == "" && endRaw == "" {
		httputil.RespondWithSuccess(c, http.StatusOK, h.svc.ListShifts(c.Request.Context(), p.ID))
		return
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid start, expected RFC 3339", err))
		return
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid end, expected RFC 3339", err))
		return
	}
	if end.Before(start) {
		httputil.RespondWithError(c, apperrors.Validation("end must not be before start"))
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.ListShiftsInRange(c.Request.Context(), p.ID, start, end))
}

func (h *Handler) CreateShift(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	var req model.CreateShiftRequest
	if !handler.Bind(c, &req) {
		return
	}

	shift, err := h.svc.CreateShift(c.Request.Context(), p, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, shift)
}

func (h *Handler) CheckOverlap(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	var req overlapRequest
	if !handler.Bind(c, &req) {
		return
	}

	overlap := h.svc.CheckOverlap(c.Request.Context(), p.ID, req.StartDate, req.EndDate, req.ExcludeID)
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"overlap": overlap})
}

func (h *Handler) GetShift(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	shift, err := h.svc.GetShift(c.Request.Context(), p, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, shift)
}

// GetGroup checks access on the addressed shift before listing its group.
func (h *Handler) GetGroup(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if _, err := h.svc.GetShift(c.Request.Context(), p, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.GetShiftGroup(c.Request.Context(), id))
}

func (h *Handler) UpdateShift(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateShiftRequest
	if !handler.Bind(c, &req) {
		return
	}

	shift, err := h.svc.UpdateShift(c.Request.Context(), p, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, shift)
}

func (h *Handler) UpdateGroup(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateShiftRequest
	if !handler.Bind(c, &req) {
		return
	}

	if err := h.svc.UpdateShiftGroup(c.Request.Context(), p, id, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.GetShiftGroup(c.Request.Context(), id))
}

// DeleteShift removes the whole group unless only_this=true.
func (h *Handler) DeleteShift(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	onlyThis := c.Query("only_this") == "true"

	allDeleted, err := h.svc.DeleteShiftGroup(c.Request.Context(), p, id, onlyThis)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": allDeleted})
}
