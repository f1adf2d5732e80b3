package goal

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/pkg/httputil"
)

type Service interface {
	Get(ctx context.Context, userID uuid.UUID) *model.Goal
	Save(ctx context.Context, userID uuid.UUID, req *model.SaveGoalRequest) (*model.Goal, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	goal := r.Group("/goal")
	{
		goal.GET("", h.Get)
		goal.PUT("", h.Save)
		goal.DELETE("", h.Delete)
	}
}

// Get answers null data when no goal is set.
func (h *Handler) Get(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.Get(c.Request.Context(), p.ID))
}

func (h *Handler) Save(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	var req model.SaveGoalRequest
	if !handler.Bind(c, &req) {
		return
	}

	goal, err := h.svc.Save(c.Request.Context(), p.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, goal)
}

func (h *Handler) Delete(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p.ID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
