package subscription

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
	Check(ctx context.Context, id uuid.UUID) *model.Access
	DaysUsed(ctx context.Context, userID uuid.UUID) int
	RefundEligibility(ctx context.Context, userID uuid.UUID) *model.RefundEligibility
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes must not sit behind the entitlement gate: a lapsed account
// still needs to see why.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sub := r.Group("/subscription")
	{
		sub.GET("/access", h.Access)
		sub.GET("/days-used", h.DaysUsed)
		sub.GET("/refund-eligibility", h.RefundEligibility)
	}
}

func (h *Handler) Access(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.Check(c.Request.Context(), p.ID))
}

func (h *Handler) DaysUsed(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"days_used": h.svc.DaysUsed(c.Request.Context(), p.ID)})
}

func (h *Handler) RefundEligibility(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.RefundEligibility(c.Request.Context(), p.ID))
}
