package procedure

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, actor *model.Principal, req *model.CreateProcedureRequest) (*model.Procedure, error)
	Get(ctx context.Context, actor *model.Principal, id uuid.UUID) (*model.Procedure, error)
	List(ctx context.Context, actor *model.Principal) []*model.Procedure
	UpdateDelegated(ctx context.Context, actor *model.Principal, id uuid.UUID, updates model.ProcedureUpdate) (*model.Procedure, error)
	Delete(ctx context.Context, actor *model.Principal, id uuid.UUID) error
	ListLogs(ctx context.Context, actor *model.Principal, id uuid.UUID) ([]*model.ProcedureLog, error)
	Stats(ctx context.Context, ownerID uuid.UUID) *model.ProcedureStats

	ListInstallments(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) ([]*model.Installment, error)
	ReplaceInstallments(ctx context.Context, actor *model.Principal, procedureID uuid.UUID, reqs []model.CreateInstallmentRequest) ([]*model.Installment, error)
	UpdateInstallment(ctx context.Context, actor *model.Principal, installmentID uuid.UUID, req *model.UpdateInstallmentRequest) (*model.Installment, error)
	DeleteInstallments(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	procedures := r.Group("/procedures")
	{
		procedures.GET("", h.List)
		procedures.POST("", h.Create)
		procedures.GET("/stats", h.Stats)
		procedures.GET("/:id", h.Get)
		procedures.PATCH("/:id", h.Update)
		procedures.DELETE("/:id", h.Delete)
		procedures.GET("/:id/logs", h.ListLogs)
		procedures.GET("/:id/installments", h.ListInstallments)
		procedures.PUT("/:id/installments", h.ReplaceInstallments)
		procedures.DELETE("/:id/installments", h.DeleteInstallments)
	}
	r.PATCH("/installments/:id", h.UpdateInstallment)
}

type replaceInstallmentsRequest struct {
	Installments []model.CreateInstallmentRequest `json:"installments" binding:"required,dive"`
}

func (h *Handler) List(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.List(c.Request.Context(), p))
}

func (h *Handler) Create(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	var req model.CreateProcedureRequest
	if !handler.Bind(c, &req) {
		return
	}

	proc, err := h.svc.Create(c.Request.Context(), p, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, proc)
}

// Stats covers the caller's own procedures, so only anesthesiologists have any.
func (h *Handler) Stats(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	if !p.IsAnesthesiologist() {
		httputil.RespondWithError(c, apperrors.Forbidden("stats are available to anesthesiologists only"))
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.Stats(c.Request.Context(), p.ID))
}

func (h *Handler) Get(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	proc, err := h.svc.Get(c.Request.Context(), p, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, proc)
}

// Update takes a sparse column map; unknown columns are rejected by the service.
func (h *Handler) Update(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var updates model.ProcedureUpdate
	if !handler.Bind(c, &updates) {
		return
	}

	proc, err := h.svc.UpdateDelegated(c.Request.Context(), p, id, updates)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, proc)
}

func (h *Handler) Delete(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), p, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListLogs(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	logs, err := h.svc.ListLogs(c.Request.Context(), p, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, logs)
}

func (h *Handler) ListInstallments(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	installments, err := h.svc.ListInstallments(c.Request.Context(), p, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, installments)
}

func (h *Handler) ReplaceInstallments(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req replaceInstallmentsRequest
	if !handler.Bind(c, &req) {
		return
	}

	installments, err := h.svc.ReplaceInstallments(c.Request.Context(), p, id, req.Installments)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, installments)
}

func (h *Handler) DeleteInstallments(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteInstallments(c.Request.Context(), p, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateInstallment(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateInstallmentRequest
	if !handler.Bind(c, &req) {
		return
	}

	installment, err := h.svc.UpdateInstallment(c.Request.Context(), p, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, installment)
}
