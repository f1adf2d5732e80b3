package feedback

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/pkg/httputil"
)

type Service interface {
	URL(token string) string
	CreateLink(ctx context.Context, actor *model.Principal, procedureID uuid.UUID, req *model.CreateFeedbackLinkRequest) (*model.FeedbackLink, error)
	Validate(ctx context.Context, token string) (*model.FeedbackLink, error)
	Submit(ctx context.Context, token string, req *model.SubmitFeedbackRequest) (*model.FeedbackResponse, error)
	Status(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) (*model.FeedbackStatus, error)
	Response(ctx context.Context, actor *model.Principal, procedureID uuid.UUID) (*model.FeedbackResponse, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type linkResponse struct {
	Link *model.FeedbackLink `json:"link"`
	URL  string              `json:"url"`
}

type tokenState struct {
	Valid     bool      `json:"valid"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterRoutes mounts the surgeon-facing token endpoints, which need no session.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/feedback")
	{
		public.GET("/:token", h.Validate)
		public.POST("/:token", h.Submit)
	}
}

func (h *Handler) RegisterProcedureRoutes(r *gin.RouterGroup) {
	fb := r.Group("/procedures/:id/feedback")
	{
		fb.POST("", h.CreateLink)
		fb.GET("", h.Status)
		fb.GET("/response", h.Response)
	}
}

func (h *Handler) CreateLink(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.CreateFeedbackLinkRequest
	if !handler.Bind(c, &req) {
		return
	}

	link, err := h.svc.CreateLink(c.Request.Context(), p, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, linkResponse{Link: link, URL: h.svc.URL(link.Token)})
}

func (h *Handler) Status(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	status, err := h.svc.Status(c.Request.Context(), p, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, status)
}

func (h *Handler) Response(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.svc.Response(c.Request.Context(), p, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}

// Validate tells the form whether the token can still be answered. The link
// itself is not returned since the caller is anonymous.
func (h *Handler) Validate(c *gin.Context) {
	link, err := h.svc.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, tokenState{Valid: true, ExpiresAt: link.ExpiresAt})
}

func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitFeedbackRequest
	if !handler.Bind(c, &req) {
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, resp)
}
