package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/service/notification"
	"github.com/anesteasy/api/pkg/httputil"
)

type Handler struct {
	svc notification.Service
}

func NewHandler(svc notification.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.POST("", h.Create)
		notifications.POST("/:id/read", h.MarkRead)
	}
}

// List returns the caller's notifications; unread=true keeps only unread ones.
func (h *Handler) List(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	unread := c.Query("unread") == "true"
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.List(c.Request.Context(), p.ID, unread))
}

func (h *Handler) Create(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	var req model.CreateNotificationRequest
	if !handler.Bind(c, &req) {
		return
	}

	n, err := h.svc.Create(c.Request.Context(), p, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, n)
}

func (h *Handler) MarkRead(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), p.ID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
