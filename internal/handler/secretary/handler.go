package secretary

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/httputil"
	"github.com/anesteasy/api/pkg/messaging"
)

const defaultHeartbeat = 25 * time.Second

type Service interface {
	CreateOrLinkSecretary(ctx context.Context, anesthesiologistID uuid.UUID, req *model.LinkSecretaryRequest) (*model.LinkResult, error)
	GenerateInvite(ctx context.Context, anesthesiologistID uuid.UUID, req *model.LinkSecretaryRequest) (*model.LinkResult, error)
	RevokeLink(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) error
	ListSecretaries(ctx context.Context, anesthesiologistID uuid.UUID) []*model.Secretary
	ResendTemporaryPassword(ctx context.Context, anesthesiologistID, secretaryID uuid.UUID) (*model.ResendPasswordResult, error)

	ListAnesthesiologists(ctx context.Context, secretaryID uuid.UUID) []*model.Anesthesiologist
	ListRequests(ctx context.Context, secretaryID uuid.UUID, status *model.LinkRequestStatus) []*model.LinkRequest
	RequestForNotification(ctx context.Context, secretaryID, notificationID uuid.UUID) (*model.LinkRequest, error)
	Accept(ctx context.Context, secretaryID, requestID uuid.UUID) (*model.AcceptResult, error)
	Reject(ctx context.Context, secretaryID, requestID uuid.UUID) (*model.LinkRequest, error)
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

type Handler struct {
	svc       Service
	events    Subscriber
	heartbeat time.Duration
}

func NewHandler(svc Service, events Subscriber) *Handler {
	return &Handler{svc: svc, events: events, heartbeat: defaultHeartbeat}
}

// RegisterRoutes mounts the anesthesiologist side on owners and the secretary
// side on secretaries. The caller gates each group by principal kind.
func (h *Handler) RegisterRoutes(owners, secretaries *gin.RouterGroup) {
	s := owners.Group("/secretaries")
	{
		s.GET("", h.ListSecretaries)
		s.POST("", h.LinkSecretary)
		s.POST("/invite", h.Invite)
		s.DELETE("/:id", h.Unlink)
		s.POST("/:id/resend-password", h.ResendPassword)
	}

	secretaries.GET("/anesthesiologists", h.ListAnesthesiologists)
	lr := secretaries.Group("/link-requests")
	{
		lr.GET("", h.ListRequests)
		lr.GET("/stream", h.Stream)
		lr.GET("/by-notification/:id", h.RequestForNotification)
		lr.POST("/:id/accept", h.Accept)
		lr.POST("/:id/reject", h.Reject)
	}
}

func (h *Handler) ListSecretaries(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.ListSecretaries(c.Request.Context(), p.ID))
}

func (h *Handler) LinkSecretary(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	var req model.LinkSecretaryRequest
	if !handler.Bind(c, &req) {
		return
	}

	result, err := h.svc.CreateOrLinkSecretary(c.Request.Context(), p.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	status := http.StatusOK
	if result.IsNew {
		status = http.StatusCreated
	}
	httputil.RespondWithSuccess(c, status, result)
}

func (h *Handler) Invite(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	var req model.LinkSecretaryRequest
	if !handler.Bind(c, &req) {
		return
	}

	result, err := h.svc.GenerateInvite(c.Request.Context(), p.ID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	status := http.StatusOK
	if result.Pending {
		status = http.StatusAccepted
	}
	httputil.RespondWithSuccess(c, status, result)
}

func (h *Handler) Unlink(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.RevokeLink(c.Request.Context(), p.ID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ResendPassword(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.ResendTemporaryPassword(c.Request.Context(), p.ID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, result)
}

func (h *Handler) ListAnesthesiologists(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.ListAnesthesiologists(c.Request.Context(), p.ID))
}

func (h *Handler) ListRequests(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}

	var status *model.LinkRequestStatus
	switch raw := model.LinkRequestStatus(c.Query("status")); raw {
	case "":
	case model.LinkRequestPending, model.LinkRequestAccepted, model.LinkRequestRejected:
		status = &raw
	default:
		httputil.RespondWithError(c, apperrors.Validation("status must be pending, accepted or rejected"))
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, h.svc.ListRequests(c.Request.Context(), p.ID, status))
}

func (h *Handler) RequestForNotification(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	req, err := h.svc.RequestForNotification(c.Request.Context(), p.ID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, req)
}

func (h *Handler) Accept(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.Accept(c.Request.Context(), p.ID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, result)
}

func (h *Handler) Reject(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	req, err := h.svc.Reject(c.Request.Context(), p.ID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, req)
}

// Stream relays the secretary's link request events as server-sent events
// until the client goes away or the subscription ends.
func (h *Handler) Stream(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	ctx := c.Request.Context()

	msgs, err := h.events.Subscribe(ctx, messaging.SecretaryLinkChannel(p.ID))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	log.Debug().Str("secretary_id", p.ID.String()).Msg("Link request stream opened")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-msgs:
			if !ok {
				return false
			}
			c.SSEvent("link_request", string(msg))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", "")
			return true
		}
	})
	log.Debug().Str("secretary_id", p.ID.String()).Msg("Link request stream closed")
}
