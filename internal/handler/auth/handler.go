package auth

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
	Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error)
	ConfirmEmail(ctx context.Context, token string) (*model.TokenResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	ForgotPassword(ctx context.Context, email string)
	ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, id uuid.UUID, req *model.ChangePasswordRequest) error
}

type ProfileService interface {
	UpdateAnesthesiologist(ctx context.Context, actor *model.Principal, req *model.UpdateAnesthesiologistRequest) (*model.Anesthesiologist, error)
	UpdateSecretary(ctx context.Context, actor *model.Principal, req *model.UpdateSecretaryRequest) (*model.Secretary, error)
}

type Handler struct {
	svc      Service
	profiles ProfileService
}

func NewHandler(svc Service, profiles ProfileService) *Handler {
	return &Handler{svc: svc, profiles: profiles}
}

// RegisterRoutes mounts the anonymous endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/confirm-email", h.ConfirmEmail)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}
}

// RegisterAccountRoutes mounts the endpoints that need a session.
func (h *Handler) RegisterAccountRoutes(r *gin.RouterGroup) {
	me := r.Group("/me")
	{
		me.GET("", h.Me)
		me.PUT("", h.UpdateProfile)
		me.POST("/password", h.ChangePassword)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.Bind(c, &req) {
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, resp)
}

func (h *Handler) ConfirmEmail(c *gin.Context) {
	var req model.ConfirmEmailRequest
	if !handler.Bind(c, &req) {
		return
	}

	tokens, err := h.svc.ConfirmEmail(c.Request.Context(), req.Token)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, tokens)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.Bind(c, &req) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, tokens)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshTokenRequest
	if !handler.Bind(c, &req) {
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, tokens)
}

// ForgotPassword answers the same way whether or not the address exists.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if !handler.Bind(c, &req) {
		return
	}

	h.svc.ForgotPassword(c.Request.Context(), req.Email)
	c.JSON(http.StatusOK, httputil.Response{
		Status:  "success",
		Message: "if the email is registered, a reset link was sent",
	})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !handler.Bind(c, &req) {
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}

	if p.IsSecretary() {
		var req model.UpdateSecretaryRequest
		if !handler.Bind(c, &req) {
			return
		}
		sec, err := h.profiles.UpdateSecretary(c.Request.Context(), p, &req)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, http.StatusOK, sec)
		return
	}

	var req model.UpdateAnesthesiologistRequest
	if !handler.Bind(c, &req) {
		return
	}
	a, err := h.profiles.UpdateAnesthesiologist(c.Request.Context(), p, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	p := handler.MustPrincipal(c)
	if p == nil {
		return
	}
	var req model.ChangePasswordRequest
	if !handler.Bind(c, &req) {
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), p.ID, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
