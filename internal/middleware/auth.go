package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/handler"
	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/pkg/auth"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/httputil"
)

const ContextUserID = "user_id"

var (
	errMissingToken  = errors.New("missing authorization header")
	errInvalidFormat = errors.New("invalid authorization format")
)

type PrincipalResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*model.Principal, error)
}

type EntitlementChecker interface {
	Check(ctx context.Context, id uuid.UUID) *model.Access
}

type AuthMiddleware struct {
	jwt         auth.JWTService
	identity    PrincipalResolver
	entitlement EntitlementChecker
}

func NewAuthMiddleware(jwt auth.JWTService, identity PrincipalResolver, entitlement EntitlementChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:         jwt,
		identity:    identity,
		entitlement: entitlement,
	}
}

// bearer reads the token from the Authorization header. Browsers cannot set
// headers on an EventSource, so the access_token query parameter is accepted
// when the header is absent.
func bearer(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("access_token"); token != "" {
			return token, nil
		}
		return "", errMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errInvalidFormat
	}
	return parts[1], nil
}

// Authenticate validates the access token and stores the resolved principal.
// Accounts without an anesthesiologist or secretary profile are refused.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearer(c)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			c.Abort()
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			c.Abort()
			return
		}

		p, err := m.identity.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Error().Err(err).Str("user_id", claims.UserID.String()).Msg("Failed to resolve principal")
			httputil.RespondWithError(c, apperrors.Internal(err))
			c.Abort()
			return
		}
		if p.Kind == model.PrincipalNone {
			httputil.RespondWithError(c, apperrors.Forbidden("account has no profile"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		handler.SetPrincipal(c, p)
		c.Next()
	}
}

// RequireKind admits only principals of the given kinds.
func (m *AuthMiddleware) RequireKind(kinds ...model.PrincipalKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := handler.Principal(c)
		if p == nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(handler.ErrNoPrincipal))
			c.Abort()
			return
		}
		for _, kind := range kinds {
			if p.Kind == kind {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden("not available for "+string(p.Kind)+" accounts"))
		c.Abort()
	}
}

// RequireEntitlement blocks anesthesiologists whose trial and subscription
// have both lapsed. The access decision is returned so the client can show it.
func (m *AuthMiddleware) RequireEntitlement() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := handler.Principal(c)
		if p == nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(handler.ErrNoPrincipal))
			c.Abort()
			return
		}
		if p.IsSecretary() {
			c.Next()
			return
		}

		access := m.entitlement.Check(c.Request.Context(), p.ID)
		if !access.HasAccess {
			c.AbortWithStatusJSON(httputil.StatusCode(apperrors.Forbidden("")), httputil.Response{
				Status:  "error",
				Message: "subscription required",
				Data:    access,
			})
			return
		}
		c.Next()
	}
}
