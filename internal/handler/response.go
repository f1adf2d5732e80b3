package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anesteasy/api/internal/model"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/httputil"
)

const ContextPrincipal = "principal"

var ErrNoPrincipal = errors.New("no authenticated principal")

func SetPrincipal(c *gin.Context, p *model.Principal) {
	c.Set(ContextPrincipal, p)
}

// Principal returns the caller resolved by the auth middleware, or nil.
func Principal(c *gin.Context) *model.Principal {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return nil
	}
	p, _ := v.(*model.Principal)
	return p
}

// MustPrincipal writes a 401 and returns nil when the request is anonymous.
func MustPrincipal(c *gin.Context) *model.Principal {
	p := Principal(c)
	if p == nil {
		httputil.RespondWithError(c, apperrors.Unauthorized(ErrNoPrincipal))
		return nil
	}
	return p
}

// ParamUUID parses a path parameter, answering 400 when it is not a uuid.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

// Bind decodes the JSON body and runs the binding tags.
func Bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return false
	}
	return true
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(c *gin.Context, name string, loc *time.Location) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid "+name+", expected YYYY-MM-DD", err))
		return nil, false
	}
	return &t, true
}
