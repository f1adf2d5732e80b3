package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/httputil"
)

// ErrorHandler answers for handlers that recorded an error with c.Error but
// wrote nothing, and logs the cause of every internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last().Err
		if apperrors.CodeOf(last) == apperrors.ErrInternal {
			log.Error().
				Err(last).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("Request failed")
		}

		if !c.Writer.Written() {
			httputil.RespondWithError(c, last)
		}
	}
}
