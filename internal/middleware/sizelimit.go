package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anesteasy/api/pkg/httputil"
)

const DefaultMaxBodySize int64 = 1 << 20

// BodyLimit rejects declared oversized bodies up front and caps the reader for
// the rest.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.Response{
				Status:  "error",
				Message: "request body too large",
			})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
