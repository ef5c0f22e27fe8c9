package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

// Recovery converts panics into a 500 with the standard error body.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec interface{}) {
		logger.Error("panic recovered",
			logging.String("panic", fmt.Sprint(rec)),
			logging.String("path", c.Request.URL.Path),
			logging.String("request_id", GetRequestID(c)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"code":       errors.ErrCodeInternal,
			"message":    errors.DefaultMessageForCode(errors.ErrCodeInternal),
			"request_id": GetRequestID(c),
		})
	})
}

// BodyLimit caps request bodies at max bytes; larger bodies fail to decode.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
