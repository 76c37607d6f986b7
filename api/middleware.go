package api

import (
	"strings"
	"time"

	"github.com/flyticket/flyticket/internal/domain"
	"github.com/flyticket/flyticket/internal/service/admin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const adminContextKey = "admin"

// RequestLogger logs one line per request, with any errors handlers attached.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry.WithError(c.Errors.Last().Err).Error("request failed")
			return
		}
		entry.Info("request handled")
	}
}

// AdminAuth requires a valid admin bearer token.
func AdminAuth(auth admin.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			respondError(c, domain.ErrUnauthorized)
			return
		}

		a, err := auth.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(adminContextKey, a)
		c.Next()
	}
}
