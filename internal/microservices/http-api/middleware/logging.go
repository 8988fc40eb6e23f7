package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorLogger logs the errors handlers attached with c.Error.
func ErrorLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			logger.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", c.Writer.Status(),
				"error", e.Err,
			)
		}
	}
}
