package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"khaata/internal/core/apperror"
	"khaata/pkg/logger"
)

// Logger puts log into the request context for the services below and
// writes one line per request. Client errors log at warn, server errors at
// error, everything else at info.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			if appErr, ok := apperror.AsAppError(c.Errors.Last().Err); ok {
				fields = append(fields, "code", appErr.Code)
			}
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			l.Errorw("http request", fields...)
		case status >= http.StatusBadRequest:
			l.Warnw("http request", fields...)
		default:
			l.Infow("http request", fields...)
		}
	}
}
