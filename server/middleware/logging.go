package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/recoverykit/logger"
)

// RequestLogger logs every request with method, path, status and duration.
// Health-check paths are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             status,
			"client":             c.ClientIP(),
			logger.FieldDuration: time.Since(start).Milliseconds(),
		}
		if id, ok := c.Get(ContextRequestID); ok {
			fields[ContextRequestID] = id
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}

		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Debug("Request completed", fields)
		}
	}
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/health", "/alive", "/api/health", "/api/alive":
		return true
	}
	return false
}
