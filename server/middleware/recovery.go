package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/logger"
)

// Recovery returns a Gin middleware that turns a handler panic into an
// UNKNOWN_ERROR response and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				te := errors.Unknown(fmt.Errorf("panic: %v", r))
				log.Error("Panic recovered", map[string]any{
					logger.FieldErrorID: te.ID,
					logger.FieldError:   fmt.Sprintf("%v", r),
					"stack":             string(debug.Stack()),
					"path":              c.Request.URL.Path,
					"method":            c.Request.Method,
				})
				abort(c, te)
			}
		}()
		c.Next()
	}
}

// abort stops the chain with the client-safe rendering of te.
func abort(c *gin.Context, te *errors.TypedError) {
	c.AbortWithStatusJSON(te.HTTPStatus(), te.ToResponse())
}
