package mockbackend

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/llmaid/errors"
	"github.com/kbukum/llmaid/logger"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// recovery recovers from panics and answers with a server error envelope.
func recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered", map[string]interface{}{
					"error":  fmt.Sprintf("%v", err),
					"stack":  string(debug.Stack()),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorEnvelope("internal server error", "server_error", nil))
			}
		}()
		c.Next()
	}
}

// requestID echoes the caller's X-Request-ID or assigns one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// requestLogger logs every request except health checks.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":               c.Request.Method,
			"path":                 c.Request.URL.Path,
			logger.FieldStatusCode: status,
			logger.FieldDuration:   time.Since(start).Milliseconds(),
			logger.FieldRequestID:  c.GetString(ctxRequestID),
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

func errorEnvelope(message, typ string, code any) errors.ErrorResponse {
	return errors.ErrorResponse{Error: errors.ErrorBody{Message: message, Type: typ, Code: code}}
}
