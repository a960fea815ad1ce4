package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// RequestIDHeader - заголовок, в котором передается идентификатор запроса.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey - ключ в gin.Context.
	RequestIDKey = "request_id"
)

// GinZapLogger возвращает middleware, которое логирует запросы через zap.
// Для /health и /metrics лог не пишется, но X-Request-ID выставляется всегда.
func GinZapLogger(log *zap.Logger) gin.HandlerFunc {
	skip := map[string]struct{}{
		"/health":  {},
		"/metrics": {},
	}

	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			return
		}
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", requestID),
		}

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors.ByType(gin.ErrorTypeAny) {
				log.Error("Request error", append(fields, zap.Error(ginErr.Err))...)
			}
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("Server error", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

// RequestID достает идентификатор запроса, выставленный GinZapLogger.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
