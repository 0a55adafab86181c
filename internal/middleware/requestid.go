package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader  = "X-Request-ID"
	ContextKeyLogger = "logger"
)

// RequestID reuses the caller's X-Request-ID or generates one, echoes it
// on the response and stores a logger tagged with it on the context.
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDHeader, requestID)
		c.Set(ContextKeyLogger, logger.With(zap.String("request_id", requestID)))

		c.Next()
	}
}

// Logger returns the request-scoped logger, or fallback when RequestID
// did not run.
func Logger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if val, ok := c.Get(ContextKeyLogger); ok {
		if l, ok := val.(*zap.Logger); ok {
			return l
		}
	}
	return fallback
}

// AccessLog writes one line per request with the request-scoped logger.
func AccessLog(fallback *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		Logger(c, fallback).Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
