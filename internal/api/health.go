package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/kosboard/internal/middleware"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	ping   Pinger
	store  string
	logger *zap.Logger
}

func NewHealthHandler(ping Pinger, store string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, store: store, logger: logger}
}

// Get handles GET /v1/health
func (h *HealthHandler) Get(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			middleware.Logger(c, h.logger).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "store": h.store})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "store": h.store})
}
