package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/kosboard/internal/middleware"
	"github.com/lalith-99/kosboard/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	svc    *service.Service
	logger *zap.Logger
}

func NewDashboardHandler(svc *service.Service, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// Get handles GET /v1/dashboard
func (h *DashboardHandler) Get(c *gin.Context) {
	summary, err := h.svc.Dashboard(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
