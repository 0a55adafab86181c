package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/kosboard/internal/events"
	"github.com/lalith-99/kosboard/internal/middleware"
	"go.uber.org/zap"
)

type EventsHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewEventsHandler(hub *events.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard may be served from another origin; the token
			// is what authenticates the socket.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Stream handles GET /v1/events. It upgrades to a websocket and holds the
// connection until the client leaves.
func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		middleware.Logger(c, h.logger).Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	h.hub.Serve(conn)
}
