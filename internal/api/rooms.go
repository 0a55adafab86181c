package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/kosboard/internal/middleware"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/service"
	"go.uber.org/zap"
)

type RoomHandler struct {
	svc    *service.Service
	logger *zap.Logger
}

func NewRoomHandler(svc *service.Service, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{svc: svc, logger: logger}
}

// Price accepts a JSON number or a numeric string.
type createRoomRequest struct {
	RoomNumber string            `json:"room_number"`
	Price      json.Number       `json:"price"`
	Status     models.RoomStatus `json:"status"`
	Floor      string            `json:"floor"`
	Facilities string            `json:"facilities"`
}

type updateRoomRequest struct {
	RoomNumber *string            `json:"room_number"`
	Price      *json.Number       `json:"price"`
	Status     *models.RoomStatus `json:"status"`
	Floor      *string            `json:"floor"`
	Facilities *string            `json:"facilities"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.svc.CreateRoom(c.Request.Context(), middleware.GetActor(c), service.RoomInput{
		RoomNumber: req.RoomNumber,
		Price:      req.Price.String(),
		Status:     req.Status,
		Floor:      req.Floor,
		Facilities: req.Facilities,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// List handles GET /v1/rooms?status=available
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context(), models.RoomStatus(c.Query("status")))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetByID handles GET /v1/rooms/:id
func (h *RoomHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "room")
	if !ok {
		return
	}
	room, err := h.svc.GetRoom(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Update handles PUT /v1/rooms/:id. Only the fields present in the body
// change.
func (h *RoomHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "room")
	if !ok {
		return
	}
	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.RoomUpdate{
		RoomNumber: req.RoomNumber,
		Status:     req.Status,
		Floor:      req.Floor,
		Facilities: req.Facilities,
	}
	if req.Price != nil {
		price := req.Price.String()
		in.Price = &price
	}

	room, err := h.svc.UpdateRoom(c.Request.Context(), middleware.GetActor(c), id, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /v1/rooms/:id
func (h *RoomHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "room")
	if !ok {
		return
	}
	if err := h.svc.DeleteRoom(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
