package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/middleware"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/service"
	"go.uber.org/zap"
)

// TenantHandler serves /v1/tenants. A "tenant" here is a tenancy: the
// link between a user and the room they rent.
type TenantHandler struct {
	svc    *service.Service
	logger *zap.Logger
}

func NewTenantHandler(svc *service.Service, logger *zap.Logger) *TenantHandler {
	return &TenantHandler{svc: svc, logger: logger}
}

// checkInRequest takes either user_id or name/email/phone for a new or
// returning tenant.
type checkInRequest struct {
	UserID    *uuid.UUID `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	RoomID    uuid.UUID  `json:"room_id"`
	StartDate string     `json:"start_date"`
	DueDay    int        `json:"due_day"`
}

// CheckIn handles POST /v1/tenants
func (h *TenantHandler) CheckIn(c *gin.Context) {
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.CheckInInput{
		UserID:    req.UserID,
		RoomID:    req.RoomID,
		StartDate: req.StartDate,
		DueDay:    req.DueDay,
	}
	if req.Name != "" || req.Email != "" || req.Phone != "" {
		in.Profile = &service.TenantProfile{Name: req.Name, Email: req.Email, Phone: req.Phone}
	}

	view, err := h.svc.CheckIn(c.Request.Context(), middleware.GetActor(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// List handles GET /v1/tenants?status=active
func (h *TenantHandler) List(c *gin.Context) {
	views, err := h.svc.ListTenancies(c.Request.Context(), middleware.GetActor(c), models.TenancyStatus(c.Query("status")))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetByID handles GET /v1/tenants/:id
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "tenant")
	if !ok {
		return
	}
	view, err := h.svc.GetTenancy(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CheckOut handles DELETE /v1/tenants/:id
func (h *TenantHandler) CheckOut(c *gin.Context) {
	id, ok := paramID(c, "tenant")
	if !ok {
		return
	}
	tenancy, err := h.svc.CheckOut(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tenancy)
}
