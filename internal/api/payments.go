package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/middleware"
	"github.com/lalith-99/kosboard/internal/models"
	"github.com/lalith-99/kosboard/internal/service"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	svc    *service.Service
	logger *zap.Logger
}

func NewPaymentHandler(svc *service.Service, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

// paymentRequest is shared by create and update; tenancy_id is ignored on
// update. status is optional and only a hint, the server derives it.
type paymentRequest struct {
	TenancyID uuid.UUID            `json:"tenancy_id"`
	Amount    json.Number          `json:"amount"`
	DueDate   string               `json:"due_date"`
	Status    models.PaymentStatus `json:"status"`
}

func (r paymentRequest) input() service.PaymentInput {
	return service.PaymentInput{
		TenancyID: r.TenancyID,
		Amount:    r.Amount.String(),
		DueDate:   r.DueDate,
		Status:    r.Status,
	}
}

// Create handles POST /v1/payments
func (h *PaymentHandler) Create(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.RecordPayment(c.Request.Context(), middleware.GetActor(c), req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// List handles GET /v1/payments?status=&tenancy_id=&limit=
func (h *PaymentHandler) List(c *gin.Context) {
	filter := service.PaymentFilter{Status: models.PaymentStatus(c.Query("status"))}

	if v := c.Query("tenancy_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tenancy_id"})
			return
		}
		filter.TenancyID = &id
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	payments, err := h.svc.ListPayments(c.Request.Context(), middleware.GetActor(c), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// Update handles PUT /v1/payments/:id
func (h *PaymentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "payment")
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.UpdatePayment(c.Request.Context(), middleware.GetActor(c), id, req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "payment")
	if !ok {
		return
	}
	if err := h.svc.DeletePayment(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
