package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/kosboard/internal/middleware"
	"github.com/lalith-99/kosboard/internal/service"
	"go.uber.org/zap"
)

var kindStatus = map[service.Kind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindForbidden:    http.StatusForbidden,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindInternal:     http.StatusInternalServerError,
}

// writeError renders err as {"error": msg} with the status for its kind.
// Validation errors also carry "fields". Internal causes are logged with
// the request's logger and never sent to the client.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		se = &service.Error{Kind: service.KindInternal, Message: "internal error", Err: err}
	}

	status, ok := kindStatus[se.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		middleware.Logger(c, logger).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(se),
		)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	body := gin.H{"error": se.Message}
	if len(se.Fields) > 0 {
		body["fields"] = se.Fields
	}
	c.JSON(status, body)
}

// paramID parses the :id path parameter, answering 400 itself when it is
// not a UUID.
func paramID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return uuid.Nil, false
	}
	return id, true
}
