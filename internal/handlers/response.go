package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harborwell/insurance-backend/internal/apierr"
	"github.com/harborwell/insurance-backend/internal/logger"
)

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func RespondData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func RespondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

// RespondError maps typed API errors onto the envelope. Anything untyped is
// a 500 with a generic message; internal detail never reaches the client.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, Envelope{Success: false, Message: apiErr.Error()})
		return
	}
	if log != nil {
		log.Error("Unexpected error", "error", err, "path", c.FullPath())
	}
	c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: "internal server error"})
}
