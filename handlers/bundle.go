package handlers

import (
	"errors"
	"net/http"

	"mentorhub/services/payment"
	"mentorhub/services/scheduling"
	"mentorhub/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle holds the wired services the HTTP handlers delegate to.
type HandlerBundle struct {
	Scheduling scheduling.SchedulingService
	Reconciler *payment.Reconciler
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses and
// emits the standard error envelope.
func writeEngineError(c *gin.Context, err error) {
	var ee *scheduling.EngineError
	if !errors.As(err, &ee) {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch ee.Code {
	case scheduling.CodeValidation:
		status = http.StatusBadRequest
	case scheduling.CodeAuthorization:
		status = http.StatusForbidden
	case scheduling.CodeNotFound:
		status = http.StatusNotFound
	case scheduling.CodeConflict, scheduling.CodeInvalidState, scheduling.CodeConcurrentModification:
		status = http.StatusConflict
	case scheduling.CodeGateway:
		status = http.StatusBadGateway
	}

	c.JSON(status, utils.ErrorResponse{
		Kind:      ee.Code,
		Message:   ee.Message,
		Retryable: ee.Retryable,
	})
}
