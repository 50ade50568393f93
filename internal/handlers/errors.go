package handlers

import (
	"errors"
	"net/http"
	"strconv"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sjperalta/feria-api/internal/services"
)

// errorCode names each settlement error for API clients
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrOverpayment):
		return http.StatusUnprocessableEntity, "overpayment"
	case errors.Is(err, services.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "invalid_amount"
	case errors.Is(err, services.ErrInvalidSchedule):
		return http.StatusUnprocessableEntity, "invalid_schedule"
	case errors.Is(err, services.ErrInvalidPlan):
		return http.StatusUnprocessableEntity, "invalid_plan"
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "persistence"
	}
}

// respondError writes the JSON error for err. Server-side failures are
// reported to Sentry and their cause is kept out of the response body.
func respondError(c *gin.Context, err error) {
	status, code := errorCode(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		_ = c.Error(err)
		if status == http.StatusInternalServerError {
			message = services.ErrPersistence.Error()
		}
	}

	c.JSON(status, gin.H{"error": message, "code": code})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": "bad_request"})
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "ID inválido")
		return 0, false
	}
	return uint(id), true
}
