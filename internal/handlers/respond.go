package handlers

import (
	"errors"
	"net/http"

	"thermostat_automation/internal/netatmo"
	"thermostat_automation/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInternal        = "internal error"
	errUpstream        = "thermostat vendor unavailable"
	errInvalidBodyPref = "invalid body: "
)

var badRequestErrors = []error{
	service.ErrOwnerRequired,
	service.ErrInvalidTimeRange,
	service.ErrInvalidEventType,
	service.ErrRoomUnpaired,
	netatmo.ErrMissingHomeID,
	netatmo.ErrMissingRoomID,
	netatmo.ErrInvalidMode,
	netatmo.ErrTempRequired,
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondError maps a service error to its HTTP status.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code, msg := statusFor(err)
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}

func statusFor(err error) (int, string) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, err.Error()
		}
	}

	var upstream *netatmo.UpstreamError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, service.ErrUnauthorized.Error()
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, service.ErrForbidden.Error()
	case errors.Is(err, service.ErrMappingNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrTokenMissing):
		return http.StatusConflict, err.Error()
	case errors.As(err, &upstream), errors.Is(err, service.ErrTokenRefreshFailed), errors.Is(err, netatmo.ErrMalformed):
		return http.StatusBadGateway, errUpstream
	default:
		return http.StatusInternalServerError, errInternal
	}
}
