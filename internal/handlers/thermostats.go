package handlers

import (
	"net/http"
	"strings"

	"thermostat_automation/internal/service"

	"github.com/gin-gonic/gin"
)

// SetpointRequest is the body of POST /api/v1/thermostats/setpoint.
type SetpointRequest struct {
	// Room mapping to override
	MappingID int64 `json:"mapping_id" binding:"required" example:"12"`
	// Allowed: manual, home, max
	Mode string `json:"mode" binding:"required" example:"manual"`
	// Target temperature in Celsius (required when mode=manual)
	TempC *float64 `json:"temp,omitempty" example:"21.5"`
	// Unix time at which the override ends
	EndTime *int64 `json:"endtime,omitempty" example:"1767268800"`
}

// @Summary      Live thermostat status
// @Description  One item per room mapping; rooms of a failing home carry an error instead of readings.
// @Tags         thermostats
// @Produce      json
// @Param        owner_id  query   string  false  "Restrict to one owner"
// @Success      200  {array}   thermostat_automation.StatusItem
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/thermostats/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	owner := strings.TrimSpace(c.Query("owner_id"))
	items, err := h.services.Aggregate(c.Request.Context(), owner)
	if err != nil {
		h.respondError(c, "status_aggregate_failed", err, "owner_id", owner)
		return
	}
	c.JSON(http.StatusOK, items)
}

// @Summary      Vendor homes
// @Tags         thermostats
// @Produce      json
// @Param        home_id   query   string  false  "Vendor home id"
// @Param        owner_id  query   string  false  "Owner (required with the cron secret)"
// @Success      200  {object}  netatmo.HomesDataResponse
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/thermostats/homes [get]
// @Security     BearerAuth
func (h *Handler) getHomes(c *gin.Context) {
	owner, err := ownerScope(c, true)
	if err != nil {
		h.respondError(c, "homes_scope_failed", err)
		return
	}
	homes, err := h.services.Homes(c.Request.Context(), owner, c.Query("home_id"))
	if err != nil {
		h.respondError(c, "homes_failed", err, "owner_id", owner)
		return
	}
	c.JSON(http.StatusOK, homes)
}

// @Summary      Set room setpoint
// @Tags         thermostats
// @Accept       json
// @Produce      json
// @Param        owner_id  query   string           false  "Owner (required with the cron secret)"
// @Param        body      body    SetpointRequest  true   "Setpoint"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/thermostats/setpoint [post]
// @Security     BearerAuth
func (h *Handler) setSetpoint(c *gin.Context) {
	owner, err := ownerScope(c, true)
	if err != nil {
		h.respondError(c, "setpoint_scope_failed", err)
		return
	}

	var req SetpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	err = h.services.SetSetpoint(c.Request.Context(), owner, service.SetpointParams{
		MappingID: req.MappingID,
		Mode:      strings.ToLower(strings.TrimSpace(req.Mode)),
		TempC:     req.TempC,
		EndTime:   req.EndTime,
	})
	if err != nil {
		h.respondError(c, "setpoint_failed", err, "owner_id", owner, "mapping_id", req.MappingID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Legacy weather station data
// @Tags         thermostats
// @Produce      json
// @Param        device_id  query   string  false  "Station MAC address"
// @Param        owner_id   query   string  false  "Owner (required with the cron secret)"
// @Success      200  {object}  netatmo.StationsDataResponse
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/thermostats/weather [get]
// @Security     BearerAuth
func (h *Handler) getWeather(c *gin.Context) {
	owner, err := ownerScope(c, true)
	if err != nil {
		h.respondError(c, "weather_scope_failed", err)
		return
	}
	data, err := h.services.Weather(c.Request.Context(), owner, c.Query("device_id"))
	if err != nil {
		h.respondError(c, "weather_failed", err, "owner_id", owner)
		return
	}
	c.JSON(http.StatusOK, data)
}
