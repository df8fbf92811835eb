package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"thermostat_automation/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// @Summary      Plan schedules
// @Description  Cron secret runs a sweep over every owner; a user token plans only that owner.
// @Tags         schedules
// @Produce      json
// @Success      200  {object}  thermostat_automation.PlanResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/schedules/plan [post]
// @Security     BearerAuth
func (h *Handler) planSchedules(c *gin.Context) {
	inv := invocationFrom(c)
	report, err := h.services.Run(c.Request.Context(), inv)
	if err != nil {
		h.respondError(c, "plan_failed", err, "is_cron", service.IsCron(inv))
		return
	}
	c.JSON(http.StatusOK, report.Response())
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List schedule events
// @Description  Filter by start time (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is end-of-day inclusive.
// @Tags         schedules
// @Produce      json
// @Param        from      query   string  false  "Start of range"  example(2026-01-01)
// @Param        to        query   string  false  "End of range. Date-only treated as end of day."  example(2026-01-31)
// @Param        type      query   string  false  "Event type"  Enums(heat,stop)
// @Param        owner_id  query   string  false  "Owner filter (cron secret only)"
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/schedules [get]
// @Security     BearerAuth
func (h *Handler) listSchedules(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		from time.Time
		to   time.Time
		err  error
	)
	owner, err := ownerScope(c, false)
	if err != nil {
		h.respondError(c, "schedules_scope_failed", err)
		return
	}
	// Parse 'from' (optional)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	// Parse 'to' (optional). If only a date is provided, make it end-of-day inclusive.
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}

	events, err := h.services.ScheduleLog.List(ctx, owner, service.ScheduleQuery{
		From: from,
		To:   to,
		Type: c.Query("type"),
	})
	if err != nil {
		h.respondError(c, "schedules_list_failed", err, "owner_id", owner, "from", from, "to", to)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2026-01-10T16:00:00Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}
