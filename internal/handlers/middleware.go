package handlers

import (
	"net/http"
	"strings"

	"thermostat_automation/internal/service"

	"github.com/gin-gonic/gin"
)

const invocationKey = "invocation"

func (h *Handler) invocationMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	inv, err := h.services.Authorize(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(invocationKey, inv)
	c.Next()
}

// adminMiddleware must run after invocationMiddleware.
func (h *Handler) adminMiddleware(c *gin.Context) {
	if err := h.services.RequireAdmin(c.Request.Context(), invocationFrom(c)); err != nil {
		h.respondError(c, "admin_check_failed", err)
		c.Abort()
		return
	}
	c.Next()
}

func invocationFrom(c *gin.Context) service.Invocation {
	v, _ := c.Get(invocationKey)
	inv, _ := v.(service.Invocation)
	return inv
}

// ownerScope resolves the owner a request acts on. Single owners act on themselves;
// sweep callers name the owner with ?owner_id= (required when required is true).
func ownerScope(c *gin.Context, required bool) (string, error) {
	requested := strings.TrimSpace(c.Query("owner_id"))
	switch inv := invocationFrom(c).(type) {
	case service.SingleOwner:
		if requested != "" && requested != inv.OwnerID {
			return "", service.ErrForbidden
		}
		return inv.OwnerID, nil
	case service.Sweep:
		if requested == "" && required {
			return "", service.ErrOwnerRequired
		}
		return requested, nil
	default:
		return "", service.ErrUnauthorized
	}
}
