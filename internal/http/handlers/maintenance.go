package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/http/middleware"
	"hostel-backend/internal/services"
)

// POST /api/maintenance/refresh-status
func (h *Handler) RefreshStatus(c *gin.Context) {
	svc := services.StatusRefresher{Hostlers: h.Hostlers, RequestID: middleware.GetRequestID(c)}
	n, err := svc.Refresh(c.Request.Context(), h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// POST /api/maintenance/reconcile?repair=true
func (h *Handler) Reconcile(c *gin.Context) {
	repair := false
	if raw := c.Query("repair"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_query", "repair must be true or false", nil)
			return
		}
		repair = v
	}
	svc := services.Reconciler{Rooms: h.Rooms, Hostlers: h.Hostlers, RequestID: middleware.GetRequestID(c)}
	rep, err := svc.Reconcile(c.Request.Context(), repair)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
