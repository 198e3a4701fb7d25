package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	token, user, err := h.authSvc(c).Login(c.Request.Context(), req.Phone, req.Password, h.now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
