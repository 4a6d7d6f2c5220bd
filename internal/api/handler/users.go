package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Complaints.Users(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) ActivateUser(c *gin.Context)   { h.setUserStatus(c, true) }
func (h *Handler) DeactivateUser(c *gin.Context) { h.setUserStatus(c, false) }

func (h *Handler) setUserStatus(c *gin.Context, active bool) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Complaints.SetUserStatus(c.Request.Context(), actor(c), id, active); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
