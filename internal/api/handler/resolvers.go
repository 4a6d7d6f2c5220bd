package handler

import (
	"net/http"

	"actionflow/backend/internal/complaint"

	"github.com/gin-gonic/gin"
)

type resolverRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Category string `json:"category"`
}

// CreateResolver handles POST /resolvers.
func (h *Handler) CreateResolver(c *gin.Context) {
	var req resolverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid resolver body")
		return
	}
	r, err := h.Complaints.CreateResolver(c.Request.Context(), actor(c), complaint.NewResolver{
		Name:     req.Name,
		Email:    req.Email,
		Category: req.Category,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// UpdateResolver handles PUT /resolvers/:id.
func (h *Handler) UpdateResolver(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req resolverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid resolver body")
		return
	}
	r, err := h.Complaints.UpdateResolver(c.Request.Context(), actor(c), id, complaint.NewResolver{
		Name:     req.Name,
		Email:    req.Email,
		Category: req.Category,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// ListResolvers handles GET /resolvers. With ?active=true only active
// resolvers are listed, optionally narrowed by ?category=.
func (h *Handler) ListResolvers(c *gin.Context) {
	var (
		list interface{}
		err  error
	)
	if c.Query("active") == "true" || c.Query("category") != "" {
		list, err = h.Complaints.ActiveResolvers(c.Request.Context(), actor(c), c.Query("category"))
	} else {
		list, err = h.Complaints.Resolvers(c.Request.Context(), actor(c))
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolvers": list})
}

// ActivateResolver and DeactivateResolver handle
// POST /resolvers/:id/activate and /resolvers/:id/deactivate.
func (h *Handler) ActivateResolver(c *gin.Context)   { h.setResolverStatus(c, true) }
func (h *Handler) DeactivateResolver(c *gin.Context) { h.setResolverStatus(c, false) }

func (h *Handler) setResolverStatus(c *gin.Context, active bool) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Complaints.SetResolverStatus(c.Request.Context(), actor(c), id, active); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
