package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"actionflow/backend/internal/apperr"
	"actionflow/backend/internal/complaint"
	"actionflow/backend/internal/config"
	"actionflow/backend/internal/models"
	"actionflow/backend/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}

// storeUpload saves the multipart file in field under the actor's
// organization. It returns "" when the field is absent and not required.
func (h *Handler) storeUpload(c *gin.Context, a models.Actor, field, kind string, required bool) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		if required {
			return "", apperr.Validation("%s is required", field)
		}
		return "", nil
	}
	if err != nil {
		return "", apperr.Validation("invalid upload: %v", err)
	}

	org, err := h.Storage.GetOrganization(c.Request.Context(), a.OrgID)
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", apperr.Infrastructure("open upload", err)
	}
	defer f.Close()
	return h.Files.Save(c.Request.Context(), org.OrgUniqueID, kind, fh.Filename, fh.Size, f)
}

// discardUpload removes a stored file whose operation failed.
func (h *Handler) discardUpload(c *gin.Context, stored string) {
	if stored == "" {
		return
	}
	if err := h.Files.Remove(c.Request.Context(), stored); err != nil {
		h.Logger.Warn("orphaned upload not removed", zap.String("path", stored), zap.Error(err))
	}
}

// FileComplaint handles POST /complaints (multipart form).
func (h *Handler) FileComplaint(c *gin.Context) {
	a := actor(c)
	if !a.IsUser() {
		h.respondError(c, apperr.Unauthorized())
		return
	}

	image, err := h.storeUpload(c, a, "complaint_image", config.ComplaintUploadSubdir, false)
	if err != nil {
		h.respondError(c, err)
		return
	}

	comp, err := h.Complaints.FileComplaint(c.Request.Context(), a, complaint.FileRequest{
		Category:      c.PostForm("category"),
		OtherCategory: c.PostForm("other_category"),
		Description:   c.PostForm("description"),
		Priority:      c.PostForm("priority"),
		ImagePath:     image,
	})
	if err != nil {
		h.discardUpload(c, image)
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comp)
}

type assignRequest struct {
	ResolverID uint `json:"resolver_id" binding:"required"`
}

// AssignComplaint handles POST /complaints/:id/assign.
func (h *Handler) AssignComplaint(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "resolver_id is required")
		return
	}

	comp, err := h.Complaints.Assign(c.Request.Context(), actor(c), id, req.ResolverID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// ResolveComplaint handles POST /complaints/:id/resolve (multipart form with
// resolution_note and proof_image).
func (h *Handler) ResolveComplaint(c *gin.Context) {
	a := actor(c)
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !a.IsAdmin() {
		h.respondError(c, apperr.Unauthorized())
		return
	}

	proof, err := h.storeUpload(c, a, "proof_image", config.ProofUploadSubdir, true)
	if err != nil {
		h.respondError(c, err)
		return
	}

	comp, err := h.Complaints.Resolve(c.Request.Context(), a, id, c.PostForm("resolution_note"), proof)
	if err != nil {
		h.discardUpload(c, proof)
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

type feedbackRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// SubmitFeedback handles POST /complaints/:id/feedback.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid feedback body")
		return
	}

	comp, err := h.Complaints.SubmitFeedback(c.Request.Context(), actor(c), id, req.Rating, req.Feedback)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

// ListComplaints handles GET /complaints?status=&priority=&category=&limit=&offset=.
func (h *Handler) ListComplaints(c *gin.Context) {
	req := complaint.ListRequest{
		Statuses: c.QueryArray("status"),
		Priority: c.Query("priority"),
		Category: c.Query("category"),
	}
	var err error
	if req.Limit, err = queryInt(c, "limit"); err != nil {
		h.respondError(c, err)
		return
	}
	if req.Offset, err = queryInt(c, "offset"); err != nil {
		h.respondError(c, err)
		return
	}

	list, err := h.Complaints.List(c.Request.Context(), actor(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": list})
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Validation("invalid %s %q", key, v)
	}
	return n, nil
}

// GetComplaint handles GET /complaints/:id.
func (h *Handler) GetComplaint(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	comp, err := h.Complaints.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

func (h *Handler) Categories(c *gin.Context) {
	cats, err := h.Complaints.Categories(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.Complaints.Dashboard(c.Request.Context(), actor(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportComplaints handles GET /complaints/export and streams an XLSX
// workbook of the organization's complaints.
func (h *Handler) ExportComplaints(c *gin.Context) {
	a := actor(c)
	if !a.IsAdmin() {
		h.respondError(c, apperr.Unauthorized())
		return
	}
	var buf bytes.Buffer
	if _, err := report.ExportComplaints(c.Request.Context(), h.Storage, a.OrgID, &buf); err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="complaints-%d.xlsx"`, a.OrgID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
