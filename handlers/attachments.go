package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"safe2gether/models"
	"safe2gether/services"
)

// AttachmentsHandler serves the /Adjuntos endpoints.
type AttachmentsHandler struct {
	attachments *services.AttachmentsService
}

func NewAttachmentsHandler(attachments *services.AttachmentsService) *AttachmentsHandler {
	return &AttachmentsHandler{attachments: attachments}
}

func (h *AttachmentsHandler) List(c *gin.Context) {
	attachments, err := h.attachments.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachments)
}

func (h *AttachmentsHandler) ListByReport(c *gin.Context) {
	reportID, ok := pathID(c, "report_id")
	if !ok {
		return
	}
	attachments, err := h.attachments.ListByReport(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachments)
}

// ListByReports serves batch lookups: ?report_ids=1,2,3.
func (h *AttachmentsHandler) ListByReports(c *gin.Context) {
	raw := c.Query("report_ids")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "report_ids is required"})
		return
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "report_ids must be a comma-separated list of integers"})
			return
		}
		ids = append(ids, id)
	}
	attachments, err := h.attachments.ListByReports(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachments)
}

func (h *AttachmentsHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	attachment, err := h.attachments.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

func (h *AttachmentsHandler) Create(c *gin.Context) {
	req := &models.CreateAttachmentRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	attachment, err := h.attachments.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func (h *AttachmentsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req := &models.UpdateAttachmentRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	attachment, err := h.attachments.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

func (h *AttachmentsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.attachments.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
