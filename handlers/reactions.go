package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"safe2gether/models"
	"safe2gether/services"
)

// ReactionsHandler serves the /Reacciones endpoints.
type ReactionsHandler struct {
	reactions *services.ReactionsService
}

func NewReactionsHandler(reactions *services.ReactionsService) *ReactionsHandler {
	return &ReactionsHandler{reactions: reactions}
}

func (h *ReactionsHandler) List(c *gin.Context) {
	reactions, err := h.reactions.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reactions)
}

func (h *ReactionsHandler) ListByReport(c *gin.Context) {
	reportID, ok := pathID(c, "report_id")
	if !ok {
		return
	}
	reactions, err := h.reactions.ListByReport(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reactions)
}

func (h *ReactionsHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	reactions, err := h.reactions.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reactions)
}

func (h *ReactionsHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reaction, err := h.reactions.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reaction)
}

func (h *ReactionsHandler) Create(c *gin.Context) {
	req := &models.CreateReactionRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	reaction, err := h.reactions.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reaction)
}

func (h *ReactionsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req := &models.UpdateReactionRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	reaction, err := h.reactions.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reaction)
}

func (h *ReactionsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.reactions.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
