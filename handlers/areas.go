package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"safe2gether/models"
	"safe2gether/services"
)

// AreasHandler serves the /AreasInteres endpoints, including risk
// scoring and the alert sweep.
type AreasHandler struct {
	areas *services.AreasService
}

func NewAreasHandler(areas *services.AreasService) *AreasHandler {
	return &AreasHandler{areas: areas}
}

func (h *AreasHandler) List(c *gin.Context) {
	areas, err := h.areas.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

func (h *AreasHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	areas, err := h.areas.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

func (h *AreasHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	area, err := h.areas.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}

func (h *AreasHandler) Create(c *gin.Context) {
	req := &models.CreateAreaRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	area, err := h.areas.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

func (h *AreasHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	req := &models.UpdateAreaRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	area, err := h.areas.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}

func (h *AreasHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.areas.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Risk serves GET /AreasInteres/:id/riesgo?dias=N.
func (h *AreasHandler) Risk(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	windowDays := 0
	if raw := c.Query("dias"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "dias must be an integer"})
			return
		}
		windowDays = parsed
	}
	risk, err := h.areas.AssessRisk(c.Request.Context(), id, windowDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}

// Notify serves POST /AreasInteres/notificar, sweeping every active
// area whose alert is due.
func (h *AreasHandler) Notify(c *gin.Context) {
	summary, err := h.areas.SendRiskAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
