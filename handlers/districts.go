package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"safe2gether/services"
)

// DistrictsHandler serves the district ranking and statistics
// endpoints.
type DistrictsHandler struct {
	ranking *services.RankingService
}

func NewDistrictsHandler(ranking *services.RankingService) *DistrictsHandler {
	return &DistrictsHandler{ranking: ranking}
}

// Ranking serves GET /distritos/ranking?periodo=week&categorias=a,b.
func (h *DistrictsHandler) Ranking(c *gin.Context) {
	period := c.Query("periodo")
	var categories []string
	if raw := c.Query("categorias"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				categories = append(categories, part)
			}
		}
	}
	ranking, err := h.ranking.Ranking(c.Request.Context(), period, categories)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ranking)
}

// Statistics serves GET /distritos/estadisticas.
func (h *DistrictsHandler) Statistics(c *gin.Context) {
	stats, err := h.ranking.Statistics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
