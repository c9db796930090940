package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"safe2gether/googlemaps"
)

// PlacesHandler proxies the Google Maps endpoints the mobile client
// uses: reverse geocoding, district resolution and autocomplete.
type PlacesHandler struct {
	maps *googlemaps.Client
}

func NewPlacesHandler(maps *googlemaps.Client) *PlacesHandler {
	return &PlacesHandler{maps: maps}
}

func coordQuery(c *gin.Context) (lat, lon float64, ok bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "lat must be a number"})
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "lon must be a number"})
		return 0, 0, false
	}
	return lat, lon, true
}

// ReverseGeocode serves GET /places/reverse-geocode?lat=..&lon=.. and
// returns the raw upstream response.
func (h *PlacesHandler) ReverseGeocode(c *gin.Context) {
	lat, lon, ok := coordQuery(c)
	if !ok {
		return
	}
	raw, err := h.maps.ReverseGeocode(c.Request.Context(), lat, lon)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// District serves GET /places/distrito?lat=..&lon=..
func (h *PlacesHandler) District(c *gin.Context) {
	lat, lon, ok := coordQuery(c)
	if !ok {
		return
	}
	district, err := h.maps.DistrictFor(c.Request.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, googlemaps.ErrNoDistrict) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "no district found for coordinates"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distrito": district})
}

// Autocomplete serves GET /places/autocomplete?q=..&country=..
func (h *PlacesHandler) Autocomplete(c *gin.Context) {
	input := c.Query("q")
	if input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "q is required"})
		return
	}
	raw, err := h.maps.Autocomplete(c.Request.Context(), input, c.Query("country"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
