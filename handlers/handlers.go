// Package handlers exposes the HTTP surface of the safe2gether API.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"safe2gether/googlemaps"
	"safe2gether/services"
	"safe2gether/supabase"
)

// pathID parses the :id path parameter. On failure it writes the 400
// response itself and reports false.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": name + " must be an integer"})
		return 0, false
	}
	return id, true
}

// respondError maps a service error onto the HTTP response: missing
// rows are 404, validation failures 422, conflicts 409, upstream store
// errors keep their status, maps transport failures are 502, anything
// else is a 500.
func respondError(c *gin.Context, err error) {
	var validation *services.ValidationError
	var conflict *services.ConflictError
	var status *supabase.StatusError
	var upstream *googlemaps.UpstreamError

	switch {
	case errors.Is(err, supabase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validation.Detail})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"detail": conflict.Detail})
	case errors.As(err, &status):
		c.JSON(status.StatusCode, gin.H{"detail": status.Body})
	case errors.As(err, &upstream):
		log.WithError(err).Warnf("Upstream failure on %s %s", c.Request.Method, c.FullPath())
		c.JSON(http.StatusBadGateway, gin.H{"detail": "upstream service unavailable"})
	default:
		log.WithError(err).Errorf("Unhandled error on %s %s", c.Request.Method, c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
