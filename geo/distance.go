// Package geo provides great-circle distance math for the risk scorer.
package geo

import (
	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for all distance math.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between
// two points given in decimal degrees. s2.LatLng.Distance computes the
// central angle with the Haversine formula; scaling by the Earth
// radius yields kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lon1)
	b := s2.LatLngFromDegrees(lat2, lon2)
	return a.Distance(b).Radians() * EarthRadiusKm
}
