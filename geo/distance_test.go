package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(-12.0464, -77.0428, -12.0464, -77.0428))
}

func TestDistanceKm_Symmetric(t *testing.T) {
	d1 := DistanceKm(-12.0464, -77.0428, -12.1, -77.0)
	d2 := DistanceKm(-12.1, -77.0, -12.0464, -77.0428)
	assert.InDelta(t, d1, d2, 1e-12)
}

func TestDistanceKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{
			name: "equator half-hundredth degree of longitude",
			lat1: 0, lon1: 0, lat2: 0, lon2: 0.005,
			wantKm: 0.556, tolerance: 0.01,
		},
		{
			name: "equator two-hundredths degree of longitude",
			lat1: 0, lon1: 0, lat2: 0, lon2: 0.02,
			wantKm: 2.224, tolerance: 0.01,
		},
		{
			name: "one degree of latitude",
			lat1: 0, lon1: 0, lat2: 1, lon2: 0,
			wantKm: 111.19, tolerance: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}
