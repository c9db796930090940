package models

// Notification frequencies for an area of interest.
const (
	FrequencyDaily  = "diario"
	FrequencyWeekly = "semanal"
)

// DefaultRadiusMeters applies when an area is created without a
// positive radius.
const DefaultRadiusMeters = 1000

// AreaOfInterest is a user-defined geographic circle monitored for
// risk alerts.
type AreaOfInterest struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	Name           string  `json:"nombre"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	RadiusMeters   int     `json:"radio_metros"`
	Frequency      string  `json:"frecuencia_notificacion"`
	Active         bool    `json:"activo"`
	LastNotifiedAt string  `json:"ultima_notificacion"`
	CreatedAt      string  `json:"created_at"`
}

// RadiusKm returns the area radius in kilometers, falling back to the
// default when the stored value is not positive.
func (a *AreaOfInterest) RadiusKm() float64 {
	radius := a.RadiusMeters
	if radius <= 0 {
		radius = DefaultRadiusMeters
	}
	return float64(radius) / 1000.0
}

// CreateAreaRequest is the payload for POST /AreasInteres.
type CreateAreaRequest struct {
	UserID       int64    `json:"user_id" binding:"required"`
	Name         string   `json:"nombre" binding:"required"`
	Lat          *float64 `json:"lat" binding:"required"`
	Lon          *float64 `json:"lon" binding:"required"`
	RadiusMeters int      `json:"radio_metros"`
	Frequency    string   `json:"frecuencia_notificacion"`
	Active       *bool    `json:"activo"`
}

// UpdateAreaRequest is the payload for PATCH /AreasInteres/:id.
type UpdateAreaRequest struct {
	Name           *string  `json:"nombre"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	RadiusMeters   *int     `json:"radio_metros"`
	Frequency      *string  `json:"frecuencia_notificacion"`
	Active         *bool    `json:"activo"`
	LastNotifiedAt *string  `json:"ultima_notificacion"`
}

// Danger levels reported by the risk scorer.
const (
	DangerLow    = "Bajo"
	DangerMedium = "Medio"
	DangerHigh   = "Alto"
)

// RiskAssessment is the result of scoring an area of interest over a
// recent window of reports.
type RiskAssessment struct {
	AreaID        int64          `json:"area_id"`
	AreaName      string         `json:"area_nombre"`
	DangerLevel   string         `json:"nivel_peligro"`
	TotalReports  int            `json:"total_reportes"`
	CrimeTypes    map[string]int `json:"tipos_delitos"`
	WindowDays    int            `json:"dias_analisis"`
	RecentReports []Report       `json:"reportes_recientes"`
}
