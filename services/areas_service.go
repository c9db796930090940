package services

import (
	"context"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/jonboulle/clockwork"

	"safe2gether/geo"
	"safe2gether/models"
	"safe2gether/supabase"
)

// DefaultRiskWindowDays is the analysis window when the caller does not
// supply one.
const DefaultRiskWindowDays = 7

// maxRecentReports caps how many matched reports a risk assessment
// echoes back to the caller.
const maxRecentReports = 10

// NotifySummary is the body returned by the risk alert sweep.
type NotifySummary struct {
	AreasChecked int `json:"areas_evaluadas"`
	AlertsSent   int `json:"alertas_enviadas"`
	Failures     int `json:"errores"`
}

// AreasService manages areas of interest, scores their risk and drives
// the periodic alert sweep.
type AreasService struct {
	store    RecordStore
	notifier Notifier
	clock    clockwork.Clock
}

// NewAreasService creates an areas service. notifier may be nil,
// disabling the alert sweep emails.
func NewAreasService(store RecordStore, notifier Notifier, clock clockwork.Clock) *AreasService {
	return &AreasService{store: store, notifier: notifier, clock: clock}
}

// List returns every area of interest.
func (s *AreasService) List(ctx context.Context) ([]models.AreaOfInterest, error) {
	areas := []models.AreaOfInterest{}
	err := s.store.List(ctx, TableAreas, supabase.ListOptions{}, &areas)
	return areas, err
}

// ListByUser returns the areas belonging to a user.
func (s *AreasService) ListByUser(ctx context.Context, userID int64) ([]models.AreaOfInterest, error) {
	areas := []models.AreaOfInterest{}
	err := s.store.List(ctx, TableAreas, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("user_id", userID)},
	}, &areas)
	return areas, err
}

// Get returns a single area by id.
func (s *AreasService) Get(ctx context.Context, id int64) (*models.AreaOfInterest, error) {
	var area models.AreaOfInterest
	if err := s.store.Get(ctx, TableAreas, id, &area); err != nil {
		return nil, err
	}
	return &area, nil
}

// Create stores a new area. A non-positive radius falls back to the
// default, an unrecognized frequency falls back to weekly.
func (s *AreasService) Create(ctx context.Context, req *models.CreateAreaRequest) (*models.AreaOfInterest, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationErrorf("nombre must not be empty")
	}
	radius := req.RadiusMeters
	if radius <= 0 {
		radius = models.DefaultRadiusMeters
	}
	frequency := req.Frequency
	if frequency != models.FrequencyDaily && frequency != models.FrequencyWeekly {
		frequency = models.FrequencyWeekly
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	fields := map[string]any{
		"user_id":                 req.UserID,
		"nombre":                  name,
		"lat":                     *req.Lat,
		"lon":                     *req.Lon,
		"radio_metros":            radius,
		"frecuencia_notificacion": frequency,
		"activo":                  active,
	}
	var created models.AreaOfInterest
	if err := s.store.Create(ctx, TableAreas, fields, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update patches an area. Unlike Create, invalid values are rejected
// rather than silently defaulted, so a stored area never degrades.
func (s *AreasService) Update(ctx context.Context, id int64, req *models.UpdateAreaRequest) (*models.AreaOfInterest, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationErrorf("nombre must not be empty")
		}
		fields["nombre"] = name
	}
	if req.Lat != nil {
		fields["lat"] = *req.Lat
	}
	if req.Lon != nil {
		fields["lon"] = *req.Lon
	}
	if req.RadiusMeters != nil {
		if *req.RadiusMeters <= 0 {
			return nil, validationErrorf("radio_metros must be positive")
		}
		fields["radio_metros"] = *req.RadiusMeters
	}
	if req.Frequency != nil {
		if *req.Frequency != models.FrequencyDaily && *req.Frequency != models.FrequencyWeekly {
			return nil, validationErrorf("frecuencia_notificacion must be %q or %q", models.FrequencyDaily, models.FrequencyWeekly)
		}
		fields["frecuencia_notificacion"] = *req.Frequency
	}
	if req.Active != nil {
		fields["activo"] = *req.Active
	}
	if req.LastNotifiedAt != nil {
		fields["ultima_notificacion"] = *req.LastNotifiedAt
	}

	var updated models.AreaOfInterest
	if err := s.store.Update(ctx, TableAreas, id, fields, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes an area.
func (s *AreasService) Delete(ctx context.Context, id int64) (*DeleteResponse, error) {
	deleted, err := s.store.Delete(ctx, TableAreas, id)
	if err != nil {
		return nil, err
	}
	return &DeleteResponse{Deleted: deleted}, nil
}

// AssessRisk classifies the recent danger level around an area over the
// given window. A non-positive window falls back to the default.
func (s *AreasService) AssessRisk(ctx context.Context, areaID int64, windowDays int) (*models.RiskAssessment, error) {
	var area models.AreaOfInterest
	if err := s.store.Get(ctx, TableAreas, areaID, &area); err != nil {
		return nil, err
	}
	return s.assessArea(ctx, &area, windowDays)
}

func (s *AreasService) assessArea(ctx context.Context, area *models.AreaOfInterest, windowDays int) (*models.RiskAssessment, error) {
	if windowDays <= 0 {
		windowDays = DefaultRiskWindowDays
	}
	cutoff := s.clock.Now().UTC().AddDate(0, 0, -windowDays)

	reports := []models.Report{}
	if err := s.store.List(ctx, TableReports, supabase.ListOptions{
		Order: "created_at.desc",
		Limit: riskFetchLimit,
	}, &reports); err != nil {
		return nil, err
	}

	radiusKm := area.RadiusKm()
	assessment := &models.RiskAssessment{
		AreaID:        area.ID,
		AreaName:      area.Name,
		CrimeTypes:    map[string]int{},
		WindowDays:    windowDays,
		RecentReports: []models.Report{},
	}
	for i := range reports {
		r := &reports[i]
		if !withinWindow(r.CreatedAt, cutoff) {
			continue
		}
		if !r.HasCoordinates() {
			continue
		}
		if geo.DistanceKm(area.Lat, area.Lon, *r.Lat, *r.Lon) > radiusKm {
			continue
		}
		assessment.TotalReports++
		assessment.CrimeTypes[r.CategoryOrDefault()]++
		if len(assessment.RecentReports) < maxRecentReports {
			assessment.RecentReports = append(assessment.RecentReports, *r)
		}
	}
	assessment.DangerLevel = dangerLevel(assessment.TotalReports)
	return assessment, nil
}

// dangerLevel maps a report count to a danger label.
func dangerLevel(total int) string {
	switch {
	case total > 10:
		return models.DangerHigh
	case total >= 4:
		return models.DangerMedium
	default:
		return models.DangerLow
	}
}

// SendRiskAlerts scores every active area whose notification is due and
// mails the owner when there is anything to report. Individual failures
// are logged and counted, never fatal to the sweep.
func (s *AreasService) SendRiskAlerts(ctx context.Context) (*NotifySummary, error) {
	areas := []models.AreaOfInterest{}
	if err := s.store.List(ctx, TableAreas, supabase.ListOptions{
		Filters: []supabase.Filter{supabase.Eq("activo", true)},
	}, &areas); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	summary := &NotifySummary{}
	for i := range areas {
		area := &areas[i]
		if !s.notificationDue(area, now) {
			continue
		}
		summary.AreasChecked++

		risk, err := s.assessArea(ctx, area, DefaultRiskWindowDays)
		if err != nil {
			log.WithError(err).Warnf("Area %d: risk assessment failed", area.ID)
			summary.Failures++
			continue
		}
		if risk.TotalReports == 0 {
			continue
		}

		var owner models.User
		if err := s.store.Get(ctx, TableUsers, area.UserID, &owner); err != nil {
			log.WithError(err).Warnf("Area %d: owner %d lookup failed", area.ID, area.UserID)
			summary.Failures++
			continue
		}
		if owner.Email == "" {
			continue
		}
		if s.notifier != nil {
			if err := s.notifier.SendRiskAlert(owner.Email, owner.Username, risk); err != nil {
				log.WithError(err).Warnf("Area %d: risk alert to %s failed", area.ID, owner.Email)
				summary.Failures++
				continue
			}
		}
		summary.AlertsSent++

		var stamped models.AreaOfInterest
		if err := s.store.Update(ctx, TableAreas, area.ID, map[string]any{
			"ultima_notificacion": now.Format(time.RFC3339),
		}, &stamped); err != nil {
			log.WithError(err).Warnf("Area %d: failed to stamp ultima_notificacion", area.ID)
		}
	}
	return summary, nil
}

// notificationDue reports whether enough time has passed since the last
// alert for the area's frequency. Areas never notified are always due.
func (s *AreasService) notificationDue(area *models.AreaOfInterest, now time.Time) bool {
	if area.LastNotifiedAt == "" {
		return true
	}
	last, err := parseCreatedAt(area.LastNotifiedAt)
	if err != nil {
		return true
	}
	interval := 7 * 24 * time.Hour
	if area.Frequency == models.FrequencyDaily {
		interval = 24 * time.Hour
	}
	return now.Sub(last) >= interval
}
