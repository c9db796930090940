package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safe2gether/models"
	"safe2gether/supabase"
)

var areaNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

// fakeNotifier records outgoing notifications for assertions.
type fakeNotifier struct {
	mu         sync.Mutex
	riskAlerts []string
	fail       bool
}

func (f *fakeNotifier) SendReportConfirmation(recipient, username string, reportID int64, title, category, address string) error {
	return nil
}

func (f *fakeNotifier) SendNewReportNotification(recipient, followerName, authorName, title string, reportID int64, district string) error {
	return nil
}

func (f *fakeNotifier) SendRiskAlert(recipient, username string, risk *models.RiskAssessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return assert.AnError
	}
	f.riskAlerts = append(f.riskAlerts, recipient)
	return nil
}

func (f *fakeNotifier) SendPasswordReset(recipient, username, token string) error {
	return nil
}

func (f *fakeNotifier) sentRiskAlerts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.riskAlerts...)
}

func seedArea(f *fakeStore, fields map[string]any) int64 {
	row := map[string]any{
		"user_id":                 int64(1),
		"nombre":                  "mi barrio",
		"lat":                     0.0,
		"lon":                     0.0,
		"radio_metros":            1000,
		"frecuencia_notificacion": models.FrequencyWeekly,
		"activo":                  true,
	}
	for k, v := range fields {
		row[k] = v
	}
	return f.seed(TableAreas, row)
}

func seedLocatedReport(f *fakeStore, lat, lon float64, category string, createdAt time.Time) {
	f.seed(TableReports, map[string]any{
		"user_id":    int64(2),
		"titulo":     "incidente",
		"categoria":  category,
		"lat":        lat,
		"lon":        lon,
		"estado":     models.StatusActive,
		"created_at": createdAt.Format(time.RFC3339),
	})
}

func newAreasService(store *fakeStore, notifier Notifier) *AreasService {
	return NewAreasService(store, notifier, clockwork.NewFakeClockAt(areaNow))
}

func TestAssessRiskFiltersByRadius(t *testing.T) {
	store := newFakeStore()
	areaID := seedArea(store, nil)
	recent := areaNow.AddDate(0, 0, -1)

	seedLocatedReport(store, 0, 0, "Robo", recent)       // same point
	seedLocatedReport(store, 0, 0.005, "Robo", recent)   // ~0.556 km, inside
	seedLocatedReport(store, 0, 0.02, "Asalto", recent)  // ~2.22 km, outside

	risk, err := newAreasService(store, nil).AssessRisk(context.Background(), areaID, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, risk.TotalReports)
	assert.Equal(t, map[string]int{"Robo": 2}, risk.CrimeTypes)
	assert.Equal(t, models.DangerLow, risk.DangerLevel)
	assert.Len(t, risk.RecentReports, 2)
}

func TestAssessRiskFiltersByWindow(t *testing.T) {
	store := newFakeStore()
	areaID := seedArea(store, nil)

	seedLocatedReport(store, 0, 0, "Robo", areaNow.AddDate(0, 0, -1))
	seedLocatedReport(store, 0, 0, "Robo", areaNow.AddDate(0, 0, -10))

	risk, err := newAreasService(store, nil).AssessRisk(context.Background(), areaID, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, risk.TotalReports)
}

func TestAssessRiskSkipsReportsWithoutCoordinates(t *testing.T) {
	store := newFakeStore()
	areaID := seedArea(store, nil)
	store.seed(TableReports, map[string]any{
		"titulo":     "sin ubicacion",
		"estado":     models.StatusActive,
		"created_at": areaNow.AddDate(0, 0, -1).Format(time.RFC3339),
	})

	risk, err := newAreasService(store, nil).AssessRisk(context.Background(), areaID, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, risk.TotalReports)
	assert.Equal(t, models.DangerLow, risk.DangerLevel)
}

func TestAssessRiskDefaultsCategoryAndWindow(t *testing.T) {
	store := newFakeStore()
	areaID := seedArea(store, nil)
	seedLocatedReport(store, 0, 0, "", areaNow.AddDate(0, 0, -1))

	risk, err := newAreasService(store, nil).AssessRisk(context.Background(), areaID, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultRiskWindowDays, risk.WindowDays)
	assert.Equal(t, map[string]int{models.DefaultCategory: 1}, risk.CrimeTypes)
}

func TestAssessRiskDangerLevels(t *testing.T) {
	tests := []struct {
		total int
		level string
	}{
		{0, models.DangerLow},
		{3, models.DangerLow},
		{4, models.DangerMedium},
		{10, models.DangerMedium},
		{11, models.DangerHigh},
	}
	for _, tc := range tests {
		store := newFakeStore()
		areaID := seedArea(store, nil)
		for i := 0; i < tc.total; i++ {
			seedLocatedReport(store, 0, 0, "Robo", areaNow.AddDate(0, 0, -1))
		}

		risk, err := newAreasService(store, nil).AssessRisk(context.Background(), areaID, 7)
		require.NoError(t, err)
		assert.Equalf(t, tc.level, risk.DangerLevel, "total=%d", tc.total)
	}
}

func TestAssessRiskUnknownArea(t *testing.T) {
	store := newFakeStore()
	_, err := newAreasService(store, nil).AssessRisk(context.Background(), 404, 7)
	assert.ErrorIs(t, err, supabase.ErrNotFound)
}

func TestCreateAreaAppliesDefaults(t *testing.T) {
	store := newFakeStore()
	lat, lon := -12.05, -77.04
	area, err := newAreasService(store, nil).Create(context.Background(), &models.CreateAreaRequest{
		UserID:       1,
		Name:         "  mi barrio  ",
		Lat:          &lat,
		Lon:          &lon,
		RadiusMeters: -5,
		Frequency:    "cada hora",
	})
	require.NoError(t, err)
	assert.Equal(t, "mi barrio", area.Name)
	assert.Equal(t, models.DefaultRadiusMeters, area.RadiusMeters)
	assert.Equal(t, models.FrequencyWeekly, area.Frequency)
	assert.True(t, area.Active)
}

func TestUpdateAreaRejectsInvalidValues(t *testing.T) {
	store := newFakeStore()
	areaID := seedArea(store, nil)
	service := newAreasService(store, nil)

	badRadius := 0
	_, err := service.Update(context.Background(), areaID, &models.UpdateAreaRequest{RadiusMeters: &badRadius})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	badFrequency := "mensual"
	_, err = service.Update(context.Background(), areaID, &models.UpdateAreaRequest{Frequency: &badFrequency})
	assert.ErrorAs(t, err, &validation)

	empty := "   "
	_, err = service.Update(context.Background(), areaID, &models.UpdateAreaRequest{Name: &empty})
	assert.ErrorAs(t, err, &validation)
}

func TestSendRiskAlertsStampsAndSkips(t *testing.T) {
	store := newFakeStore()
	store.seed(TableUsers, map[string]any{"id": int64(1), "user": "maria", "email": "maria@example.com"})

	dueID := seedArea(store, map[string]any{
		"frecuencia_notificacion": models.FrequencyDaily,
		"ultima_notificacion":     areaNow.Add(-25 * time.Hour).Format(time.RFC3339),
	})
	notDueID := seedArea(store, map[string]any{
		"frecuencia_notificacion": models.FrequencyDaily,
		"ultima_notificacion":     areaNow.Add(-2 * time.Hour).Format(time.RFC3339),
	})
	inactiveID := seedArea(store, map[string]any{"activo": false})

	seedLocatedReport(store, 0, 0, "Robo", areaNow.AddDate(0, 0, -1))

	notifier := &fakeNotifier{}
	summary, err := newAreasService(store, notifier).SendRiskAlerts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.AreasChecked)
	assert.Equal(t, 1, summary.AlertsSent)
	assert.Equal(t, 0, summary.Failures)
	assert.Equal(t, []string{"maria@example.com"}, notifier.sentRiskAlerts())

	var due models.AreaOfInterest
	require.NoError(t, roundTrip(store.row(TableAreas, dueID), &due))
	assert.Equal(t, areaNow.Format(time.RFC3339), due.LastNotifiedAt)

	var notDue models.AreaOfInterest
	require.NoError(t, roundTrip(store.row(TableAreas, notDueID), &notDue))
	assert.NotEqual(t, areaNow.Format(time.RFC3339), notDue.LastNotifiedAt)

	var inactive models.AreaOfInterest
	require.NoError(t, roundTrip(store.row(TableAreas, inactiveID), &inactive))
	assert.Empty(t, inactive.LastNotifiedAt)
}

func TestSendRiskAlertsSkipsQuietAreas(t *testing.T) {
	store := newFakeStore()
	store.seed(TableUsers, map[string]any{"id": int64(1), "user": "maria", "email": "maria@example.com"})
	seedArea(store, nil) // no reports nearby

	notifier := &fakeNotifier{}
	summary, err := newAreasService(store, notifier).SendRiskAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AreasChecked)
	assert.Equal(t, 0, summary.AlertsSent)
	assert.Empty(t, notifier.sentRiskAlerts())
}
