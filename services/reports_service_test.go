package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safe2gether/models"
)

// fakeGeocoder returns a fixed district or a fixed error.
type fakeGeocoder struct {
	district string
	err      error
	calls    int
}

func (f *fakeGeocoder) DistrictFor(ctx context.Context, lat, lon float64) (string, error) {
	f.calls++
	return f.district, f.err
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestCreateReportDefaults(t *testing.T) {
	store := newFakeStore()
	service := NewReportsService(store, nil, nil)

	report, err := service.Create(context.Background(), &models.CreateReportRequest{
		UserID: 1,
		Title:  "robo de celular",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, report.Status)
	assert.Equal(t, 0.0, report.Veracity)
	assert.Equal(t, 0, report.Upvotes)
	assert.Equal(t, 0, report.Downvotes)
}

func TestCreateReportLowVeracityMarkedFalse(t *testing.T) {
	store := newFakeStore()
	service := NewReportsService(store, nil, nil)

	report, err := service.Create(context.Background(), &models.CreateReportRequest{
		UserID:   1,
		Title:    "robo de celular",
		Veracity: floatPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFalse, report.Status)
	assert.Equal(t, 20.0, report.Veracity)
}

func TestCreateReportPopulatesDistrict(t *testing.T) {
	store := newFakeStore()
	geocoder := &fakeGeocoder{district: "Miraflores"}
	service := NewReportsService(store, geocoder, nil)

	report, err := service.Create(context.Background(), &models.CreateReportRequest{
		UserID: 1,
		Title:  "robo de celular",
		Lat:    floatPtr(-12.12),
		Lon:    floatPtr(-77.03),
	})
	require.NoError(t, err)
	assert.Equal(t, "Miraflores", report.District)
	assert.Equal(t, 1, geocoder.calls)
}

func TestCreateReportGeocoderFailureIsNonFatal(t *testing.T) {
	store := newFakeStore()
	geocoder := &fakeGeocoder{err: assert.AnError}
	service := NewReportsService(store, geocoder, nil)

	report, err := service.Create(context.Background(), &models.CreateReportRequest{
		UserID: 1,
		Title:  "robo de celular",
		Lat:    floatPtr(-12.12),
		Lon:    floatPtr(-77.03),
	})
	require.NoError(t, err)
	assert.Empty(t, report.District)
}

func TestCreateReportSkipsGeocoderWithoutCoordinates(t *testing.T) {
	store := newFakeStore()
	geocoder := &fakeGeocoder{district: "Miraflores"}
	service := NewReportsService(store, geocoder, nil)

	report, err := service.Create(context.Background(), &models.CreateReportRequest{
		UserID: 1,
		Title:  "robo de celular",
		Lat:    floatPtr(-12.12),
	})
	require.NoError(t, err)
	assert.Empty(t, report.District)
	assert.Equal(t, 0, geocoder.calls)
}

func TestUpdateReportRecomputesVeracityFromCounters(t *testing.T) {
	store := newFakeStore()
	service := NewReportsService(store, nil, nil)
	reportID := seedReport(store, map[string]any{
		"cantidad_upvotes":     2,
		"cantidad_downvotes":   0,
		"veracidad_porcentaje": 100.0,
	})

	updated, err := service.Update(context.Background(), reportID, &models.UpdateReportRequest{
		Downvotes: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Upvotes)
	assert.Equal(t, 2, updated.Downvotes)
	assert.Equal(t, 50.0, updated.Veracity)
}

func TestUpdateReportExplicitVeracityWins(t *testing.T) {
	store := newFakeStore()
	service := NewReportsService(store, nil, nil)
	reportID := seedReport(store, nil)

	updated, err := service.Update(context.Background(), reportID, &models.UpdateReportRequest{
		Upvotes:  intPtr(9),
		Veracity: floatPtr(42),
	})
	require.NoError(t, err)
	assert.Equal(t, 42.0, updated.Veracity)
}

func TestBackfillDistrictsUpdatesOnlyLocatedReports(t *testing.T) {
	store := newFakeStore()
	geocoder := &fakeGeocoder{district: "Surco"}
	service := NewReportsService(store, geocoder, nil)
	located := seedReport(store, map[string]any{
		"distrito": "",
		"lat":      -12.12,
		"lon":      -77.03,
	})
	seedReport(store, map[string]any{"distrito": ""})

	summary, err := service.BackfillDistricts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Examined)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, "Surco", storedReport(t, store, located).District)
}

func TestBackfillDistrictsIncludesNullDistricts(t *testing.T) {
	store := newFakeStore()
	geocoder := &fakeGeocoder{district: "Barranco"}
	service := NewReportsService(store, geocoder, nil)
	// A report that was never geocoded has no district at all, not an
	// empty one.
	located := seedReport(store, map[string]any{
		"lat": -12.14,
		"lon": -77.02,
	})

	summary, err := service.BackfillDistricts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Examined)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, "Barranco", storedReport(t, store, located).District)
}

func TestBackfillDistrictsSkipsGeocoderFailures(t *testing.T) {
	store := newFakeStore()
	geocoder := &fakeGeocoder{err: assert.AnError}
	service := NewReportsService(store, geocoder, nil)
	seedReport(store, map[string]any{
		"distrito": "",
		"lat":      -12.12,
		"lon":      -77.03,
	})

	summary, err := service.BackfillDistricts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Examined)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
}

func TestListByUser(t *testing.T) {
	store := newFakeStore()
	service := NewReportsService(store, nil, nil)
	seedReport(store, map[string]any{"user_id": int64(1)})
	seedReport(store, map[string]any{"user_id": int64(2)})

	reports, err := service.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, int64(1), reports[0].UserID)
}
