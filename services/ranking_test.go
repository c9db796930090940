package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safe2gether/models"
)

var rankingNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func seedRankedReport(f *fakeStore, district, category, status string, veracity float64, createdAt time.Time) {
	created := ""
	if !createdAt.IsZero() {
		created = createdAt.Format(time.RFC3339)
	}
	f.seed(TableReports, map[string]any{
		"user_id":              int64(1),
		"titulo":               "incidente",
		"distrito":             district,
		"categoria":            category,
		"estado":               status,
		"veracidad_porcentaje": veracity,
		"created_at":           created,
	})
}

func newRankingService(store *fakeStore) *RankingService {
	return NewRankingService(store, clockwork.NewFakeClockAt(rankingNow))
}

func TestRankingCountsOnlyValidReports(t *testing.T) {
	store := newFakeStore()
	recent := rankingNow.AddDate(0, 0, -1)

	seedRankedReport(store, "Miraflores", "Robo", models.StatusActive, 50, recent)
	seedRankedReport(store, "Miraflores", "Robo", models.StatusActive, 20, recent)
	seedRankedReport(store, "San Isidro", "Asalto", models.StatusDoubtful, 80, recent)

	ranking, err := newRankingService(store).Ranking(context.Background(), models.PeriodWeek, nil)
	require.NoError(t, err)
	require.Len(t, ranking, 2)

	// San Isidro has no valid reports but its bucket still appears, and
	// with the lower total it ranks first.
	assert.Equal(t, "San Isidro", ranking[0].District)
	assert.Equal(t, 0, ranking[0].TotalCrimes)
	assert.Equal(t, 0.0, ranking[0].ResolvedPercentage)

	assert.Equal(t, "Miraflores", ranking[1].District)
	assert.Equal(t, 1, ranking[1].TotalCrimes)
	assert.Equal(t, 1, ranking[1].AuthorityResolved)
	assert.Equal(t, 100.0, ranking[1].ResolvedPercentage)
	assert.Equal(t, map[string]int{"Robo": 1}, ranking[1].ByCategory)
}

func TestRankingWindowExcludesOldReports(t *testing.T) {
	store := newFakeStore()
	seedRankedReport(store, "Surco", "Robo", models.StatusActive, 90, rankingNow.AddDate(0, 0, -3))
	seedRankedReport(store, "Surco", "Robo", models.StatusActive, 90, rankingNow.AddDate(0, 0, -10))

	service := newRankingService(store)

	week, err := service.Ranking(context.Background(), models.PeriodWeek, nil)
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, 1, week[0].TotalCrimes)

	month, err := service.Ranking(context.Background(), models.PeriodMonth, nil)
	require.NoError(t, err)
	require.Len(t, month, 1)
	assert.Equal(t, 2, month[0].TotalCrimes)
}

func TestRankingUnparseableTimestampFailsOpen(t *testing.T) {
	store := newFakeStore()
	store.seed(TableReports, map[string]any{
		"distrito":             "Lince",
		"categoria":            "Robo",
		"estado":               models.StatusActive,
		"veracidad_porcentaje": 80.0,
		"created_at":           "hace un rato",
	})

	ranking, err := newRankingService(store).Ranking(context.Background(), models.PeriodWeek, nil)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, 1, ranking[0].TotalCrimes)
}

func TestRankingNormalizesMissingDistrictAndCategory(t *testing.T) {
	store := newFakeStore()
	seedRankedReport(store, "", "", models.StatusActive, 60, rankingNow.AddDate(0, 0, -1))

	ranking, err := newRankingService(store).Ranking(context.Background(), models.PeriodWeek, nil)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, models.NoDistrict, ranking[0].District)
	assert.Equal(t, map[string]int{models.NoCategory: 1}, ranking[0].ByCategory)
}

func TestRankingCategoryFilter(t *testing.T) {
	store := newFakeStore()
	recent := rankingNow.AddDate(0, 0, -1)
	seedRankedReport(store, "Miraflores", "Robo", models.StatusActive, 60, recent)
	seedRankedReport(store, "Miraflores", "Asalto", models.StatusActive, 60, recent)

	ranking, err := newRankingService(store).Ranking(context.Background(), models.PeriodWeek, []string{"Robo"})
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, 1, ranking[0].TotalCrimes)
	assert.Equal(t, map[string]int{"Robo": 1}, ranking[0].ByCategory)
}

func TestRankingUnknownPeriodFallsBackToWeek(t *testing.T) {
	store := newFakeStore()
	seedRankedReport(store, "Surco", "Robo", models.StatusActive, 90, rankingNow.AddDate(0, 0, -10))

	// The 10-day-old report falls outside the week window the unknown
	// period falls back to, so no district appears at all.
	ranking, err := newRankingService(store).Ranking(context.Background(), "decade", nil)
	require.NoError(t, err)
	assert.Empty(t, ranking)

	month, err := newRankingService(store).Ranking(context.Background(), models.PeriodMonth, nil)
	require.NoError(t, err)
	require.Len(t, month, 1)
	assert.Equal(t, models.PeriodMonth, month[0].Period)
}

func TestRankingEmptyWindow(t *testing.T) {
	store := newFakeStore()
	seedRankedReport(store, "Surco", "Robo", models.StatusActive, 90, rankingNow.AddDate(0, 0, -30))

	ranking, err := newRankingService(store).Ranking(context.Background(), models.PeriodWeek, nil)
	require.NoError(t, err)
	assert.Empty(t, ranking)
}

func TestRankingSortsAscendingByTotal(t *testing.T) {
	store := newFakeStore()
	recent := rankingNow.AddDate(0, 0, -1)
	for i := 0; i < 3; i++ {
		seedRankedReport(store, "Callao", "Robo", models.StatusActive, 90, recent)
	}
	seedRankedReport(store, "Barranco", "Robo", models.StatusActive, 90, recent)

	ranking, err := newRankingService(store).Ranking(context.Background(), models.PeriodWeek, nil)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, "Barranco", ranking[0].District)
	assert.Equal(t, "Callao", ranking[1].District)
}

func TestRankingFallsBackToFullRowsWhenProjectionFails(t *testing.T) {
	store := newFakeStore()
	store.rejectProjection = true
	seedRankedReport(store, "Miraflores", "Robo", models.StatusActive, 90, rankingNow.AddDate(0, 0, -1))

	ranking, err := newRankingService(store).Ranking(context.Background(), models.PeriodWeek, nil)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, 1, ranking[0].TotalCrimes)
}

func TestStatisticsIgnoresWindow(t *testing.T) {
	store := newFakeStore()
	seedRankedReport(store, "Surco", "Robo", models.StatusActive, 90, rankingNow.AddDate(-1, 0, 0))
	seedRankedReport(store, "Surco", "Asalto", models.StatusActive, 50, rankingNow.AddDate(0, 0, -1))
	seedRankedReport(store, "Surco", "Robo", models.StatusActive, 10, rankingNow.AddDate(0, 0, -1))

	stats, err := newRankingService(store).Statistics(context.Background())
	require.NoError(t, err)
	require.Contains(t, stats, "Surco")
	assert.Equal(t, 2, stats["Surco"].Total)
	assert.Equal(t, map[string]int{"Robo": 1, "Asalto": 1}, stats["Surco"].ByCategory)
}
