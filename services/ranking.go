package services

import (
	"context"
	"sort"
	"time"

	"github.com/apex/log"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"safe2gether/models"
	"safe2gether/supabase"
)

// rankingProjection keeps the ranking fetch narrow; the full row is
// fetched only when the projected query fails.
const rankingProjection = "distrito,categoria,estado,veracidad_porcentaje,created_at"

// minValidVeracity is the veracity floor below which a report does not
// count toward district totals.
const minValidVeracity = 33.0

// RankingService computes district safety rankings and statistics from
// the live report set.
type RankingService struct {
	store RecordStore
	clock clockwork.Clock
}

// NewRankingService creates a ranking service using the given clock for
// window computation.
func NewRankingService(store RecordStore, clock clockwork.Clock) *RankingService {
	return &RankingService{store: store, clock: clock}
}

// periodDays maps a ranking period to its window length. Unrecognized
// periods fall back to a week.
func periodDays(period string) (string, int) {
	switch period {
	case models.PeriodMonth:
		return models.PeriodMonth, 30
	case models.PeriodYear:
		return models.PeriodYear, 365
	case models.PeriodWeek:
		return models.PeriodWeek, 7
	default:
		return models.PeriodWeek, 7
	}
}

// isValidReport reports whether a row counts toward district totals.
func isValidReport(r *models.Report) bool {
	return r.Status == models.StatusActive && r.Veracity >= minValidVeracity
}

// fetchForRanking lists reports with the narrow ranking projection and
// retries with full rows when the projection is rejected upstream.
func (s *RankingService) fetchForRanking(ctx context.Context) ([]models.Report, error) {
	reports := []models.Report{}
	err := s.store.List(ctx, TableReports, supabase.ListOptions{Select: rankingProjection}, &reports)
	if err == nil {
		return reports, nil
	}
	log.WithError(err).Warn("Projected report fetch failed, retrying with full rows")
	reports = []models.Report{}
	if err := s.store.List(ctx, TableReports, supabase.ListOptions{}, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Ranking groups reports by district over the given period and returns
// districts ordered safest-first (fewest valid reports). An optional
// category list restricts which reports are considered.
func (s *RankingService) Ranking(ctx context.Context, period string, categories []string) ([]models.DistrictRanking, error) {
	period, days := periodDays(period)
	now := s.clock.Now().UTC()
	from := now.AddDate(0, 0, -days)

	reports, err := s.fetchForRanking(ctx)
	if err != nil {
		return nil, err
	}

	wanted := map[string]bool{}
	for _, c := range categories {
		wanted[c] = true
	}

	buckets := map[string]*models.DistrictRanking{}
	for i := range reports {
		r := &reports[i]
		if !withinWindow(r.CreatedAt, from) {
			continue
		}
		category := r.Category
		if category == "" {
			category = models.NoCategory
		}
		if len(wanted) > 0 && !wanted[category] {
			continue
		}
		district := r.District
		if district == "" {
			district = models.NoDistrict
		}

		bucket, ok := buckets[district]
		if !ok {
			bucket = &models.DistrictRanking{
				District:   district,
				Period:     period,
				From:       from.Format(time.RFC3339),
				To:         now.Format(time.RFC3339),
				ByCategory: map[string]int{},
			}
			buckets[district] = bucket
		}
		if !isValidReport(r) {
			continue
		}
		bucket.TotalCrimes++
		bucket.AuthorityResolved++
		bucket.ByCategory[category]++
	}

	ranking := make([]models.DistrictRanking, 0, len(buckets))
	for _, bucket := range buckets {
		bucket.ResolvedPercentage = resolvedPercentage(bucket.AuthorityResolved, bucket.TotalCrimes)
		ranking = append(ranking, *bucket)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].TotalCrimes != ranking[j].TotalCrimes {
			return ranking[i].TotalCrimes < ranking[j].TotalCrimes
		}
		return ranking[i].District < ranking[j].District
	})
	return ranking, nil
}

// Statistics groups all valid reports by district with no time window.
func (s *RankingService) Statistics(ctx context.Context) (map[string]*models.DistrictStats, error) {
	reports, err := s.fetchForRanking(ctx)
	if err != nil {
		return nil, err
	}

	stats := map[string]*models.DistrictStats{}
	for i := range reports {
		r := &reports[i]
		if !isValidReport(r) {
			continue
		}
		district := r.District
		if district == "" {
			district = models.NoDistrict
		}
		bucket, ok := stats[district]
		if !ok {
			bucket = &models.DistrictStats{ByCategory: map[string]int{}}
			stats[district] = bucket
		}
		category := r.Category
		if category == "" {
			category = models.NoCategory
		}
		bucket.Total++
		bucket.ByCategory[category]++
	}
	return stats, nil
}

// resolvedPercentage rounds resolved/total*100 to two decimals, with a
// zero total yielding 0.
func resolvedPercentage(resolved, total int) float64 {
	if total == 0 {
		return 0.0
	}
	pct := decimal.NewFromInt(int64(resolved)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := pct.Float64()
	return f
}
