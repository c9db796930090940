package models

// Defaults applied when grouping reports whose district or category is
// missing.
const (
	NoDistrict = "Sin distrito"
	NoCategory = "Sin categoría"
)

// Ranking periods accepted by the district ranking aggregator.
// Unrecognized values fall back to PeriodWeek.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// DistrictRanking is one row of the district safety ranking: districts
// with fewer validated reports rank first.
type DistrictRanking struct {
	District           string         `json:"distrito"`
	TotalCrimes        int            `json:"total_delitos"`
	AuthorityResolved  int            `json:"resoluciones_autoridades"`
	ResolvedPercentage float64        `json:"porcentaje_resoluciones"`
	Period             string         `json:"periodo"`
	From               string         `json:"desde"`
	To                 string         `json:"hasta"`
	ByCategory         map[string]int `json:"por_categoria"`
}

// DistrictStats is one bucket of the unwindowed district statistics.
type DistrictStats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"por_categoria"`
}
