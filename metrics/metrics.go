package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// StoreRequestsTotal counts PostgREST calls by table, method and result.
	StoreRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safe2gether",
		Subsystem: "store",
		Name:      "requests_total",
		Help:      "Total number of Supabase PostgREST requests, labeled by table, method and result.",
	}, []string{"table", "method", "result"})

	// VeracityRecomputeTotal counts veracity write-backs by strategy and result.
	VeracityRecomputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safe2gether",
		Subsystem: "veracity",
		Name:      "recompute_total",
		Help:      "Total number of report veracity recomputations, labeled by strategy (full|delta) and result.",
	}, []string{"strategy", "result"})

	// GeocodeTotal counts reverse-geocode lookups by result.
	GeocodeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safe2gether",
		Subsystem: "geocoder",
		Name:      "lookups_total",
		Help:      "Total number of reverse-geocode lookups, labeled by result.",
	}, []string{"result"})

	// EmailSendTotal counts outbound emails by template and result.
	EmailSendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safe2gether",
		Subsystem: "email",
		Name:      "send_total",
		Help:      "Total number of SendGrid sends, labeled by template and result.",
	}, []string{"template", "result"})
)

// Register registers backend metrics with the default Prometheus
// registry. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			StoreRequestsTotal,
			VeracityRecomputeTotal,
			GeocodeTotal,
			EmailSendTotal,
		)
	})
}
