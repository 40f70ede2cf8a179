package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	listingsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_listings_ingested_total",
			Help: "Total number of raw listings ingested.",
		},
		[]string{"retailer", "outcome"},
	)
	priceChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_price_changes_total",
			Help: "Total number of committed price changes.",
		},
	)
	dealsFlagged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_deals_flagged_total",
			Help: "Total number of deal flags, by reason.",
		},
		[]string{"reason"},
	)
	productsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_products_created_total",
			Help: "Total number of canonical products created by the resolver.",
		},
	)
	productsExtended = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_products_extended_total",
			Help: "Total number of listings attached to existing canonical products.",
		},
	)
	listingsDelisted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_listings_delisted_total",
			Help: "Total number of listings marked unavailable by reconciliation.",
		},
	)
)

func init() {
	prometheus.MustRegister(listingsIngested)
	prometheus.MustRegister(priceChanges)
	prometheus.MustRegister(dealsFlagged)
	prometheus.MustRegister(productsCreated)
	prometheus.MustRegister(productsExtended)
	prometheus.MustRegister(listingsDelisted)
}

func RecordIngest(retailer, outcome string) {
	listingsIngested.WithLabelValues(retailer, outcome).Inc()
}

func RecordPriceChange(reasons []string) {
	priceChanges.Inc()
	for _, r := range reasons {
		dealsFlagged.WithLabelValues(r).Inc()
	}
}

func RecordMerge(created, extended int) {
	productsCreated.Add(float64(created))
	productsExtended.Add(float64(extended))
}

func RecordDelisted(count int) {
	listingsDelisted.Add(float64(count))
}

// MetricsHandler returns the HTTP handler exporting Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
