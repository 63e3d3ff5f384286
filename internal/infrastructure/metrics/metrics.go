package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	Webhooks         *prometheus.CounterVec
	CompanyMatches   *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "order_enricher_upstream_requests_total",
			Help: "Outbound API calls by resource and outcome.",
		}, []string{"resource", "outcome"}),

		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "order_enricher_upstream_request_duration_seconds",
			Help:    "Latency of outbound API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),

		Webhooks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "order_enricher_webhooks_total",
			Help: "Webhook deliveries by final status.",
		}, []string{"status"}),

		CompanyMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "order_enricher_company_resolutions_total",
			Help: "Company resolutions by result.",
		}, []string{"result"}),
	}
}

// NewNop returns collectors registered on a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
