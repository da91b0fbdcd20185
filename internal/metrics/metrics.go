// Package metrics exposes Prometheus metrics for the map service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides application metrics collection
type Collector struct {
	// View metrics
	SelectionsTotal  *prometheus.CounterVec
	FeaturesRestyled prometheus.Counter
	LegendsBuilt     prometheus.Counter
	FeatureClicks    prometheus.Counter
	ActiveSessions   prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewCollector registers the collector's metrics with reg. A nil reg uses
// a fresh registry.
func NewCollector(namespace string, reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Collector{
		SelectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Total measurable selections by measurable",
			},
			[]string{"measurable"},
		),

		FeaturesRestyled: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "features_restyled_total",
				Help:      "Total features re-styled by selections",
			},
		),

		LegendsBuilt: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "legends_built_total",
				Help:      "Total legends generated",
			},
		),

		FeatureClicks: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feature_clicks_total",
				Help:      "Total feature popups served",
			},
		),

		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Number of live viewer sessions",
			},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
			},
			[]string{"method"},
		),

		gatherer: reg,
	}
}

// Selected records a measurable selection.
func (c *Collector) Selected(measurable string) {
	c.SelectionsTotal.WithLabelValues(measurable).Inc()
}

// Restyled records how many features a selection re-styled.
func (c *Collector) Restyled(features int) {
	c.FeaturesRestyled.Add(float64(features))
}

// LegendBuilt records a legend generation.
func (c *Collector) LegendBuilt() {
	c.LegendsBuilt.Inc()
}

// FeatureClicked records a feature popup.
func (c *Collector) FeatureClicked() {
	c.FeatureClicks.Inc()
}

// SessionsActive sets the live session count.
func (c *Collector) SessionsActive(n int) {
	c.ActiveSessions.Set(float64(n))
}

// RecordRequest records one HTTP request.
func (c *Collector) RecordRequest(method string, status int, d time.Duration) {
	c.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
