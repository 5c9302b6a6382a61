package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics набор коллекторов сервиса на собственном реестре
type Metrics struct {
	Registry *prometheus.Registry

	CatalogOperations *prometheus.CounterVec
	CatalogProducts   prometheus.Gauge
	UIEvents          *prometheus.CounterVec
	SessionsActive    prometheus.Gauge
	RequestDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		CatalogOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_operations_total",
			Help: "Total number of catalog operations",
		}, []string{"operation", "status"}),
		CatalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Current number of products across all sessions",
		}),
		UIEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ui_events_total",
			Help: "Total number of UI events forwarded by clients",
		}, []string{"type", "dispatched"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Current number of editor sessions",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		m.CatalogOperations,
		m.CatalogProducts,
		m.UIEvents,
		m.SessionsActive,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
