// Package metrics expone contadores Prometheus del libro de inventario y del servidor HTTP.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics agrupa los colectores sobre un registro propio (varias instancias por proceso en tests).
type Metrics struct {
	registry *prometheus.Registry

	productsCreated     prometheus.Counter
	productsDeactivated prometheus.Counter
	movements           *prometheus.CounterVec
	movedUnits          *prometheus.CounterVec
	invariantViolations prometheus.Counter
	cacheLookups        *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registra los colectores con el prefijo dado (ej. "stock_ledger").
func New(prefix string) *Metrics {
	prefix = strings.ReplaceAll(strings.TrimSpace(prefix), "-", "_")
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		productsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_products_created_total",
			Help: "Total number of products created",
		}),
		productsDeactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_products_deactivated_total",
			Help: "Total number of products soft-deleted",
		}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Total number of stock movements recorded",
		}, []string{"kind"}),
		movedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_stock_moved_units_total",
			Help: "Total units moved by stock movements",
		}, []string{"kind"}),
		invariantViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_ledger_invariant_violations_total",
			Help: "Products whose stored quantity disagrees with their movement ledger",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_cache_lookups_total",
			Help: "Read cache lookups by query and result",
		}, []string{"query", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
	reg.MustRegister(
		m.productsCreated, m.productsDeactivated, m.movements, m.movedUnits,
		m.invariantViolations, m.cacheLookups, m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ProductCreated()     { m.productsCreated.Inc() }
func (m *Metrics) ProductDeactivated() { m.productsDeactivated.Inc() }
func (m *Metrics) InvariantViolation() { m.invariantViolations.Inc() }

func (m *Metrics) MovementRecorded(kind string, quantity int) {
	m.movements.WithLabelValues(kind).Inc()
	m.movedUnits.WithLabelValues(kind).Add(float64(quantity))
}

func (m *Metrics) CacheLookup(query string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(query, result).Inc()
}

// ObserveRequest registra una petición HTTP. path debe ser la ruta registrada, no la URL cruda.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	s := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, path, s).Inc()
	m.httpDuration.WithLabelValues(method, path, s).Observe(elapsed.Seconds())
}

// Handler expone el registro en formato de texto de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry acceso al registro (tests).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
