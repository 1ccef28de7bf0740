package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

// Results recorded alongside an operation
const (
	ResultSuccess           = "success"
	ResultNotFound          = "not_found"
	ResultDuplicateSKU      = "duplicate_sku"
	ResultInsufficientStock = "insufficient_stock"
	ResultProductNotFound   = "product_not_found"
	ResultError             = "error"
)

type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	ProductOperations *prometheus.CounterVec
	CartOperations    *prometheus.CounterVec
	ProductsFetched   prometheus.Counter
	CatalogSize       prometheus.Gauge
	CartItems         prometheus.Gauge
	CartAmount        prometheus.Gauge
	PublishFailures   prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		ProductOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_operations_total",
			Help:      "Catalog operations by outcome.",
		}, []string{"operation", "result"}),
		CartOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_operations_total",
			Help:      "Cart operations by outcome.",
		}, []string{"operation", "result"}),
		ProductsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_fetched_total",
			Help:      "Products returned by list requests.",
		}),
		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "products",
			Help:      "Number of products seen by the last list request.",
		}),
		CartItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_items",
			Help:      "Total quantity in the cart at the last read.",
		}),
		CartAmount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_amount",
			Help:      "Total cart amount at the last read.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_publish_failures_total",
			Help:      "Activity events that could not be published.",
		}),
	}

	reg.MustRegister(
		m.Requests, m.LatencyMS,
		m.ProductOperations, m.CartOperations,
		m.ProductsFetched, m.CatalogSize,
		m.CartItems, m.CartAmount,
		m.PublishFailures,
	)
	return m
}

func (m *Metrics) Product(operation, result string) {
	m.ProductOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) Cart(operation, result string) {
	m.CartOperations.WithLabelValues(operation, result).Inc()
}

// Listing records one page of a product listing
func (m *Metrics) Listing(fetched, total int) {
	m.ProductsFetched.Add(float64(fetched))
	m.CatalogSize.Set(float64(total))
}

// CartTotals records the totals of a cart read
func (m *Metrics) CartTotals(items int, amount float64) {
	m.CartItems.Set(float64(items))
	m.CartAmount.Set(amount)
}

// Handler serves the collectors registered with g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
