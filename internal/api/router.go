package api

import (
	"net/http"

	"github.com/example/ec-catalog-cart/internal/api/middleware"
	"github.com/example/ec-catalog-cart/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

type RouterOptions struct {
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	// RateLimitRPS of zero disables rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(handlers *Handlers, opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	if opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(opts.Gatherer)).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	if opts.RateLimitRPS > 0 {
		api.Use(middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Middleware)
	}

	api.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	// Products
	api.HandleFunc("/products", handlers.ListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", handlers.CreateProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", handlers.GetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", handlers.UpdateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", handlers.DeleteProduct).Methods(http.MethodDelete)
	api.HandleFunc("/products/{id}/stock/decrement", handlers.DecrementStock).Methods(http.MethodPost)

	// Categories
	api.HandleFunc("/categories", handlers.ListCategories).Methods(http.MethodGet)

	// Cart
	api.HandleFunc("/cart", handlers.GetCart).Methods(http.MethodGet)
	api.HandleFunc("/cart", handlers.ClearCart).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", handlers.AddToCart).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{itemId}", handlers.UpdateCartItem).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{itemId}", handlers.RemoveFromCart).Methods(http.MethodDelete)

	var h http.Handler = r
	h = middleware.CORS(opts.AllowedOrigins)(h)
	h = middleware.SecureHeaders(h)
	h = middleware.Recover(h)
	h = middleware.Logger(h)
	h = middleware.RequestID(h)
	return h
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, "Route "+r.URL.Path+" not found", http.StatusNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, "Method "+r.Method+" not allowed on "+r.URL.Path, http.StatusMethodNotAllowed)
}
