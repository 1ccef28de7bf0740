package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/example/ec-catalog-cart/internal/metrics"
	"github.com/gorilla/mux"
)

// Metrics records request counts and latency by route template, so that
// /api/products/1 and /api/products/2 share one series
func Metrics(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if cr := mux.CurrentRoute(r); cr != nil {
				if tpl, err := cr.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.Requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
