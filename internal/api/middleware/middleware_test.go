package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/ec-catalog-cart/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// ============================================
// Request ID Tests
// ============================================

func TestRequestID_Generated(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_Passthrough(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestGetRequestID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetRequestID(req.Context()))
}

// ============================================
// Recover Tests
// ============================================

func TestRecover_Panic(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal server error", body["error"])
}

func TestRecover_NoPanic(t *testing.T) {
	rec := httptest.NewRecorder()
	Recover(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ============================================
// Logger Tests
// ============================================

func TestLogger_PassesStatusThrough(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestStatusRecorder_DefaultsToOK(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	_, err := rec.Write([]byte("hi"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.status)
}

func TestStatusRecorder_KeepsFirstStatus(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusNotFound, rec.status)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:52311"
	assert.Equal(t, "10.0.0.7", clientIP(req))

	req.RemoteAddr = "not-an-address"
	assert.Equal(t, "not-an-address", clientIP(req))
}

// ============================================
// Rate Limit Tests
// ============================================

func TestRateLimiter_BurstThenReject(t *testing.T) {
	limiter := NewRateLimiter(0.1, 2)
	handler := limiter.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)

		if rec.Code == http.StatusTooManyRequests {
			body := decodeEnvelope(t, rec)
			assert.Equal(t, RateLimitMessage, body["error"])
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_PerIP(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)

	assert.True(t, limiter.Allow("192.0.2.1"))
	assert.False(t, limiter.Allow("192.0.2.1"))
	assert.True(t, limiter.Allow("192.0.2.2"))
}

func TestRateLimiter_ForgetsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	limiter.lastSweep = now

	limiter.Allow("192.0.2.1")
	require.Len(t, limiter.visitors, 1)

	now = now.Add(visitorTTL + 2*time.Minute)
	limiter.Allow("192.0.2.2")

	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "192.0.2.2")
}

// ============================================
// Header Tests
// ============================================

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS([]string{"*"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	req.Header.Set("Origin", "http://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := CORS([]string{"http://shop.example.com"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// ============================================
// Metrics Tests
// ============================================

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := mux.NewRouter()
	r.Use(Metrics(m))
	r.Handle("/api/products/{id}", okHandler).Methods(http.MethodGet)

	for _, path := range []string{"/api/products/1", "/api/products/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("/api/products/{id}", "GET", "200")))
}
