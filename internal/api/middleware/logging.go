package middleware

import (
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Logger writes one line per request once it has been served
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		entry := log.WithFields(log.Fields{
			"component":  "api",
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
			"ip":         clientIP(r),
			"userAgent":  r.UserAgent(),
			"requestId":  GetRequestID(r.Context()),
		})
		switch {
		case rec.status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case rec.status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
