package middleware

import (
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Recover turns a panic in the next handler into a 500 envelope
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(log.Fields{
					"component": "api",
					"panic":     rec,
					"requestId": GetRequestID(r.Context()),
					"stack":     string(debug.Stack()),
				}).Error("panic while serving request")
				respondError(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
