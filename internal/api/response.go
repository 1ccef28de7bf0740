package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/ec-catalog-cart/internal/api/middleware"
	"github.com/example/ec-catalog-cart/internal/validation"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

func init() {
	// prices and totals go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Response is the envelope around every API reply
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("write response")
	}
}

func respondData(w http.ResponseWriter, status int, data any, message string) {
	respondJSON(w, status, Response{Success: true, Data: data, Message: message})
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, Response{Success: false, Error: message})
}

func respondInvalid(w http.ResponseWriter, r *http.Request, errs validation.Errors) {
	log.WithFields(log.Fields{
		"component": "api",
		"path":      r.URL.Path,
		"method":    r.Method,
		"errors":    errs,
		"requestId": middleware.GetRequestID(r.Context()),
	}).Warn("validation failed")
	respondError(w, errs.Error(), http.StatusBadRequest)
}

// respondInternal logs err and hides it from the caller
func respondInternal(w http.ResponseWriter, r *http.Request, err error) {
	log.WithFields(log.Fields{
		"component": "api",
		"path":      r.URL.Path,
		"method":    r.Method,
		"requestId": middleware.GetRequestID(r.Context()),
	}).WithError(err).Error("request failed")
	respondError(w, "Internal server error", http.StatusInternalServerError)
}
