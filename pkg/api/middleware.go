package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ssargent/filecabinet/pkg/metrics"
	"github.com/ssargent/filecabinet/pkg/store"
	"github.com/ssargent/filecabinet/pkg/validation"
)

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}

			ok := subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) == 1
			if m != nil {
				m.RecordAuthRequest(ok)
			}
			if !ok {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusOK, data)
}

// sendCreated sends a 201 JSON response
func sendCreated(w http.ResponseWriter, data interface{}) {
	sendJSON(w, http.StatusCreated, data)
}

func sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := APIResponse{
		Success: true,
		Data:    data,
	}
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}

// sendStoreError maps engine errors to status codes
func sendStoreError(w http.ResponseWriter, err error) {
	var vErr *validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		sendError(w, vErr.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		sendError(w, "Record not found", http.StatusNotFound)
	case errors.Is(err, store.ErrClosed):
		sendError(w, "Store is not open", http.StatusServiceUnavailable)
	default:
		sendError(w, "Internal error: "+err.Error(), http.StatusInternalServerError)
	}
}
