package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/logger"
)

func logRequest(r *http.Request, payload any) {
	logger.Info("http request", logger.Fields{
		"method":  r.Method,
		"path":    r.URL.Path,
		"query":   logger.SanitizePayload(r.URL.Query()),
		"payload": logger.SanitizePayload(payload),
	})
}

func logResponse(r *http.Request, status int, payload any, start time.Time) {
	logger.Info("http response", logger.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"status":     status,
		"durationMs": time.Since(start).Milliseconds(),
		"response":   logger.SanitizePayload(payload),
	})
}

func logError(r *http.Request, err error, extra logger.Fields) {
	fields := logger.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	for k, v := range extra {
		fields[k] = v
	}
	logger.Error("http handler error", err, fields)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// respond writes the service result, choosing the status from err.
func respond[T any](w http.ResponseWriter, r *http.Request, start time.Time, okStatus int, response T, err error, message string) {
	status := okStatus
	if err != nil {
		status = statusForError(err)
		logError(r, err, logger.Fields{"message": message, "status": status})
	}
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return decoder.Decode(dst)
}

const maxBodyBytes = 1 << 20
