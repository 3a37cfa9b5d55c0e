package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/api-sage/bank-one-one/src/internal/commons"
)

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(commons.ErrorResponse[struct{}](message))
}
