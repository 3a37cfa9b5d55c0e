package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
)

type HealthController struct {
	now func() time.Time
}

func NewHealthController() *HealthController {
	return &HealthController{now: time.Now}
}

func (c *HealthController) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/v1/health", c.health)
}

func (c *HealthController) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status: "OK",
		Time:   c.now().UTC().Format(time.RFC3339Nano),
	})
}
