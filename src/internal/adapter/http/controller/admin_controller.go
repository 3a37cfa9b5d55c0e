package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/usecase/service_interfaces"
)

// AdminController exposes operator actions behind basic auth.
type AdminController struct {
	accounts service_interfaces.AccountService
}

func NewAdminController(accounts service_interfaces.AccountService) *AdminController {
	return &AdminController{accounts: accounts}
}

func (c *AdminController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/admin/accounts/{accountId}/status", middleware.Chain(http.HandlerFunc(c.setStatus), authMiddleware))
}

func (c *AdminController) setStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.UpdateAccountStatusRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	response, err := c.accounts.SetStatus(r.Context(), r.PathValue("accountId"), req)
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}
