package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/usecase/service_interfaces"
)

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("GET /api/v1/accounts/me", middleware.Chain(http.HandlerFunc(c.getMine), authMiddleware))
}

func (c *AccountController) getMine(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		unauthorized[models.AccountOverviewResponse](w, r, start)
		return
	}

	response, err := c.service.GetOverview(r.Context(), identity.UserID)
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}

func unauthorized[T any](w http.ResponseWriter, r *http.Request, start time.Time) {
	response := commons.ErrorResponse[T]("Authentication required")
	writeJSON(w, http.StatusUnauthorized, response)
	logResponse(r, http.StatusUnauthorized, response, start)
}
