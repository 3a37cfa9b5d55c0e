package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/usecase/service_interfaces"
)

type TransactionController struct {
	transfers    service_interfaces.TransferService
	transactions service_interfaces.TransactionService
}

func NewTransactionController(transfers service_interfaces.TransferService, transactions service_interfaces.TransactionService) *TransactionController {
	return &TransactionController{transfers: transfers, transactions: transactions}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	protect := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, authMiddleware)
	}

	mux.Handle("POST /api/v1/transactions", protect(c.create))
	mux.Handle("GET /api/v1/transactions", protect(c.list))
	mux.Handle("GET /api/v1/transactions/by-recipient-name/{recipientName}", protect(c.latestSentTo))
	mux.Handle("GET /api/v1/transactions/{transactionId}", protect(c.get))
}

func (c *TransactionController) create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		unauthorized[models.CreateTransactionResponse](w, r, start)
		return
	}

	var req models.CreateTransactionRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	response, err := c.transfers.CreateTransaction(r.Context(), identity.UserID, req)
	respond(w, r, start, http.StatusCreated, response, err, response.Message)
}

func (c *TransactionController) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		unauthorized[[]models.TransactionResponse](w, r, start)
		return
	}

	response, err := c.transactions.List(r.Context(), identity.UserID)
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}

func (c *TransactionController) latestSentTo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		unauthorized[models.TransactionResponse](w, r, start)
		return
	}

	response, err := c.transactions.LatestSentTo(r.Context(), identity.UserID, r.PathValue("recipientName"))
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}

func (c *TransactionController) get(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		unauthorized[models.TransactionResponse](w, r, start)
		return
	}

	response, err := c.transactions.Get(r.Context(), identity.UserID, r.PathValue("transactionId"))
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}
