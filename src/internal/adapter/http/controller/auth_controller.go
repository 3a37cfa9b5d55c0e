package controller

import (
	"net/http"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/usecase/service_interfaces"
)

type AuthController struct {
	service service_interfaces.AuthService
}

func NewAuthController(service service_interfaces.AuthService) *AuthController {
	return &AuthController{service: service}
}

func (c *AuthController) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /api/v1/auth/signup", c.signup)
	mux.HandleFunc("GET /api/v1/auth/verify", c.verify)
	mux.HandleFunc("POST /api/v1/auth/login", c.login)
	mux.HandleFunc("POST /api/v1/auth/logout", c.logout)
	mux.HandleFunc("POST /api/v1/auth/forgot-password", c.forgotPassword)
	mux.HandleFunc("POST /api/v1/auth/reset-password", c.resetPassword)
	mux.HandleFunc("GET /api/v1/auth/verify-status", c.verifyStatus)
}

func (c *AuthController) signup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.SignupRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	response, err := c.service.Signup(r.Context(), req)
	respond(w, r, start, http.StatusCreated, response, err, response.Message)
}

// verify always redirects to the frontend login page with the outcome.
func (c *AuthController) verify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.Verify(r.Context(), r.URL.Query().Get("token"))
	verified := err == nil && response.Success
	if err != nil {
		logError(r, err, nil)
	}

	target := c.service.VerifyRedirectURL(verified)
	http.Redirect(w, r, target, http.StatusFound)
	logResponse(r, http.StatusFound, map[string]any{"location": target}, start)
}

func (c *AuthController) login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.LoginRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	response, err := c.service.Login(r.Context(), req)
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}

func (c *AuthController) logout(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.Logout(r.Context())
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}

func (c *AuthController) forgotPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ForgotPasswordRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	response, err := c.service.ForgotPassword(r.Context(), req)
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}

func (c *AuthController) resetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ResetPasswordRequest
	if !decodeBody(w, r, &req, start) {
		return
	}
	logRequest(r, req)

	response, err := c.service.ResetPassword(r.Context(), req)
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}

func (c *AuthController) verifyStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.VerifyStatus(r.Context(), r.URL.Query().Get("email"))
	respond(w, r, start, http.StatusOK, response, err, response.Message)
}

// decodeBody reads a JSON request body and answers 400 when it is malformed.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, start time.Time) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.EmptyResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return false
	}
	return true
}
