package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
)

func serve(t *testing.T, register func(mux *http.ServeMux), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	register(mux)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope[T any](t *testing.T, rr *httptest.ResponseRecorder) commons.Response[T] {
	t.Helper()
	var body commons.Response[T]
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: commons.NewValidationError(errors.New("amount is required")), want: http.StatusBadRequest},
		{err: commons.NewValidationError(fmt.Errorf("%w: bad", domain.ErrInvalidStatus)), want: http.StatusBadRequest},
		{err: domain.ErrEmailTaken, want: http.StatusConflict},
		{err: domain.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{err: domain.ErrUserNotVerified, want: http.StatusForbidden},
		{err: domain.ErrUserNotFound, want: http.StatusNotFound},
		{err: domain.ErrAccountNotFound, want: http.StatusNotFound},
		{err: domain.ErrRecordNotFound, want: http.StatusNotFound},
		{err: domain.ErrInvalidToken, want: http.StatusNotFound},
		{err: domain.ErrTokenExpired, want: http.StatusBadRequest},
		{err: domain.ErrInsufficientFunds, want: http.StatusBadRequest},
		{err: domain.ErrSourceNotActive, want: http.StatusBadRequest},
		{err: domain.ErrSelfTransfer, want: http.StatusBadRequest},
		{err: fmt.Errorf("attempt 3: %w", domain.ErrStorageFault), want: http.StatusInternalServerError},
		{err: domain.ErrTransientStoreConflict, want: http.StatusInternalServerError},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "created", body: `{"email":"ada@example.com"}`, want: http.StatusCreated},
		{name: "duplicate", body: `{"email":"ada@example.com"}`, err: domain.ErrEmailTaken, want: http.StatusConflict},
		{name: "invalid", body: `{"email":""}`, err: commons.NewValidationError(errors.New("email is required")), want: http.StatusBadRequest},
		{name: "malformed body", body: `{"email":`, want: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			c := NewAuthController(authServiceStub{
				signupFn: func(_ context.Context, req models.SignupRequest) (commons.Response[models.SignupResponse], error) {
					called = true
					if tc.err != nil {
						return commons.ErrorResponse[models.SignupResponse](tc.err.Error()), tc.err
					}
					return commons.SuccessResponse("Registration successful. Please verify your email.", models.SignupResponse{UserID: "u1", Email: req.Email}), nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(tc.body))
			rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }, req)

			if rr.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rr.Code)
			}
			if tc.name == "malformed body" && called {
				t.Fatal("service must not be called for a malformed body")
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Fatalf("expected json content type, got %q", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestSignupRejectsWrongMethod(t *testing.T) {
	c := NewAuthController(authServiceStub{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/signup", nil)
	rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestVerifyRedirects(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		location string
	}{
		{name: "verified", location: "http://app.example.com/login?verified=1"},
		{name: "expired", err: domain.ErrTokenExpired, location: "http://app.example.com/login?verified=0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewAuthController(authServiceStub{
				verifyFn: func(_ context.Context, token string) (commons.Response[models.VerifyStatusResponse], error) {
					if token != "tok-1" {
						t.Fatalf("unexpected token %q", token)
					}
					if tc.err != nil {
						return commons.ErrorResponse[models.VerifyStatusResponse](tc.err.Error()), tc.err
					}
					return commons.SuccessResponse("Account verified successfully", models.VerifyStatusResponse{IsVerified: true}), nil
				},
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify?token=tok-1", nil)
			rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }, req)

			if rr.Code != http.StatusFound {
				t.Fatalf("expected status %d, got %d", http.StatusFound, rr.Code)
			}
			if got := rr.Header().Get("Location"); got != tc.location {
				t.Fatalf("expected location %q, got %q", tc.location, got)
			}
		})
	}
}

func TestLoginStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "ok", want: http.StatusOK},
		{name: "bad password", err: domain.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "unverified", err: domain.ErrUserNotVerified, want: http.StatusForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewAuthController(authServiceStub{
				loginFn: func(context.Context, models.LoginRequest) (commons.Response[models.LoginResponse], error) {
					if tc.err != nil {
						return commons.ErrorResponse[models.LoginResponse](tc.err.Error()), tc.err
					}
					return commons.SuccessResponse("Login successful", models.LoginResponse{AccessToken: "jwt"}), nil
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com","password":"secret1"}`))
			rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }, req)

			if rr.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

func TestVerifyStatusPassesEmail(t *testing.T) {
	c := NewAuthController(authServiceStub{
		verifyStatusFn: func(_ context.Context, email string) (commons.Response[models.VerifyStatusResponse], error) {
			if email != "ada@example.com" {
				return commons.ErrorResponse[models.VerifyStatusResponse]("User not registered"), domain.ErrUserNotFound
			}
			return commons.SuccessResponse("verification status fetched", models.VerifyStatusResponse{IsVerified: true}), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-status?email=ada@example.com", nil)
	rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	body := decodeEnvelope[models.VerifyStatusResponse](t, rr)
	if body.Data == nil || !body.Data.IsVerified {
		t.Fatalf("unexpected body %+v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify-status?email=nobody@example.com", nil)
	rr = serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestAccountMe(t *testing.T) {
	c := NewAccountController(accountServiceStub{
		getOverviewFn: func(_ context.Context, userID string) (commons.Response[models.AccountOverviewResponse], error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user id %q", userID)
			}
			return commons.SuccessResponse("account fetched successfully", models.AccountOverviewResponse{
				Account: models.AccountResponse{ID: "acc-1", Balance: "100.00", Status: "ACTIVE"},
			}), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, asUser("user-1")) }, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	body := decodeEnvelope[models.AccountOverviewResponse](t, rr)
	if body.Data == nil || body.Data.Account.Balance != "100.00" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestAccountMeWithoutIdentity(t *testing.T) {
	c := NewAccountController(accountServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "created", want: http.StatusCreated},
		{name: "insufficient funds", err: domain.ErrInsufficientFunds, want: http.StatusBadRequest},
		{name: "unknown receiver", err: domain.ErrUserNotFound, want: http.StatusNotFound},
		{name: "storage fault", err: domain.ErrStorageFault, want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewTransactionController(transferServiceStub{
				createTransactionFn: func(_ context.Context, senderUserID string, req models.CreateTransactionRequest) (commons.Response[models.CreateTransactionResponse], error) {
					if senderUserID != "user-1" {
						t.Fatalf("unexpected sender %q", senderUserID)
					}
					if req.Amount == nil || req.Amount.String() != "12.5" {
						t.Fatalf("unexpected amount %v", req.Amount)
					}
					if tc.err != nil {
						return commons.ErrorResponse[models.CreateTransactionResponse](tc.err.Error()), tc.err
					}
					return commons.SuccessResponse("Transaction completed", models.CreateTransactionResponse{SenderBalance: "87.50", ReceiverBalance: "12.50"}), nil
				},
			}, transactionServiceStub{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", strings.NewReader(`{"receiverEmail":"bob@example.com","amount":12.50}`))
			rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, asUser("user-1")) }, req)

			if rr.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

func TestTransactionLookupsUsePathValues(t *testing.T) {
	c := NewTransactionController(transferServiceStub{}, transactionServiceStub{
		getFn: func(_ context.Context, userID string, transactionID string) (commons.Response[models.TransactionResponse], error) {
			if transactionID != "42" {
				return commons.ErrorResponse[models.TransactionResponse]("Transaction not found"), domain.ErrRecordNotFound
			}
			return commons.SuccessResponse("transaction fetched successfully", models.TransactionResponse{ID: 42, Sign: models.SignOutgoing}), nil
		},
		latestSentToFn: func(_ context.Context, userID string, recipientName string) (commons.Response[models.TransactionResponse], error) {
			if recipientName != "dan" {
				t.Fatalf("unexpected recipient %q", recipientName)
			}
			return commons.SuccessResponse("transaction fetched successfully", models.TransactionResponse{ID: 7, Sign: models.SignOutgoing}), nil
		},
		listFn: func(_ context.Context, userID string) (commons.Response[[]models.TransactionResponse], error) {
			return commons.SuccessResponse("transactions fetched successfully", []models.TransactionResponse{{ID: 2}, {ID: 1}}), nil
		},
	})
	register := func(mux *http.ServeMux) { c.RegisterRoutes(mux, asUser("user-1")) }

	rr := serve(t, register, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/42", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if body := decodeEnvelope[models.TransactionResponse](t, rr); body.Data == nil || body.Data.ID != 42 {
		t.Fatalf("unexpected body %+v", body)
	}

	rr = serve(t, register, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/43", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}

	rr = serve(t, register, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/by-recipient-name/dan", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if body := decodeEnvelope[models.TransactionResponse](t, rr); body.Data == nil || body.Data.ID != 7 {
		t.Fatalf("unexpected body %+v", body)
	}

	rr = serve(t, register, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if body := decodeEnvelope[[]models.TransactionResponse](t, rr); body.Data == nil || len(*body.Data) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestAdminSetStatus(t *testing.T) {
	c := NewAdminController(accountServiceStub{
		setStatusFn: func(_ context.Context, accountID string, req models.UpdateAccountStatusRequest) (commons.Response[models.AccountResponse], error) {
			if accountID == "missing" {
				return commons.ErrorResponse[models.AccountResponse]("Account not found"), domain.ErrAccountNotFound
			}
			if err := req.Validate(); err != nil {
				return commons.ValidationErrorResponse[models.AccountResponse](err), commons.NewValidationError(err)
			}
			return commons.SuccessResponse("account status updated", models.AccountResponse{ID: accountID, Status: string(req.AccountStatus())}), nil
		},
	})
	register := func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }

	rr := serve(t, register, httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts/acc-1/status", strings.NewReader(`{"status":"blocked"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if body := decodeEnvelope[models.AccountResponse](t, rr); body.Data == nil || body.Data.Status != "BLOCKED" || body.Data.ID != "acc-1" {
		t.Fatalf("unexpected body %+v", body)
	}

	rr = serve(t, register, httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts/acc-1/status", strings.NewReader(`{"status":"closed"}`)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	rr = serve(t, register, httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts/missing/status", strings.NewReader(`{"status":"ACTIVE"}`)))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestHealth(t *testing.T) {
	c := NewHealthController()
	rr := serve(t, func(mux *http.ServeMux) { c.RegisterRoutes(mux, nil) }, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var body models.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "OK" || body.Time == "" {
		t.Fatalf("unexpected body %+v", body)
	}
}
