package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/security"
)

type verifiedUserStub struct {
	verifiedUserFn func(ctx context.Context, userID string) (domain.User, error)
}

func (s verifiedUserStub) VerifiedUser(ctx context.Context, userID string) (domain.User, error) {
	return s.verifiedUserFn(ctx, userID)
}

func TestAuthenticate_PutsIdentityInContext(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("user-1", "ada@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var got Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	Authenticate(issuer)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if got.UserID != "user-1" || got.Email != "ada@example.com" {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestAuthenticate_RejectsMissingAndInvalidTokens(t *testing.T) {
	issuer := security.NewTokenIssuer("test-secret", time.Hour)
	foreign, err := security.NewTokenIssuer("other-secret", time.Hour).Issue("user-1", "ada@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "garbage", header: "Bearer not-a-jwt"},
		{name: "wrong secret", header: "Bearer " + foreign},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			Authenticate(issuer)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
			var body commons.Response[struct{}]
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Success {
				t.Fatal("expected success=false")
			}
		})
	}
}

func TestRequireVerifiedUser(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "verified", err: nil, want: http.StatusOK},
		{name: "unknown user", err: domain.ErrUserNotFound, want: http.StatusNotFound},
		{name: "unverified", err: domain.ErrUserNotVerified, want: http.StatusForbidden},
		{name: "store failure", err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loader := verifiedUserStub{verifiedUserFn: func(_ context.Context, userID string) (domain.User, error) {
				if userID != "user-1" {
					t.Fatalf("unexpected user id %q", userID)
				}
				return domain.User{ID: userID, IsVerified: tc.err == nil}, tc.err
			}}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: "user-1"}))
			rr := httptest.NewRecorder()
			RequireVerifiedUser(loader)(okHandler()).ServeHTTP(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("expected status %d, got %d", tc.want, rr.Code)
			}
		})
	}
}

func TestRequireVerifiedUser_NeedsIdentity(t *testing.T) {
	loader := verifiedUserStub{verifiedUserFn: func(context.Context, string) (domain.User, error) {
		t.Fatal("loader must not be called without identity")
		return domain.User{}, nil
	}}

	rr := httptest.NewRecorder()
	RequireVerifiedUser(loader)(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	rr := httptest.NewRecorder()
	Chain(okHandler(), mark("first"), nil, mark("second")).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected order %v", order)
	}
}
