package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/api-sage/bank-one-one/src/internal/security"
	"github.com/api-sage/bank-one-one/src/internal/usecase/service_interfaces"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID string
	Email  string
}

type identityContextKey struct{}

type TokenParser interface {
	Parse(raw string) (security.Claims, error)
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || strings.TrimSpace(identity.UserID) == "" {
		return Identity{}, false
	}
	return identity, true
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate resolves the caller from a bearer access token.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := parser.Parse(raw)
			if err != nil {
				logger.Info("auth middleware rejected token", logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"reason": err.Error(),
				})
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.UserID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerifiedUser lets through callers whose user record exists and is
// verified. It must run after Authenticate.
func RequireVerifiedUser(users service_interfaces.VerifiedUserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if _, err := users.VerifiedUser(r.Context(), identity.UserID); err != nil {
				status, message := verifiedUserFailure(err)
				if status == http.StatusInternalServerError {
					logger.Error("auth middleware user lookup failed", err, logger.Fields{
						"userId": identity.UserID,
					})
				}
				writeError(w, status, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func verifiedUserFailure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound.Error()
	case errors.Is(err, domain.ErrUserNotVerified):
		return http.StatusForbidden, "Account not verified"
	default:
		return http.StatusInternalServerError, "Unable to load user"
	}
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			h = middlewares[i](h)
		}
	}
	return h
}
