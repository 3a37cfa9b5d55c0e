package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
)

type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (commons.Response[models.SignupResponse], error)
	Verify(ctx context.Context, token string) (commons.Response[models.VerifyStatusResponse], error)
	VerifyRedirectURL(verified bool) string
	Login(ctx context.Context, req models.LoginRequest) (commons.Response[models.LoginResponse], error)
	Logout(ctx context.Context) (commons.Response[models.EmptyResponse], error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (commons.Response[models.EmptyResponse], error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (commons.Response[models.EmptyResponse], error)
	VerifyStatus(ctx context.Context, email string) (commons.Response[models.VerifyStatusResponse], error)
}

// VerifiedUserLoader backs the verified-user middleware.
type VerifiedUserLoader interface {
	VerifiedUser(ctx context.Context, userID string) (domain.User, error)
}
