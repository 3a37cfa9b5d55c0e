package controller

import (
	"context"
	"net/http"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/middleware"
	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

type authServiceStub struct {
	signupFn         func(ctx context.Context, req models.SignupRequest) (commons.Response[models.SignupResponse], error)
	verifyFn         func(ctx context.Context, token string) (commons.Response[models.VerifyStatusResponse], error)
	loginFn          func(ctx context.Context, req models.LoginRequest) (commons.Response[models.LoginResponse], error)
	forgotPasswordFn func(ctx context.Context, req models.ForgotPasswordRequest) (commons.Response[models.EmptyResponse], error)
	resetPasswordFn  func(ctx context.Context, req models.ResetPasswordRequest) (commons.Response[models.EmptyResponse], error)
	verifyStatusFn   func(ctx context.Context, email string) (commons.Response[models.VerifyStatusResponse], error)
}

func (s authServiceStub) Signup(ctx context.Context, req models.SignupRequest) (commons.Response[models.SignupResponse], error) {
	return s.signupFn(ctx, req)
}

func (s authServiceStub) Verify(ctx context.Context, token string) (commons.Response[models.VerifyStatusResponse], error) {
	return s.verifyFn(ctx, token)
}

func (s authServiceStub) VerifyRedirectURL(verified bool) string {
	if verified {
		return "http://app.example.com/login?verified=1"
	}
	return "http://app.example.com/login?verified=0"
}

func (s authServiceStub) Login(ctx context.Context, req models.LoginRequest) (commons.Response[models.LoginResponse], error) {
	return s.loginFn(ctx, req)
}

func (s authServiceStub) Logout(context.Context) (commons.Response[models.EmptyResponse], error) {
	return commons.SuccessResponse("Logged out successfully", models.EmptyResponse{}), nil
}

func (s authServiceStub) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (commons.Response[models.EmptyResponse], error) {
	return s.forgotPasswordFn(ctx, req)
}

func (s authServiceStub) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (commons.Response[models.EmptyResponse], error) {
	return s.resetPasswordFn(ctx, req)
}

func (s authServiceStub) VerifyStatus(ctx context.Context, email string) (commons.Response[models.VerifyStatusResponse], error) {
	return s.verifyStatusFn(ctx, email)
}

type accountServiceStub struct {
	getOverviewFn func(ctx context.Context, userID string) (commons.Response[models.AccountOverviewResponse], error)
	setStatusFn   func(ctx context.Context, accountID string, req models.UpdateAccountStatusRequest) (commons.Response[models.AccountResponse], error)
}

func (s accountServiceStub) GetOverview(ctx context.Context, userID string) (commons.Response[models.AccountOverviewResponse], error) {
	return s.getOverviewFn(ctx, userID)
}

func (s accountServiceStub) SetStatus(ctx context.Context, accountID string, req models.UpdateAccountStatusRequest) (commons.Response[models.AccountResponse], error) {
	return s.setStatusFn(ctx, accountID, req)
}

type transferServiceStub struct {
	createTransactionFn func(ctx context.Context, senderUserID string, req models.CreateTransactionRequest) (commons.Response[models.CreateTransactionResponse], error)
}

func (s transferServiceStub) CreateTransaction(ctx context.Context, senderUserID string, req models.CreateTransactionRequest) (commons.Response[models.CreateTransactionResponse], error) {
	return s.createTransactionFn(ctx, senderUserID, req)
}

type transactionServiceStub struct {
	listFn         func(ctx context.Context, userID string) (commons.Response[[]models.TransactionResponse], error)
	getFn          func(ctx context.Context, userID string, transactionID string) (commons.Response[models.TransactionResponse], error)
	latestSentToFn func(ctx context.Context, userID string, recipientName string) (commons.Response[models.TransactionResponse], error)
}

func (s transactionServiceStub) List(ctx context.Context, userID string) (commons.Response[[]models.TransactionResponse], error) {
	return s.listFn(ctx, userID)
}

func (s transactionServiceStub) Get(ctx context.Context, userID string, transactionID string) (commons.Response[models.TransactionResponse], error) {
	return s.getFn(ctx, userID, transactionID)
}

func (s transactionServiceStub) LatestSentTo(ctx context.Context, userID string, recipientName string) (commons.Response[models.TransactionResponse], error) {
	return s.latestSentToFn(ctx, userID, recipientName)
}

type assistantStub struct {
	replyFn func(ctx context.Context, userID string, input string, history []services.ChatMessage) (string, []services.ChatMessage, error)
}

func (s assistantStub) Reply(ctx context.Context, userID string, input string, history []services.ChatMessage) (string, []services.ChatMessage, error) {
	return s.replyFn(ctx, userID, input, history)
}

type verifiedUserStub struct {
	verifiedUserFn func(ctx context.Context, userID string) (domain.User, error)
}

func (s verifiedUserStub) VerifiedUser(ctx context.Context, userID string) (domain.User, error) {
	return s.verifiedUserFn(ctx, userID)
}

// asUser stands in for the auth middleware chain.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithIdentity(r.Context(), middleware.Identity{UserID: userID, Email: userID + "@example.com"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
