package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

// Mailer delivers account emails. link is the full URL the user must open.
type Mailer interface {
	SendVerification(ctx context.Context, to string, link string) error
	SendPasswordReset(ctx context.Context, to string, link string) error
}

type AccessTokenIssuer interface {
	Issue(userID string, email string) (string, error)
}

// AccountLifecycle is the part of account management signup and
// verification drive.
type AccountLifecycle interface {
	OpenAccount(ctx context.Context, userID string) (domain.Account, error)
	ActivateForUser(ctx context.Context, userID string) error
}

type AuthOptions struct {
	AppBaseURL      string
	FrontendBaseURL string
}

type AuthService struct {
	users    domain.UserRepository
	accounts AccountLifecycle
	tokens   AccessTokenIssuer
	mailer   Mailer
	opts     AuthOptions
	now      func() time.Time
	newToken func() string
}

func NewAuthService(users domain.UserRepository, accounts AccountLifecycle, tokens AccessTokenIssuer, mailer Mailer, opts AuthOptions) *AuthService {
	opts.AppBaseURL = strings.TrimRight(opts.AppBaseURL, "/")
	opts.FrontendBaseURL = strings.TrimRight(opts.FrontendBaseURL, "/")
	if opts.FrontendBaseURL == "" {
		opts.FrontendBaseURL = opts.AppBaseURL
	}
	return &AuthService{
		users:    users,
		accounts: accounts,
		tokens:   tokens,
		mailer:   mailer,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: uuid.NewString,
	}
}

func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (commons.Response[models.SignupResponse], error) {
	logger.Info("auth service signup request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("auth service signup validation failed", err, nil)
		return commons.ValidationErrorResponse[models.SignupResponse](err), commons.NewValidationError(err)
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		logger.Error("auth service signup hash password failed", err, nil)
		return commons.ErrorResponse[models.SignupResponse]("failed to sign up", "Unable to create user right now"), err
	}

	token := s.newToken()
	expires := s.now().Add(verificationTokenTTL)

	created, err := s.users.Create(ctx, domain.User{
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		Email:                 models.NormalizeEmail(req.Email),
		PhoneNumber:           strings.TrimSpace(req.PhoneNumber),
		PasswordHash:          passwordHash,
		VerificationToken:     &token,
		VerificationExpiresAt: &expires,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return commons.ErrorResponse[models.SignupResponse](domain.ErrEmailTaken.Error()), domain.ErrEmailTaken
		}
		logger.Error("auth service signup create user failed", err, nil)
		return commons.ErrorResponse[models.SignupResponse]("failed to sign up", "Unable to create user right now"), err
	}

	// Neither step below fails the signup.
	if _, err := s.accounts.OpenAccount(ctx, created.ID); err != nil {
		logger.Error("auth service signup open account failed", err, logger.Fields{
			"userId": created.ID,
		})
	}
	if err := s.mailer.SendVerification(ctx, created.Email, s.verificationLink(token)); err != nil {
		logger.Error("auth service signup verification email failed", err, logger.Fields{
			"userId": created.ID,
		})
	}

	logger.Info("auth service signup success", logger.Fields{
		"userId": created.ID,
		"email":  created.Email,
	})

	return commons.SuccessResponse("Registration successful. Please verify your email.", models.SignupResponse{
		UserID:     created.ID,
		Email:      created.Email,
		IsVerified: created.IsVerified,
	}), nil
}

// Verify consumes a verification token and activates the user's account.
// A user who is already verified verifies again successfully.
func (s *AuthService) Verify(ctx context.Context, token string) (commons.Response[models.VerifyStatusResponse], error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return commons.ErrorResponse[models.VerifyStatusResponse](domain.ErrInvalidToken.Error()), domain.ErrInvalidToken
	}

	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.VerifyStatusResponse](domain.ErrInvalidToken.Error()), domain.ErrInvalidToken
		}
		logger.Error("auth service verify lookup failed", err, nil)
		return commons.ErrorResponse[models.VerifyStatusResponse]("verification failed"), err
	}

	if user.IsVerified {
		return commons.SuccessResponse("Account already verified", models.VerifyStatusResponse{IsVerified: true}), nil
	}
	if user.VerificationExpiresAt == nil || s.now().After(*user.VerificationExpiresAt) {
		return commons.ErrorResponse[models.VerifyStatusResponse](domain.ErrTokenExpired.Error()), domain.ErrTokenExpired
	}

	// Activate first so a failed activation leaves the token usable.
	if err := s.accounts.ActivateForUser(ctx, user.ID); err != nil {
		logger.Error("auth service verify activate account failed", err, logger.Fields{
			"userId": user.ID,
		})
		return commons.ErrorResponse[models.VerifyStatusResponse]("verification failed"), err
	}

	user.IsVerified = true
	user.VerificationToken = nil
	user.VerificationExpiresAt = nil
	if _, err := s.users.Update(ctx, user); err != nil {
		logger.Error("auth service verify update user failed", err, logger.Fields{
			"userId": user.ID,
		})
		return commons.ErrorResponse[models.VerifyStatusResponse]("verification failed"), err
	}

	logger.Info("auth service verify success", logger.Fields{
		"userId": user.ID,
	})
	return commons.SuccessResponse("Account verified successfully", models.VerifyStatusResponse{IsVerified: true}), nil
}

// VerifyRedirectURL is where the browser lands after following a
// verification link.
func (s *AuthService) VerifyRedirectURL(verified bool) string {
	flag := "0"
	if verified {
		flag = "1"
	}
	return s.opts.FrontendBaseURL + "/login?verified=" + flag
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (commons.Response[models.LoginResponse], error) {
	logger.Info("auth service login request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ValidationErrorResponse[models.LoginResponse](err), commons.NewValidationError(err)
	}

	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.LoginResponse]("User not registered"), domain.ErrInvalidCredentials
		}
		logger.Error("auth service login lookup failed", err, nil)
		return commons.ErrorResponse[models.LoginResponse]("failed to log in", "Unable to log in right now"), err
	}

	if !user.IsVerified {
		return commons.ErrorResponse[models.LoginResponse]("Account not verified"), domain.ErrUserNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Info("auth service login password mismatch", logger.Fields{
				"userId": user.ID,
			})
			return commons.ErrorResponse[models.LoginResponse](domain.ErrInvalidCredentials.Error()), domain.ErrInvalidCredentials
		}
		wrappedErr := fmt.Errorf("compare password: %w", err)
		logger.Error("auth service login compare failed", wrappedErr, logger.Fields{
			"userId": user.ID,
		})
		return commons.ErrorResponse[models.LoginResponse]("failed to log in", "Unable to log in right now"), wrappedErr
	}

	accessToken, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		logger.Error("auth service login issue token failed", err, logger.Fields{
			"userId": user.ID,
		})
		return commons.ErrorResponse[models.LoginResponse]("failed to log in", "Unable to log in right now"), err
	}

	logger.Info("auth service login success", logger.Fields{
		"userId": user.ID,
	})
	return commons.SuccessResponse("Logged in successfully", models.LoginResponse{AccessToken: accessToken}), nil
}

// Logout is stateless; clients drop their token.
func (s *AuthService) Logout(context.Context) (commons.Response[models.EmptyResponse], error) {
	return commons.SuccessResponse("Logged out successfully", models.EmptyResponse{}), nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (commons.Response[models.EmptyResponse], error) {
	logger.Info("auth service forgot password request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ValidationErrorResponse[models.EmptyResponse](err), commons.NewValidationError(err)
	}

	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.EmptyResponse]("User not registered"), domain.ErrUserNotFound
		}
		logger.Error("auth service forgot password lookup failed", err, nil)
		return commons.ErrorResponse[models.EmptyResponse]("failed to reset password", "Unable to reset password right now"), err
	}

	token := s.newToken()
	expires := s.now().Add(resetTokenTTL)
	user.ResetPasswordToken = &token
	user.ResetPasswordExpiresAt = &expires

	if _, err := s.users.Update(ctx, user); err != nil {
		logger.Error("auth service forgot password update failed", err, logger.Fields{
			"userId": user.ID,
		})
		return commons.ErrorResponse[models.EmptyResponse]("failed to reset password", "Unable to reset password right now"), err
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.resetLink(token)); err != nil {
		logger.Error("auth service forgot password email failed", err, logger.Fields{
			"userId": user.ID,
		})
		return commons.ErrorResponse[models.EmptyResponse]("failed to reset password", "Unable to send reset email right now"), err
	}

	logger.Info("auth service forgot password success", logger.Fields{
		"userId": user.ID,
	})
	return commons.SuccessResponse("Password reset email sent", models.EmptyResponse{}), nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (commons.Response[models.EmptyResponse], error) {
	logger.Info("auth service reset password request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ValidationErrorResponse[models.EmptyResponse](err), commons.NewValidationError(err)
	}

	user, err := s.users.GetByResetToken(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.EmptyResponse](domain.ErrInvalidToken.Error()), domain.ErrInvalidToken
		}
		logger.Error("auth service reset password lookup failed", err, nil)
		return commons.ErrorResponse[models.EmptyResponse]("failed to reset password", "Unable to reset password right now"), err
	}

	if user.ResetPasswordExpiresAt == nil || s.now().After(*user.ResetPasswordExpiresAt) {
		return commons.ErrorResponse[models.EmptyResponse](domain.ErrTokenExpired.Error()), domain.ErrTokenExpired
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		logger.Error("auth service reset password hash failed", err, nil)
		return commons.ErrorResponse[models.EmptyResponse]("failed to reset password", "Unable to reset password right now"), err
	}

	user.PasswordHash = passwordHash
	user.ResetPasswordToken = nil
	user.ResetPasswordExpiresAt = nil
	if _, err := s.users.Update(ctx, user); err != nil {
		logger.Error("auth service reset password update failed", err, logger.Fields{
			"userId": user.ID,
		})
		return commons.ErrorResponse[models.EmptyResponse]("failed to reset password", "Unable to reset password right now"), err
	}

	logger.Info("auth service reset password success", logger.Fields{
		"userId": user.ID,
	})
	return commons.SuccessResponse("Password updated successfully", models.EmptyResponse{}), nil
}

func (s *AuthService) VerifyStatus(ctx context.Context, email string) (commons.Response[models.VerifyStatusResponse], error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		err := errors.New("email is required")
		return commons.ValidationErrorResponse[models.VerifyStatusResponse](err), commons.NewValidationError(err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.VerifyStatusResponse]("User not registered"), domain.ErrUserNotFound
		}
		logger.Error("auth service verify status lookup failed", err, nil)
		return commons.ErrorResponse[models.VerifyStatusResponse]("failed to get status", "Unable to fetch status right now"), err
	}

	return commons.SuccessResponse("verification status fetched", models.VerifyStatusResponse{IsVerified: user.IsVerified}), nil
}

// VerifiedUser loads userID and requires it to be verified.
func (s *AuthService) VerifiedUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	if !user.IsVerified {
		return domain.User{}, domain.ErrUserNotVerified
	}
	return user, nil
}

func (s *AuthService) verificationLink(token string) string {
	return s.opts.AppBaseURL + "/api/v1/auth/verify?token=" + url.QueryEscape(token)
}

func (s *AuthService) resetLink(token string) string {
	return s.opts.FrontendBaseURL + "/reset-password?token=" + url.QueryEscape(token)
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
