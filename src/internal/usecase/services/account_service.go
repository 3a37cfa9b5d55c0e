package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
)

const (
	minOpeningBalance = 100
	maxOpeningBalance = 5000
)

type AccountService struct {
	accounts       domain.AccountRepository
	transactions   domain.TransactionRepository
	users          domain.UserDirectory
	openingBalance func() domain.Money
}

func NewAccountService(accounts domain.AccountRepository, transactions domain.TransactionRepository, users domain.UserDirectory) *AccountService {
	return &AccountService{
		accounts:       accounts,
		transactions:   transactions,
		users:          users,
		openingBalance: randomOpeningBalance,
	}
}

// WithOpeningBalance overrides the random opening balance source.
func (s *AccountService) WithOpeningBalance(fn func() domain.Money) *AccountService {
	s.openingBalance = fn
	return s
}

func randomOpeningBalance() domain.Money {
	return domain.MoneyFromMajor(minOpeningBalance + rand.Int64N(maxOpeningBalance-minOpeningBalance+1))
}

// OpenAccount creates the user's PENDING account with a random opening
// balance of whole units.
func (s *AccountService) OpenAccount(ctx context.Context, userID string) (domain.Account, error) {
	account, err := s.accounts.Create(ctx, domain.Account{
		UserID:  userID,
		Balance: s.openingBalance(),
		Status:  domain.AccountStatusPending,
	})
	if err != nil {
		logger.Error("account service open account failed", err, logger.Fields{
			"userId": userID,
		})
		return domain.Account{}, fmt.Errorf("open account: %w", err)
	}

	logger.Info("account service open account success", logger.Fields{
		"userId":    userID,
		"accountId": account.ID,
		"balance":   account.Balance.String(),
	})
	return account, nil
}

// ActivateForUser marks the user's account ACTIVE, opening one first if
// signup never managed to.
func (s *AccountService) ActivateForUser(ctx context.Context, userID string) error {
	account, err := s.accounts.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrRecordNotFound) {
		account, err = s.OpenAccount(ctx, userID)
	}
	if err != nil {
		return fmt.Errorf("activate account: %w", err)
	}

	if account.Status == domain.AccountStatusActive {
		return nil
	}
	if _, err := s.accounts.UpdateStatus(ctx, account.ID, domain.AccountStatusActive); err != nil {
		return fmt.Errorf("activate account: %w", err)
	}
	return nil
}

// GetOverview returns the caller's account and full history, newest first.
func (s *AccountService) GetOverview(ctx context.Context, userID string) (commons.Response[models.AccountOverviewResponse], error) {
	logger.Info("account service get overview request", logger.Fields{
		"userId": userID,
	})

	account, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountOverviewResponse](domain.ErrAccountNotFound.Error()), domain.ErrAccountNotFound
		}
		logger.Error("account service get overview account lookup failed", err, logger.Fields{
			"userId": userID,
		})
		return commons.ErrorResponse[models.AccountOverviewResponse]("failed to get account", "Unable to fetch account right now"), err
	}

	email, err := s.users.ResolveEmail(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountOverviewResponse](domain.ErrUserNotFound.Error()), domain.ErrUserNotFound
		}
		logger.Error("account service get overview email lookup failed", err, logger.Fields{
			"userId": userID,
		})
		return commons.ErrorResponse[models.AccountOverviewResponse]("failed to get account", "Unable to fetch account right now"), err
	}

	txns, err := s.transactions.FindByParticipant(ctx, email)
	if err != nil {
		logger.Error("account service get overview history failed", err, logger.Fields{
			"userId": userID,
		})
		return commons.ErrorResponse[models.AccountOverviewResponse]("failed to get account", "Unable to fetch transactions right now"), err
	}

	response := models.AccountOverviewResponse{
		Account:      models.NewAccountResponse(account),
		Transactions: signedTransactions(txns, email),
	}

	logger.Info("account service get overview success", logger.Fields{
		"userId":       userID,
		"accountId":    account.ID,
		"transactions": len(txns),
	})

	return commons.SuccessResponse("account fetched successfully", response), nil
}

// SetStatus is the administrative status change.
func (s *AccountService) SetStatus(ctx context.Context, accountID string, req models.UpdateAccountStatusRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service set status request", logger.Fields{
		"accountId": accountID,
		"payload":   logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ValidationErrorResponse[models.AccountResponse](err), commons.NewValidationError(fmt.Errorf("%w: %v", domain.ErrInvalidStatus, err))
	}

	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		err := errors.New("accountId is required")
		return commons.ValidationErrorResponse[models.AccountResponse](err), commons.NewValidationError(err)
	}

	account, err := s.accounts.UpdateStatus(ctx, accountID, req.AccountStatus())
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse](domain.ErrAccountNotFound.Error()), domain.ErrAccountNotFound
		}
		logger.Error("account service set status failed", err, logger.Fields{
			"accountId": accountID,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to update account", "Unable to update account right now"), err
	}

	logger.Info("account service set status success", logger.Fields{
		"accountId": account.ID,
		"status":    account.Status,
	})

	return commons.SuccessResponse("account status updated", models.NewAccountResponse(account)), nil
}

func signedTransactions(txns []domain.Transaction, email string) []models.TransactionResponse {
	out := make([]models.TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		item := models.NewTransactionResponse(txn)
		if strings.EqualFold(txn.FromEmail, email) {
			item.Sign = models.SignOutgoing
		} else {
			item.Sign = models.SignIncoming
		}
		out = append(out, item)
	}
	return out
}
