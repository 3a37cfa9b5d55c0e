package services

import (
	"context"
	"errors"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
)

// TransactionService serves the caller's read side of the ledger.
type TransactionService struct {
	transactions domain.TransactionRepository
	users        domain.UserDirectory
}

func NewTransactionService(transactions domain.TransactionRepository, users domain.UserDirectory) *TransactionService {
	return &TransactionService{transactions: transactions, users: users}
}

func (s *TransactionService) List(ctx context.Context, userID string) (commons.Response[[]models.TransactionResponse], error) {
	email, resp, err := callerEmail[[]models.TransactionResponse](ctx, s.users, userID)
	if err != nil {
		return resp, err
	}

	txns, err := s.transactions.FindByParticipant(ctx, email)
	if err != nil {
		logger.Error("transaction service list failed", err, logger.Fields{
			"userId": userID,
		})
		return commons.ErrorResponse[[]models.TransactionResponse]("failed to get transactions", "Unable to fetch transactions right now"), err
	}

	return commons.SuccessResponse("transactions fetched successfully", signedTransactions(txns, email)), nil
}

// Get returns one transaction the caller took part in. Rows of other users
// are reported as not found.
func (s *TransactionService) Get(ctx context.Context, userID string, transactionID string) (commons.Response[models.TransactionResponse], error) {
	email, resp, err := callerEmail[models.TransactionResponse](ctx, s.users, userID)
	if err != nil {
		return resp, err
	}

	txn, err := s.transactions.FindByID(ctx, strings.TrimSpace(transactionID))
	if err == nil && !strings.EqualFold(txn.FromEmail, email) && !strings.EqualFold(txn.ToEmail, email) {
		err = domain.ErrRecordNotFound
	}
	if err != nil {
		return transactionLookupFailure(err, logger.Fields{"userId": userID, "transactionId": transactionID})
	}

	return commons.SuccessResponse("transaction fetched successfully", signedTransactions([]domain.Transaction{txn}, email)[0]), nil
}

// LatestSentTo finds the caller's latest outgoing transfer to the recipient
// whose email local part is recipientName.
func (s *TransactionService) LatestSentTo(ctx context.Context, userID string, recipientName string) (commons.Response[models.TransactionResponse], error) {
	recipientName = strings.TrimSpace(recipientName)
	if recipientName == "" {
		err := errors.New("recipientName is required")
		return commons.ValidationErrorResponse[models.TransactionResponse](err), commons.NewValidationError(err)
	}

	email, resp, err := callerEmail[models.TransactionResponse](ctx, s.users, userID)
	if err != nil {
		return resp, err
	}

	txn, err := s.transactions.FindLatestSentTo(ctx, email, recipientName)
	if err != nil {
		return transactionLookupFailure(err, logger.Fields{"userId": userID, "recipientName": recipientName})
	}

	item := models.NewTransactionResponse(txn)
	item.Sign = models.SignOutgoing
	return commons.SuccessResponse("transaction fetched successfully", item), nil
}

const messageTransactionNotFound = "Transaction not found"

func transactionLookupFailure(err error, fields logger.Fields) (commons.Response[models.TransactionResponse], error) {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return commons.ErrorResponse[models.TransactionResponse](messageTransactionNotFound), domain.ErrRecordNotFound
	}
	logger.Error("transaction service lookup failed", err, fields)
	return commons.ErrorResponse[models.TransactionResponse]("failed to get transaction", "Unable to fetch transaction right now"), err
}

func callerEmail[T any](ctx context.Context, users domain.UserDirectory, userID string) (string, commons.Response[T], error) {
	email, err := users.ResolveEmail(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return "", commons.ErrorResponse[T](domain.ErrUserNotFound.Error()), domain.ErrUserNotFound
		}
		logger.Error("resolve caller email failed", err, logger.Fields{
			"userId": userID,
		})
		return "", commons.ErrorResponse[T]("request failed", "Unable to resolve user right now"), err
	}
	return email, commons.Response[T]{}, nil
}
