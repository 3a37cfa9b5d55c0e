package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/api-sage/bank-one-one/src/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTransferAttempts = 3
	defaultTransferTimeout  = 10 * time.Second
	defaultRetryBackoff     = 25 * time.Millisecond
)

type TransferOptions struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryBackoff   time.Duration
}

// TransferReceipt is a committed transfer plus the post-transfer balances of
// both accounts as seen under the row locks.
type TransferReceipt struct {
	Transaction     domain.Transaction
	SenderBalance   domain.Money
	ReceiverBalance domain.Money
}

type TransferService struct {
	store    domain.TransferStore
	accounts domain.AccountRepository
	users    domain.UserRepository
	opts     TransferOptions
}

func NewTransferService(
	store domain.TransferStore,
	accounts domain.AccountRepository,
	users domain.UserRepository,
	opts TransferOptions,
) *TransferService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = defaultTransferAttempts
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = defaultTransferTimeout
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	}
	return &TransferService{
		store:    store,
		accounts: accounts,
		users:    users,
		opts:     opts,
	}
}

// Transfer moves amount between two accounts as one atomic unit and records a
// COMPLETED ledger row.
func (s *TransferService) Transfer(ctx context.Context, fromAccountID string, toAccountID string, amount domain.Money, description string) (domain.Transaction, error) {
	receipt, err := s.Execute(ctx, fromAccountID, toAccountID, amount, description)
	if err != nil {
		return domain.Transaction{}, err
	}
	return receipt.Transaction, nil
}

// Execute is Transfer returning the resulting balances as well.
func (s *TransferService) Execute(ctx context.Context, fromAccountID string, toAccountID string, amount domain.Money, description string) (TransferReceipt, error) {
	fromAccountID = strings.TrimSpace(fromAccountID)
	toAccountID = strings.TrimSpace(toAccountID)
	description = strings.TrimSpace(description)

	ctx, span := telemetry.Tracer().Start(ctx, "transfer", trace.WithAttributes(
		attribute.String("transfer.from_account_id", fromAccountID),
		attribute.String("transfer.to_account_id", toAccountID),
		attribute.Int64("transfer.amount_minor", int64(amount)),
	))
	defer span.End()

	if err := validateTransfer(fromAccountID, toAccountID, amount, description); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return TransferReceipt{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return TransferReceipt{}, err
		}

		receipt, err := s.attempt(ctx, attempt, fromAccountID, toAccountID, amount, description)
		if err == nil {
			logger.Info("transfer completed", logger.Fields{
				"transactionId": receipt.Transaction.ID,
				"fromAccountId": fromAccountID,
				"toAccountId":   toAccountID,
				"amount":        amount.String(),
				"attempt":       attempt,
			})
			return receipt, nil
		}

		if domain.IsTransferRejection(err) {
			logger.Info("transfer rejected", logger.Fields{
				"fromAccountId": fromAccountID,
				"toAccountId":   toAccountID,
				"reason":        err.Error(),
			})
			span.SetStatus(codes.Error, err.Error())
			return TransferReceipt{}, err
		}

		if !errors.Is(err, domain.ErrTransientStoreConflict) {
			logger.Error("transfer storage fault", err, logger.Fields{
				"fromAccountId": fromAccountID,
				"toAccountId":   toAccountID,
				"attempt":       attempt,
			})
			span.RecordError(err)
			span.SetStatus(codes.Error, "storage fault")
			return TransferReceipt{}, fmt.Errorf("%w: %v", domain.ErrStorageFault, err)
		}

		lastErr = err
		logger.Warn("transfer transient conflict", logger.Fields{
			"fromAccountId": fromAccountID,
			"toAccountId":   toAccountID,
			"attempt":       attempt,
			"error":         err.Error(),
		})

		if attempt < s.opts.MaxAttempts && s.opts.RetryBackoff > 0 {
			timer := time.NewTimer(time.Duration(attempt) * s.opts.RetryBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				span.SetStatus(codes.Error, ctx.Err().Error())
				return TransferReceipt{}, ctx.Err()
			case <-timer.C:
			}
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "retries exhausted")
	logger.Error("transfer retries exhausted", lastErr, logger.Fields{
		"fromAccountId": fromAccountID,
		"toAccountId":   toAccountID,
		"attempts":      s.opts.MaxAttempts,
	})
	return TransferReceipt{}, fmt.Errorf("%w: retries exhausted: %v", domain.ErrStorageFault, lastErr)
}

// attempt runs one unit detached from the caller's cancellation so a started
// unit always commits or rolls back on its own terms.
func (s *TransferService) attempt(ctx context.Context, attempt int, fromAccountID string, toAccountID string, amount domain.Money, description string) (TransferReceipt, error) {
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.AttemptTimeout)
	defer cancel()

	attemptCtx, span := telemetry.Tracer().Start(attemptCtx, "transfer.attempt", trace.WithAttributes(
		attribute.Int("transfer.attempt", attempt),
	))
	defer span.End()

	var receipt TransferReceipt
	err := s.store.ExecTransfer(attemptCtx, func(ctx context.Context, tx domain.TransferTx) error {
		from, to, err := tx.LockAccounts(ctx, fromAccountID, toAccountID)
		if err != nil {
			return err
		}
		// The store may canonicalise ids, so two spellings can lock one row.
		if from.ID == to.ID {
			return domain.ErrSelfTransfer
		}

		if from.Status != domain.AccountStatusActive {
			return domain.ErrSourceNotActive
		}
		if from.Balance < amount {
			return domain.ErrInsufficientFunds
		}

		fromEmail, err := resolveIdentity(ctx, tx, from.UserID)
		if err != nil {
			return err
		}
		toEmail, err := resolveIdentity(ctx, tx, to.UserID)
		if err != nil {
			return err
		}

		if err := tx.Debit(ctx, from.ID, amount); err != nil {
			return err
		}
		if err := tx.Credit(ctx, to.ID, amount); err != nil {
			return err
		}

		txn, err := tx.AppendTransaction(ctx, domain.Transaction{
			FromEmail:   fromEmail,
			ToEmail:     toEmail,
			Amount:      amount,
			Status:      domain.TransactionStatusCompleted,
			Description: description,
		})
		if err != nil {
			return err
		}

		receipt = TransferReceipt{
			Transaction:     txn,
			SenderBalance:   from.Balance - amount,
			ReceiverBalance: to.Balance + amount,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return TransferReceipt{}, err
	}
	return receipt, nil
}

func validateTransfer(fromAccountID string, toAccountID string, amount domain.Money, description string) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if fromAccountID != "" && sameAccountID(fromAccountID, toAccountID) {
		return domain.ErrSelfTransfer
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return domain.ErrDescriptionTooLong
	}
	return nil
}

// sameAccountID compares ids by their UUID value when both parse, so hyphen-less,
// braced and urn forms of one id are equal.
func sameAccountID(a string, b string) bool {
	ua, errA := uuid.Parse(a)
	ub, errB := uuid.Parse(b)
	if errA == nil && errB == nil {
		return ua == ub
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func resolveIdentity(ctx context.Context, directory domain.UserDirectory, userID string) (string, error) {
	email, err := directory.ResolveEmail(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return "", domain.ErrIdentityResolutionFailed
		}
		return "", err
	}
	email = models.NormalizeEmail(email)
	if email == "" {
		return "", domain.ErrIdentityResolutionFailed
	}
	return email, nil
}

// CreateTransaction resolves the caller's and the receiver's accounts and runs
// Transfer between them.
func (s *TransferService) CreateTransaction(ctx context.Context, senderUserID string, req models.CreateTransactionRequest) (commons.Response[models.CreateTransactionResponse], error) {
	logger.Info("transfer service create transaction request", logger.Fields{
		"senderUserId": senderUserID,
		"payload":      logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("transfer service create transaction validation failed", err, nil)
		return commons.ValidationErrorResponse[models.CreateTransactionResponse](err), commons.NewValidationError(err)
	}

	amount, err := req.Money()
	if err != nil {
		return commons.ValidationErrorResponse[models.CreateTransactionResponse](err), commons.NewValidationError(err)
	}

	receiver, err := s.users.GetByEmail(ctx, models.NormalizeEmail(req.ReceiverEmail))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.CreateTransactionResponse](domain.ErrUserNotFound.Error()), domain.ErrUserNotFound
		}
		logger.Error("transfer service receiver lookup failed", err, nil)
		return commons.ErrorResponse[models.CreateTransactionResponse]("Transaction failed", "Unable to process transaction right now"), err
	}

	senderAccount, err := s.accounts.GetByUserID(ctx, senderUserID)
	if err != nil {
		return accountLookupFailure(err)
	}
	receiverAccount, err := s.accounts.GetByUserID(ctx, receiver.ID)
	if err != nil {
		return accountLookupFailure(err)
	}

	receipt, err := s.Execute(ctx, senderAccount.ID, receiverAccount.ID, amount, req.Description)
	if err != nil {
		if domain.IsTransferRejection(err) {
			return commons.ErrorResponse[models.CreateTransactionResponse](err.Error()), err
		}
		return commons.ErrorResponse[models.CreateTransactionResponse]("Transaction failed", "Unable to process transaction right now"), err
	}

	response := models.CreateTransactionResponse{
		SenderBalance:   receipt.SenderBalance.String(),
		ReceiverBalance: receipt.ReceiverBalance.String(),
		Transaction:     models.NewTransactionResponse(receipt.Transaction),
	}

	return commons.SuccessResponse("Transaction completed", response), nil
}

func accountLookupFailure(err error) (commons.Response[models.CreateTransactionResponse], error) {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return commons.ErrorResponse[models.CreateTransactionResponse](domain.ErrAccountNotFound.Error()), domain.ErrAccountNotFound
	}
	logger.Error("transfer service account lookup failed", err, nil)
	return commons.ErrorResponse[models.CreateTransactionResponse]("Transaction failed", "Unable to process transaction right now"), err
}
