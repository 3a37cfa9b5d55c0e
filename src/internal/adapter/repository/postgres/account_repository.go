package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/google/uuid"
)

type AccountRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, user_id, balance, status, created_at, updated_at`

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	logger.Info("account repository create", logger.Fields{
		"accountId": account.ID,
		"userId":    account.UserID,
		"status":    account.Status,
	})

	const query = `
INSERT INTO accounts (id, user_id, balance, status)
VALUES ($1, $2, $3, $4)
RETURNING ` + accountColumns

	var created domain.Account
	if err := scanAccount(r.db.QueryRowContext(ctx, query, account.ID, account.UserID, int64(account.Balance), account.Status), &created); err != nil {
		logger.Error("account repository create failed", err, logger.Fields{
			"userId": account.UserID,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	logger.Info("account repository create success", logger.Fields{
		"accountId": created.ID,
		"userId":    created.UserID,
	})

	return created, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	if !validUUID(id) {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, "get by id", query, id)
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (domain.Account, error) {
	if !validUUID(userID) {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return r.getOne(ctx, "get by user id", query, userID)
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error) {
	if !validUUID(id) {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	logger.Info("account repository update status", logger.Fields{
		"accountId": id,
		"status":    status,
	})

	const query = `
UPDATE accounts
SET status = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns

	return r.getOne(ctx, "update status", query, id, status)
}

func (r *AccountRepository) getOne(ctx context.Context, op string, query string, args ...any) (domain.Account, error) {
	var account domain.Account
	if err := scanAccount(r.db.QueryRowContext(ctx, query, args...), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository record not found", logger.Fields{
				"operation": op,
			})
			return domain.Account{}, domain.ErrRecordNotFound
		}
		logger.Error("account repository "+op+" failed", err, nil)
		return domain.Account{}, fmt.Errorf("account %s: %w", op, err)
	}
	return account, nil
}

func scanAccount(row rowScanner, account *domain.Account) error {
	var balance int64
	var status string
	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&balance,
		&status,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return err
	}
	account.Balance = domain.Money(balance)
	account.Status = domain.AccountStatus(status)
	return nil
}
