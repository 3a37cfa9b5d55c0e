package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
)

type TransactionRepository struct {
	db *sql.DB
}

const transactionColumns = `id, row_id, from_email, to_email, amount, status, description, created_at`

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) FindByParticipant(ctx context.Context, email string) ([]domain.Transaction, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	logger.Info("transaction repository find by participant", logger.Fields{
		"email": email,
	})

	const query = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE from_email = $1 OR to_email = $1
ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		logger.Error("transaction repository find by participant failed", err, logger.Fields{
			"email": email,
		})
		return nil, fmt.Errorf("find transactions by participant: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var txn domain.Transaction
		if err := scanTransaction(rows, &txn); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	logger.Info("transaction repository find by participant success", logger.Fields{
		"email": email,
		"count": len(transactions),
	})

	return transactions, nil
}

// FindByID accepts the public numeric id or the row uuid.
func (r *TransactionRepository) FindByID(ctx context.Context, id string) (domain.Transaction, error) {
	id = strings.TrimSpace(id)

	if number, err := strconv.ParseInt(id, 10, 64); err == nil {
		return r.getOne(ctx, "find by id", `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, number)
	}
	if validUUID(id) {
		return r.getOne(ctx, "find by row id", `SELECT `+transactionColumns+` FROM transactions WHERE row_id = $1`, id)
	}
	return domain.Transaction{}, domain.ErrRecordNotFound
}

// FindLatestSentTo compares the whole local part of to_email, so "dan" does
// not match "daniela@...".
func (r *TransactionRepository) FindLatestSentTo(ctx context.Context, email string, recipientLocalPart string) (domain.Transaction, error) {
	recipientLocalPart = strings.TrimSpace(recipientLocalPart)
	if recipientLocalPart == "" {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}

	const query = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE from_email = $1
  AND status = 'COMPLETED'
  AND lower(split_part(to_email, '@', 1)) = lower($2)
ORDER BY created_at DESC, id DESC
LIMIT 1`

	return r.getOne(ctx, "find latest sent to", query, strings.ToLower(strings.TrimSpace(email)), recipientLocalPart)
}

func (r *TransactionRepository) getOne(ctx context.Context, op string, query string, args ...any) (domain.Transaction, error) {
	var txn domain.Transaction
	if err := scanTransaction(r.db.QueryRowContext(ctx, query, args...), &txn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("transaction repository record not found", logger.Fields{
				"operation": op,
			})
			return domain.Transaction{}, domain.ErrRecordNotFound
		}
		logger.Error("transaction repository "+op+" failed", err, nil)
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", op, err)
	}
	return txn, nil
}

func scanTransaction(row rowScanner, txn *domain.Transaction) error {
	var amount int64
	var status string
	if err := row.Scan(
		&txn.ID,
		&txn.RowID,
		&txn.FromEmail,
		&txn.ToEmail,
		&amount,
		&status,
		&txn.Description,
		&txn.CreatedAt,
	); err != nil {
		return err
	}
	txn.Amount = domain.Money(amount)
	txn.Status = domain.TransactionStatus(status)
	return nil
}
