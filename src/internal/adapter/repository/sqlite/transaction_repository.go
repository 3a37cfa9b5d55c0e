package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/domain"
)

type transactionRepository struct {
	store *Store
}

const transactionColumns = `id, row_id, from_email, to_email, amount, status, description, created_at`

func (r *transactionRepository) FindByParticipant(ctx context.Context, email string) ([]domain.Transaction, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	rows, err := r.store.db.QueryContext(ctx, `
SELECT `+transactionColumns+`
FROM transactions
WHERE from_email = ? OR to_email = ?
ORDER BY created_at DESC, id DESC`, email, email)
	if err != nil {
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
	return transactions, nil
}

func (r *transactionRepository) FindByID(ctx context.Context, id string) (domain.Transaction, error) {
	id = strings.TrimSpace(id)
	if number, err := strconv.ParseInt(id, 10, 64); err == nil {
		return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, number)
	}
	return r.getOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE row_id = ? COLLATE NOCASE`, id)
}

// FindLatestSentTo compares the whole local part of to_email, so "dan" does
// not match "daniela@...".
func (r *transactionRepository) FindLatestSentTo(ctx context.Context, email string, recipientLocalPart string) (domain.Transaction, error) {
	recipientLocalPart = strings.TrimSpace(recipientLocalPart)
	if recipientLocalPart == "" {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}

	return r.getOne(ctx, `
SELECT `+transactionColumns+`
FROM transactions
WHERE from_email = ?
  AND status = 'COMPLETED'
  AND instr(to_email, '@') > 0
  AND lower(substr(to_email, 1, instr(to_email, '@') - 1)) = lower(?)
ORDER BY created_at DESC, id DESC
LIMIT 1`, strings.ToLower(strings.TrimSpace(email)), recipientLocalPart)
}

func (r *transactionRepository) getOne(ctx context.Context, query string, args ...any) (domain.Transaction, error) {
	var txn domain.Transaction
	if err := scanTransaction(r.store.db.QueryRowContext(ctx, query, args...), &txn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrRecordNotFound
		}
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return txn, nil
}

func scanTransaction(row rowScanner, txn *domain.Transaction) error {
	var (
		amount    int64
		status    string
		createdAt int64
	)
	if err := row.Scan(
		&txn.ID,
		&txn.RowID,
		&txn.FromEmail,
		&txn.ToEmail,
		&amount,
		&status,
		&txn.Description,
		&createdAt,
	); err != nil {
		return err
	}
	txn.Amount = domain.Money(amount)
	txn.Status = domain.TransactionStatus(status)
	txn.CreatedAt = fromMillis(createdAt)
	return nil
}
