package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type transferTx struct {
	tx *sql.Tx
}

// LockAccounts takes FOR UPDATE locks on both rows in id order so opposing
// transfers over the same pair cannot deadlock.
func (t *transferTx) LockAccounts(ctx context.Context, fromID string, toID string) (domain.Account, domain.Account, error) {
	if !validUUID(fromID) || !validUUID(toID) {
		return domain.Account{}, domain.Account{}, domain.ErrAccountNotFound
	}

	const query = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = ANY($1::uuid[])
ORDER BY id
FOR UPDATE`

	rows, err := t.tx.QueryContext(ctx, query, pq.Array([]string{fromID, toID}))
	if err != nil {
		return domain.Account{}, domain.Account{}, classifyError(fmt.Errorf("lock accounts: %w", err))
	}
	defer rows.Close()

	locked := make(map[string]domain.Account, 2)
	for rows.Next() {
		var account domain.Account
		if err := scanAccount(rows, &account); err != nil {
			return domain.Account{}, domain.Account{}, classifyError(fmt.Errorf("scan locked account: %w", err))
		}
		locked[canonicalUUID(account.ID)] = account
	}
	if err := rows.Err(); err != nil {
		return domain.Account{}, domain.Account{}, classifyError(fmt.Errorf("lock accounts: %w", err))
	}

	from, okFrom := locked[canonicalUUID(fromID)]
	to, okTo := locked[canonicalUUID(toID)]
	if !okFrom || !okTo {
		return domain.Account{}, domain.Account{}, domain.ErrAccountNotFound
	}
	return from, to, nil
}

func (t *transferTx) Debit(ctx context.Context, accountID string, amount domain.Money) error {
	const query = `
UPDATE accounts
SET balance = balance - $2,
    updated_at = NOW()
WHERE id = $1
  AND balance >= $2`

	if err := execRequiredRows(ctx, t.tx, query, accountID, int64(amount)); err != nil {
		if errors.Is(err, errNoRowsAffected) {
			return domain.ErrInsufficientFunds
		}
		return err
	}
	return nil
}

func (t *transferTx) Credit(ctx context.Context, accountID string, amount domain.Money) error {
	const query = `
UPDATE accounts
SET balance = balance + $2,
    updated_at = NOW()
WHERE id = $1`

	if err := execRequiredRows(ctx, t.tx, query, accountID, int64(amount)); err != nil {
		if errors.Is(err, errNoRowsAffected) {
			return domain.ErrAccountNotFound
		}
		return err
	}
	return nil
}

func (t *transferTx) AppendTransaction(ctx context.Context, txn domain.Transaction) (domain.Transaction, error) {
	if txn.RowID == "" {
		txn.RowID = uuid.NewString()
	}

	const query = `
INSERT INTO transactions (row_id, from_email, to_email, amount, status, description)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`

	if err := t.tx.QueryRowContext(
		ctx,
		query,
		txn.RowID,
		txn.FromEmail,
		txn.ToEmail,
		int64(txn.Amount),
		txn.Status,
		txn.Description,
	).Scan(&txn.ID, &txn.CreatedAt); err != nil {
		return domain.Transaction{}, classifyError(fmt.Errorf("append transaction: %w", err))
	}
	return txn, nil
}

func (t *transferTx) ResolveEmail(ctx context.Context, userID string) (string, error) {
	email, err := resolveEmail(ctx, t.tx, userID)
	if err != nil {
		return "", classifyError(err)
	}
	return email, nil
}

var errNoRowsAffected = errors.New("no rows affected")

func execRequiredRows(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyError(fmt.Errorf("execute transaction statement: %w", err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return errNoRowsAffected
	}
	return nil
}
