package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/google/uuid"
)

type transferTx struct {
	tx  *sql.Tx
	now func() time.Time
}

// LockAccounts reads both rows; the write lock is already held because the
// unit opened with BEGIN IMMEDIATE.
func (t *transferTx) LockAccounts(ctx context.Context, fromID string, toID string) (domain.Account, domain.Account, error) {
	rows, err := t.tx.QueryContext(ctx, `
SELECT `+accountColumns+`
FROM accounts
WHERE id IN (?, ?)
ORDER BY id`, fromID, toID)
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
		locked[account.ID] = account
	}
	if err := rows.Err(); err != nil {
		return domain.Account{}, domain.Account{}, classifyError(fmt.Errorf("lock accounts: %w", err))
	}

	from, okFrom := locked[fromID]
	to, okTo := locked[toID]
	if !okFrom || !okTo {
		return domain.Account{}, domain.Account{}, domain.ErrAccountNotFound
	}
	return from, to, nil
}

func (t *transferTx) Debit(ctx context.Context, accountID string, amount domain.Money) error {
	rows, err := t.exec(ctx, `
UPDATE accounts
SET balance = balance - ?1,
    updated_at = ?2
WHERE id = ?3
  AND balance >= ?1`, int64(amount), toMillis(t.now()), accountID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

func (t *transferTx) Credit(ctx context.Context, accountID string, amount domain.Money) error {
	rows, err := t.exec(ctx, `
UPDATE accounts
SET balance = balance + ?1,
    updated_at = ?2
WHERE id = ?3`, int64(amount), toMillis(t.now()), accountID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (t *transferTx) AppendTransaction(ctx context.Context, txn domain.Transaction) (domain.Transaction, error) {
	if txn.RowID == "" {
		txn.RowID = uuid.NewString()
	}
	txn.CreatedAt = t.now()

	if err := t.tx.QueryRowContext(ctx, `
INSERT INTO transactions (row_id, from_email, to_email, amount, status, description, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id`,
		txn.RowID,
		txn.FromEmail,
		txn.ToEmail,
		int64(txn.Amount),
		string(txn.Status),
		txn.Description,
		toMillis(txn.CreatedAt),
	).Scan(&txn.ID); err != nil {
		return domain.Transaction{}, classifyError(fmt.Errorf("append transaction: %w", err))
	}

	txn.CreatedAt = fromMillis(toMillis(txn.CreatedAt))
	return txn, nil
}

func (t *transferTx) ResolveEmail(ctx context.Context, userID string) (string, error) {
	email, err := resolveEmail(ctx, t.tx, userID)
	if err != nil {
		return "", classifyError(err)
	}
	return email, nil
}

func (t *transferTx) exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classifyError(fmt.Errorf("execute transaction statement: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	return rows, nil
}
