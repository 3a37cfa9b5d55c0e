package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/google/uuid"
)

type accountRepository struct {
	store *Store
}

const accountColumns = `id, user_id, balance, status, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := r.store.now()
	account.CreatedAt = now
	account.UpdatedAt = now

	err := r.store.write(func() error {
		_, err := r.store.db.ExecContext(ctx, `
INSERT INTO accounts (id, user_id, balance, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`,
			account.ID,
			account.UserID,
			int64(account.Balance),
			string(account.Status),
			toMillis(now),
			toMillis(now),
		)
		return err
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return r.GetByID(ctx, account.ID)
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID string) (domain.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = ?`, userID)
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error) {
	var rows int64
	err := r.store.write(func() error {
		result, err := r.store.db.ExecContext(ctx,
			`UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?`,
			string(status),
			toMillis(r.store.now()),
			id,
		)
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("update account status: %w", err)
	}
	if rows == 0 {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *accountRepository) getOne(ctx context.Context, query string, args ...any) (domain.Account, error) {
	var account domain.Account
	if err := scanAccount(r.store.db.QueryRowContext(ctx, query, args...), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func scanAccount(row rowScanner, account *domain.Account) error {
	var (
		balance   int64
		status    string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&account.ID, &account.UserID, &balance, &status, &createdAt, &updatedAt); err != nil {
		return err
	}
	account.Balance = domain.Money(balance)
	account.Status = domain.AccountStatus(status)
	account.CreatedAt = fromMillis(createdAt)
	account.UpdatedAt = fromMillis(updatedAt)
	return nil
}
