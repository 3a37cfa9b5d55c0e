package memory

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/google/uuid"
)

type accountRepository Store

func (r *accountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	s := (*Store)(r)
	if account.Balance < 0 {
		return domain.Account{}, errNegativeBalance
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := s.now()
	account.CreatedAt = now
	account.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.ID]; exists {
		return domain.Account{}, errDuplicateAccount
	}
	for _, row := range s.accounts {
		if row.account.UserID == account.UserID {
			return domain.Account{}, errDuplicateAccount
		}
	}

	s.accounts[account.ID] = &accountRow{account: account}
	return account, nil
}

func (r *accountRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return row.account, nil
}

func (r *accountRepository) GetByUserID(_ context.Context, userID string) (domain.Account, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.accounts {
		if row.account.UserID == userID {
			return row.account, nil
		}
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

// UpdateStatus waits for any transfer holding the row.
func (r *accountRepository) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) (domain.Account, error) {
	s := (*Store)(r)
	row, ok := s.row(id)
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	row.lock.Lock()
	defer row.lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	row.account.Status = status
	row.account.UpdatedAt = s.now()
	return row.account, nil
}
