package domain

import "context"

// AccountRepository is the read/lifecycle side of the account store. Balances
// are only mutated inside TransferStore.ExecTransfer.
type AccountRepository interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	GetByUserID(ctx context.Context, userID string) (Account, error)
	UpdateStatus(ctx context.Context, id string, status AccountStatus) (Account, error)
}
