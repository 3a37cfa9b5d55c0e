package domain

import "context"

// TransferStore runs fn as one atomic, isolated unit of work. If fn returns an
// error nothing it did is visible afterwards.
type TransferStore interface {
	ExecTransfer(ctx context.Context, fn func(ctx context.Context, tx TransferTx) error) error
}

// TransferTx is the view of the store inside a transfer unit.
//
// LockAccounts must be called once, before any other method, and holds both
// rows exclusively until the unit ends. A missing account yields
// ErrAccountNotFound.
type TransferTx interface {
	UserDirectory
	LockAccounts(ctx context.Context, fromID string, toID string) (Account, Account, error)
	Debit(ctx context.Context, accountID string, amount Money) error
	Credit(ctx context.Context, accountID string, amount Money) error
	AppendTransaction(ctx context.Context, txn Transaction) (Transaction, error)
}

// Store bundles every port a storage backend provides.
type Store interface {
	TransferStore
	Accounts() AccountRepository
	Transactions() TransactionRepository
	Users() UserRepository
	Close() error
}
