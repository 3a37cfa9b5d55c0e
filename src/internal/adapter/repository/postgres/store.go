package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	_ "github.com/lib/pq"
)

// Store is the Postgres-backed domain.Store.
type Store struct {
	db           *sql.DB
	accounts     *AccountRepository
	transactions *TransactionRepository
	users        *UserRepository
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxIdleConns(20)
	db.SetMaxOpenConns(30)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(15 * time.Minute)

	return NewStore(db), nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		accounts:     NewAccountRepository(db),
		transactions: NewTransactionRepository(db),
		users:        NewUserRepository(db),
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Accounts() domain.AccountRepository {
	return s.accounts
}

func (s *Store) Transactions() domain.TransactionRepository {
	return s.transactions
}

func (s *Store) Users() domain.UserRepository {
	return s.users
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ExecTransfer runs fn inside one READ COMMITTED transaction. Row locks taken
// by LockAccounts are held until commit or rollback.
func (s *Store) ExecTransfer(ctx context.Context, fn func(ctx context.Context, tx domain.TransferTx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		logger.Error("postgres store begin transfer tx failed", err, nil)
		return classifyError(fmt.Errorf("begin transfer transaction: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, &transferTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("postgres store commit transfer tx failed", err, nil)
		return classifyError(fmt.Errorf("commit transfer transaction: %w", err))
	}

	return nil
}

var _ domain.Store = (*Store)(nil)
