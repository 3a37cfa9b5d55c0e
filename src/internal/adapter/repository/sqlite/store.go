package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/adapter/repository/sqlite/migrations"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed domain.Store. SQLite allows one writer at a
// time, so every write goes through writeMu and transfer units open with
// BEGIN IMMEDIATE.
type Store struct {
	db      *sql.DB
	writeMu sync.Mutex
	now     func() time.Time
}

// Open opens (and migrates) a database file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Store) Accounts() domain.AccountRepository {
	return &accountRepository{store: s}
}

func (s *Store) Transactions() domain.TransactionRepository {
	return &transactionRepository{store: s}
}

func (s *Store) Users() domain.UserRepository {
	return &userRepository{store: s}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ExecTransfer(ctx context.Context, fn func(ctx context.Context, tx domain.TransferTx) error) (err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("sqlite store begin transfer tx failed", err, nil)
		return classifyError(fmt.Errorf("begin transfer transaction: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, &transferTx{tx: tx, now: s.now}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("sqlite store commit transfer tx failed", err, nil)
		return classifyError(fmt.Errorf("commit transfer transaction: %w", err))
	}
	return nil
}

func (s *Store) write(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return fn()
}

type rowScanner interface {
	Scan(dest ...any) error
}

var _ domain.Store = (*Store)(nil)
