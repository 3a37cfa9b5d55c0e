package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/google/uuid"
)

// Store keeps every record in process memory. Each account has its own lock so
// transfers over disjoint pairs run in parallel; mu guards the maps and is
// always acquired after any account lock.
type Store struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	accounts     map[string]*accountRow
	transactions []domain.Transaction
	nextTxnID    atomic.Int64
	now          func() time.Time
}

type accountRow struct {
	lock    sync.Mutex
	account domain.Account
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]domain.User),
		accounts: make(map[string]*accountRow),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Accounts() domain.AccountRepository {
	return (*accountRepository)(s)
}

func (s *Store) Transactions() domain.TransactionRepository {
	return (*transactionRepository)(s)
}

func (s *Store) Users() domain.UserRepository {
	return (*userRepository)(s)
}

func (s *Store) Close() error {
	return nil
}

// ExecTransfer stages every write and applies them only once fn succeeds.
func (s *Store) ExecTransfer(ctx context.Context, fn func(ctx context.Context, tx domain.TransferTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &transferTx{
		store:  s,
		deltas: make(map[string]domain.Money, 2),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

func (s *Store) row(id string) (*accountRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.accounts[id]
	return row, ok
}

type transferTx struct {
	store    *Store
	locked   []*accountRow
	snapshot map[string]domain.Account
	deltas   map[string]domain.Money
	appended []domain.Transaction
}

func (t *transferTx) LockAccounts(_ context.Context, fromID string, toID string) (domain.Account, domain.Account, error) {
	if t.locked != nil {
		return domain.Account{}, domain.Account{}, errAlreadyLocked
	}

	fromRow, okFrom := t.store.row(fromID)
	toRow, okTo := t.store.row(toID)
	if !okFrom || !okTo {
		return domain.Account{}, domain.Account{}, domain.ErrAccountNotFound
	}

	ids := []string{fromID, toID}
	sort.Strings(ids)
	rows := map[string]*accountRow{fromID: fromRow, toID: toRow}

	t.locked = make([]*accountRow, 0, 2)
	for i, id := range ids {
		if i > 0 && id == ids[i-1] {
			continue
		}
		row := rows[id]
		row.lock.Lock()
		t.locked = append(t.locked, row)
	}

	t.store.mu.RLock()
	from := fromRow.account
	to := toRow.account
	t.store.mu.RUnlock()

	t.snapshot = map[string]domain.Account{from.ID: from, to.ID: to}
	return from, to, nil
}

func (t *transferTx) Debit(_ context.Context, accountID string, amount domain.Money) error {
	account, ok := t.snapshot[accountID]
	if !ok {
		return errNotLocked
	}
	if account.Balance+t.deltas[accountID] < amount {
		return domain.ErrInsufficientFunds
	}
	t.deltas[accountID] -= amount
	return nil
}

func (t *transferTx) Credit(_ context.Context, accountID string, amount domain.Money) error {
	account, ok := t.snapshot[accountID]
	if !ok {
		return errNotLocked
	}
	if account.Balance+t.deltas[accountID] > math.MaxInt64-amount {
		return fmt.Errorf("%w: balance of %s would overflow", domain.ErrStorageFault, accountID)
	}
	t.deltas[accountID] += amount
	return nil
}

func (t *transferTx) AppendTransaction(_ context.Context, txn domain.Transaction) (domain.Transaction, error) {
	if txn.RowID == "" {
		txn.RowID = uuid.NewString()
	}
	txn.ID = t.store.nextTxnID.Add(1)
	txn.CreatedAt = t.store.now()
	t.appended = append(t.appended, txn)
	return txn, nil
}

func (t *transferTx) ResolveEmail(ctx context.Context, userID string) (string, error) {
	return t.store.Users().ResolveEmail(ctx, userID)
}

func (t *transferTx) commit() {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	now := t.store.now()
	for id, delta := range t.deltas {
		row := t.store.accounts[id]
		row.account.Balance += delta
		row.account.UpdatedAt = now
	}
	t.store.transactions = append(t.store.transactions, t.appended...)
}

func (t *transferTx) release() {
	for i := len(t.locked) - 1; i >= 0; i-- {
		t.locked[i].lock.Unlock()
	}
	t.locked = nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.Store = (*Store)(nil)
