// Package storetest is the behavioural contract every domain.Store backend
// must satisfy. Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Factory returns an empty store. Releasing it is the factory's job.
type Factory func(t *testing.T) domain.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("UsersRoundTrip", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("AccountsLifecycle", func(t *testing.T) { testAccounts(t, newStore(t)) })
	t.Run("TransferMovesFunds", func(t *testing.T) { testTransferMovesFunds(t, newStore(t)) })
	t.Run("RejectionsLeaveStateUntouched", func(t *testing.T) { testRejections(t, newStore(t)) })
	t.Run("CreditToInactiveDestination", func(t *testing.T) { testCreditToInactiveDestination(t, newStore(t)) })
	t.Run("AtomicUnderFailure", func(t *testing.T) { testAtomicUnderFailure(t, newStore(t)) })
	t.Run("TransientConflictsAreRetried", func(t *testing.T) { testTransientRetry(t, newStore(t)) })
	t.Run("ConcurrentDisjointPairs", func(t *testing.T) { testConcurrentDisjointPairs(t, newStore(t)) })
	t.Run("ContendedSource", func(t *testing.T) { testContendedSource(t, newStore(t)) })
	t.Run("OpposingTransfers", func(t *testing.T) { testOpposingTransfers(t, newStore(t)) })
	t.Run("HistoryNewestFirst", func(t *testing.T) { testHistoryOrder(t, newStore(t)) })
	t.Run("RecipientLookupIsAnchored", func(t *testing.T) { testRecipientLookup(t, newStore(t)) })
	t.Run("ReadsAreIdempotent", func(t *testing.T) { testIdempotentReads(t, newStore(t)) })
}

func newEngine(store domain.TransferStore, accounts domain.AccountRepository, users domain.UserRepository) *services.TransferService {
	return services.NewTransferService(store, accounts, users, services.TransferOptions{
		MaxAttempts:    3,
		AttemptTimeout: 10 * time.Second,
		RetryBackoff:   time.Millisecond,
	})
}

func engineFor(store domain.Store) *services.TransferService {
	return newEngine(store, store.Accounts(), store.Users())
}

func seedAccount(t *testing.T, store domain.Store, email string, balance domain.Money, status domain.AccountStatus) domain.Account {
	t.Helper()
	ctx := context.Background()

	user, err := store.Users().Create(ctx, domain.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PhoneNumber:  "0521234567",
		PasswordHash: "hash",
		IsVerified:   true,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}

	account, err := store.Accounts().Create(ctx, domain.Account{
		UserID:  user.ID,
		Balance: balance,
		Status:  status,
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", email, err)
	}
	return account
}

func balanceOf(t *testing.T, store domain.Store, accountID string) domain.Money {
	t.Helper()
	account, err := store.Accounts().GetByID(context.Background(), accountID)
	if err != nil {
		t.Fatalf("get account %s: %v", accountID, err)
	}
	return account.Balance
}

func historyOf(t *testing.T, store domain.Store, email string) []domain.Transaction {
	t.Helper()
	txns, err := store.Transactions().FindByParticipant(context.Background(), email)
	if err != nil {
		t.Fatalf("find transactions for %s: %v", email, err)
	}
	return txns
}

func testUsers(t *testing.T, store domain.Store) {
	ctx := context.Background()
	token := "verify-" + uuid.NewString()
	expires := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Millisecond)

	created, err := store.Users().Create(ctx, domain.User{
		FirstName:             "Ada",
		LastName:              "Lovelace",
		Email:                 "Ada@Example.com",
		PhoneNumber:           "0521234567",
		PasswordHash:          "hash",
		VerificationToken:     &token,
		VerificationExpiresAt: &expires,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated user id")
	}

	if _, err := store.Users().Create(ctx, domain.User{
		FirstName:    "Ada",
		LastName:     "Again",
		Email:        "ada@example.com",
		PhoneNumber:  "0521234567",
		PasswordHash: "hash",
	}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	byEmail, err := store.Users().GetByEmail(ctx, " ADA@example.com ")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, byEmail.ID)
	}

	byToken, err := store.Users().GetByVerificationToken(ctx, token)
	if err != nil {
		t.Fatalf("get by verification token: %v", err)
	}
	if byToken.VerificationExpiresAt == nil || !byToken.VerificationExpiresAt.Equal(expires) {
		t.Fatalf("expected expiry %s, got %v", expires, byToken.VerificationExpiresAt)
	}

	byToken.IsVerified = true
	byToken.VerificationToken = nil
	byToken.VerificationExpiresAt = nil
	resetToken := "reset-" + uuid.NewString()
	byToken.ResetPasswordToken = &resetToken
	updated, err := store.Users().Update(ctx, byToken)
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if !updated.IsVerified || updated.VerificationToken != nil {
		t.Fatalf("expected verified user without token, got %+v", updated)
	}

	if _, err := store.Users().GetByVerificationToken(ctx, token); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected cleared token to miss, got %v", err)
	}
	if got, err := store.Users().GetByResetToken(ctx, resetToken); err != nil || got.ID != created.ID {
		t.Fatalf("expected reset token lookup to hit, got %v", err)
	}

	email, err := store.Users().ResolveEmail(ctx, created.ID)
	if err != nil || email != "ada@example.com" {
		t.Fatalf("expected normalised email, got %q (%v)", email, err)
	}
	if _, err := store.Users().ResolveEmail(ctx, uuid.NewString()); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := store.Users().GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for malformed id, got %v", err)
	}
}

func testAccounts(t *testing.T, store domain.Store) {
	ctx := context.Background()
	account := seedAccount(t, store, "owner@example.com", domain.MoneyFromMajor(250), domain.AccountStatusPending)

	byUser, err := store.Accounts().GetByUserID(ctx, account.UserID)
	if err != nil {
		t.Fatalf("get by user id: %v", err)
	}
	if byUser.ID != account.ID || byUser.Balance != domain.MoneyFromMajor(250) {
		t.Fatalf("unexpected account %+v", byUser)
	}

	activated, err := store.Accounts().UpdateStatus(ctx, account.ID, domain.AccountStatusActive)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if activated.Status != domain.AccountStatusActive {
		t.Fatalf("expected ACTIVE, got %s", activated.Status)
	}

	if _, err := store.Accounts().GetByID(ctx, uuid.NewString()); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := store.Accounts().UpdateStatus(ctx, uuid.NewString(), domain.AccountStatusBlocked); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func testTransferMovesFunds(t *testing.T, store domain.Store) {
	ctx := context.Background()
	alice := seedAccount(t, store, "alice@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)
	bob := seedAccount(t, store, "bob@example.com", domain.MoneyFromMajor(50), domain.AccountStatusActive)

	receipt, err := engineFor(store).Execute(ctx, alice.ID, bob.ID, 3050, "  rent  ")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	txn := receipt.Transaction
	if txn.ID <= 0 || txn.RowID == "" {
		t.Fatalf("expected issued ids, got %+v", txn)
	}
	if txn.FromEmail != "alice@example.com" || txn.ToEmail != "bob@example.com" {
		t.Fatalf("unexpected participants %+v", txn)
	}
	if txn.Amount != 3050 || txn.Status != domain.TransactionStatusCompleted || txn.Description != "rent" {
		t.Fatalf("unexpected transaction %+v", txn)
	}
	if receipt.SenderBalance != 6950 || receipt.ReceiverBalance != 8050 {
		t.Fatalf("unexpected receipt balances %s / %s", receipt.SenderBalance, receipt.ReceiverBalance)
	}

	if got := balanceOf(t, store, alice.ID); got != 6950 {
		t.Fatalf("expected alice 69.50, got %s", got)
	}
	if got := balanceOf(t, store, bob.ID); got != 8050 {
		t.Fatalf("expected bob 80.50, got %s", got)
	}

	byNumber, err := store.Transactions().FindByID(ctx, strconv.FormatInt(txn.ID, 10))
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	byRow, err := store.Transactions().FindByID(ctx, txn.RowID)
	if err != nil {
		t.Fatalf("find by row id: %v", err)
	}
	if byNumber.RowID != txn.RowID || byRow.ID != txn.ID {
		t.Fatalf("lookups disagree: %+v vs %+v", byNumber, byRow)
	}

	if _, err := store.Transactions().FindByID(ctx, "999999999"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := store.Transactions().FindByID(ctx, "nope"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	if got := historyOf(t, store, "bob@example.com"); len(got) != 1 || got[0].ID != txn.ID {
		t.Fatalf("expected one row for bob, got %+v", got)
	}
}

func testRejections(t *testing.T, store domain.Store) {
	ctx := context.Background()
	engine := engineFor(store)

	active := seedAccount(t, store, "active@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)
	pending := seedAccount(t, store, "pending@example.com", domain.MoneyFromMajor(100), domain.AccountStatusPending)
	blocked := seedAccount(t, store, "blocked@example.com", domain.MoneyFromMajor(100), domain.AccountStatusBlocked)
	other := seedAccount(t, store, "other@example.com", domain.MoneyFromMajor(10), domain.AccountStatusActive)

	tests := []struct {
		name   string
		from   string
		to     string
		amount domain.Money
		desc   string
		want   error
	}{
		{name: "zero amount", from: active.ID, to: other.ID, amount: 0, want: domain.ErrInvalidAmount},
		{name: "negative amount", from: active.ID, to: other.ID, amount: -5, want: domain.ErrInvalidAmount},
		{name: "self transfer", from: active.ID, to: active.ID, amount: 100, want: domain.ErrSelfTransfer},
		{name: "self transfer without hyphens", from: active.ID, to: strings.ReplaceAll(active.ID, "-", ""), amount: 100, want: domain.ErrSelfTransfer},
		{name: "self transfer braced", from: "{" + active.ID + "}", to: active.ID, amount: 100, want: domain.ErrSelfTransfer},
		{name: "self transfer upper case", from: active.ID, to: strings.ToUpper(active.ID), amount: 100, want: domain.ErrSelfTransfer},
		{name: "description too long", from: active.ID, to: other.ID, amount: 100, desc: strings.Repeat("é", domain.MaxDescriptionLength+1), want: domain.ErrDescriptionTooLong},
		{name: "unknown source", from: uuid.NewString(), to: other.ID, amount: 100, want: domain.ErrAccountNotFound},
		{name: "unknown destination", from: active.ID, to: uuid.NewString(), amount: 100, want: domain.ErrAccountNotFound},
		{name: "malformed id", from: "not-an-id", to: other.ID, amount: 100, want: domain.ErrAccountNotFound},
		{name: "pending source", from: pending.ID, to: other.ID, amount: 100, want: domain.ErrSourceNotActive},
		{name: "blocked source", from: blocked.ID, to: other.ID, amount: 100, want: domain.ErrSourceNotActive},
		{name: "insufficient funds", from: other.ID, to: active.ID, amount: domain.MoneyFromMajor(10) + 1, want: domain.ErrInsufficientFunds},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Transfer(ctx, tc.from, tc.to, tc.amount, tc.desc)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !domain.IsTransferRejection(err) {
				t.Fatalf("expected a rejection, got %v", err)
			}
		})
	}

	if _, err := engine.Transfer(ctx, active.ID, active.ID, 100, ""); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected self transfer to be InvalidAmount-class, got %v", err)
	}

	for _, account := range []domain.Account{active, pending, blocked, other} {
		if got := balanceOf(t, store, account.ID); got != account.Balance {
			t.Fatalf("balance of %s changed: %s -> %s", account.ID, account.Balance, got)
		}
	}
	if got := historyOf(t, store, "active@example.com"); len(got) != 0 {
		t.Fatalf("expected no ledger rows, got %d", len(got))
	}
	if got := historyOf(t, store, "other@example.com"); len(got) != 0 {
		t.Fatalf("expected no ledger rows, got %d", len(got))
	}
}

func testCreditToInactiveDestination(t *testing.T, store domain.Store) {
	source := seedAccount(t, store, "payer@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)
	pending := seedAccount(t, store, "newcomer@example.com", domain.MoneyFromMajor(100), domain.AccountStatusPending)

	if _, err := engineFor(store).Transfer(context.Background(), source.ID, pending.ID, domain.MoneyFromMajor(1), ""); err != nil {
		t.Fatalf("expected destination status not to gate credits, got %v", err)
	}
	if got := balanceOf(t, store, pending.ID); got != domain.MoneyFromMajor(101) {
		t.Fatalf("expected 101.00, got %s", got)
	}
}

var errInjected = errors.New("injected ledger failure")

// faultyStore wraps a backend and lets tests interfere with each unit.
type faultyStore struct {
	domain.Store
	appendErr func(attempt int64) error
	attempts  atomic.Int64
}

func (s *faultyStore) ExecTransfer(ctx context.Context, fn func(ctx context.Context, tx domain.TransferTx) error) error {
	attempt := s.attempts.Add(1)
	return s.Store.ExecTransfer(ctx, func(ctx context.Context, tx domain.TransferTx) error {
		return fn(ctx, &faultyTx{TransferTx: tx, err: s.appendErr(attempt)})
	})
}

type faultyTx struct {
	domain.TransferTx
	err error
}

func (t *faultyTx) AppendTransaction(ctx context.Context, txn domain.Transaction) (domain.Transaction, error) {
	if t.err != nil {
		return domain.Transaction{}, t.err
	}
	return t.TransferTx.AppendTransaction(ctx, txn)
}

func testAtomicUnderFailure(t *testing.T, store domain.Store) {
	from := seedAccount(t, store, "sender@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)
	to := seedAccount(t, store, "receiver@example.com", domain.MoneyFromMajor(20), domain.AccountStatusActive)

	faulty := &faultyStore{Store: store, appendErr: func(int64) error { return errInjected }}
	engine := newEngine(faulty, store.Accounts(), store.Users())

	_, err := engine.Transfer(context.Background(), from.ID, to.ID, domain.MoneyFromMajor(40), "")
	if !errors.Is(err, domain.ErrStorageFault) {
		t.Fatalf("expected ErrStorageFault, got %v", err)
	}
	if faulty.attempts.Load() != 1 {
		t.Fatalf("expected a single attempt for a non-transient fault, got %d", faulty.attempts.Load())
	}

	if got := balanceOf(t, store, from.ID); got != domain.MoneyFromMajor(100) {
		t.Fatalf("debit leaked: %s", got)
	}
	if got := balanceOf(t, store, to.ID); got != domain.MoneyFromMajor(20) {
		t.Fatalf("credit leaked: %s", got)
	}
	if got := historyOf(t, store, "sender@example.com"); len(got) != 0 {
		t.Fatalf("expected no ledger rows, got %d", len(got))
	}
}

func testTransientRetry(t *testing.T, store domain.Store) {
	from := seedAccount(t, store, "retry-from@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)
	to := seedAccount(t, store, "retry-to@example.com", domain.MoneyFromMajor(0), domain.AccountStatusActive)

	conflict := fmt.Errorf("%w: simulated deadlock", domain.ErrTransientStoreConflict)

	flaky := &faultyStore{Store: store, appendErr: func(attempt int64) error {
		if attempt < 3 {
			return conflict
		}
		return nil
	}}
	if _, err := newEngine(flaky, store.Accounts(), store.Users()).Transfer(context.Background(), from.ID, to.ID, domain.MoneyFromMajor(10), ""); err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if got := historyOf(t, store, "retry-to@example.com"); len(got) != 1 {
		t.Fatalf("expected exactly one ledger row, got %d", len(got))
	}

	stuck := &faultyStore{Store: store, appendErr: func(int64) error { return conflict }}
	_, err := newEngine(stuck, store.Accounts(), store.Users()).Transfer(context.Background(), from.ID, to.ID, domain.MoneyFromMajor(10), "")
	if !errors.Is(err, domain.ErrStorageFault) {
		t.Fatalf("expected ErrStorageFault after retries, got %v", err)
	}
	if stuck.attempts.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", stuck.attempts.Load())
	}
	if got := balanceOf(t, store, from.ID); got != domain.MoneyFromMajor(90) {
		t.Fatalf("expected only the first transfer to apply, got %s", got)
	}
}

func testConcurrentDisjointPairs(t *testing.T, store domain.Store) {
	const pairs = 50
	engine := engineFor(store)

	sources := make([]domain.Account, pairs)
	destinations := make([]domain.Account, pairs)
	for i := 0; i < pairs; i++ {
		sources[i] = seedAccount(t, store, fmt.Sprintf("src%02d@example.com", i), domain.MoneyFromMajor(100), domain.AccountStatusActive)
		destinations[i] = seedAccount(t, store, fmt.Sprintf("dst%02d@example.com", i), domain.MoneyFromMajor(100), domain.AccountStatusActive)
	}

	var g errgroup.Group
	for i := 0; i < pairs; i++ {
		for j := 0; j < 2; j++ {
			from, to := sources[i].ID, destinations[i].ID
			g.Go(func() error {
				_, err := engine.Transfer(context.Background(), from, to, domain.MoneyFromMajor(10), "")
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent transfers: %v", err)
	}

	var total domain.Money
	for i := 0; i < pairs; i++ {
		src := balanceOf(t, store, sources[i].ID)
		dst := balanceOf(t, store, destinations[i].ID)
		if src != domain.MoneyFromMajor(80) || dst != domain.MoneyFromMajor(120) {
			t.Fatalf("pair %d: expected 80/120, got %s/%s", i, src, dst)
		}
		total += src + dst
		if got := historyOf(t, store, fmt.Sprintf("src%02d@example.com", i)); len(got) != 2 {
			t.Fatalf("pair %d: expected 2 ledger rows, got %d", i, len(got))
		}
	}
	if total != domain.MoneyFromMajor(200*pairs) {
		t.Fatalf("money not conserved: %s", total)
	}
}

func testContendedSource(t *testing.T, store domain.Store) {
	const workers = 20
	engine := engineFor(store)

	source := seedAccount(t, store, "hot@example.com", domain.MoneyFromMajor(10), domain.AccountStatusActive)
	sink := seedAccount(t, store, "sink@example.com", 0, domain.AccountStatusActive)
	amount := domain.MoneyFromMajor(3)

	var succeeded, rejected atomic.Int64
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			_, err := engine.Transfer(context.Background(), source.ID, sink.ID, amount, "")
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrInsufficientFunds):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("contended transfers: %v", err)
	}

	want := int64(source.Balance / amount)
	if succeeded.Load() != want {
		t.Fatalf("expected %d successes, got %d", want, succeeded.Load())
	}
	if rejected.Load() != workers-want {
		t.Fatalf("expected %d rejections, got %d", workers-want, rejected.Load())
	}

	if got := balanceOf(t, store, source.ID); got != source.Balance-domain.Money(want)*amount {
		t.Fatalf("unexpected source balance %s", got)
	}
	if got := balanceOf(t, store, sink.ID); got != domain.Money(want)*amount {
		t.Fatalf("unexpected sink balance %s", got)
	}
	if got := historyOf(t, store, "hot@example.com"); int64(len(got)) != want {
		t.Fatalf("expected %d ledger rows, got %d", want, len(got))
	}
}

func testOpposingTransfers(t *testing.T, store domain.Store) {
	const rounds = 20
	engine := engineFor(store)

	a := seedAccount(t, store, "east@example.com", domain.MoneyFromMajor(500), domain.AccountStatusActive)
	b := seedAccount(t, store, "west@example.com", domain.MoneyFromMajor(500), domain.AccountStatusActive)

	var g errgroup.Group
	for i := 0; i < rounds; i++ {
		g.Go(func() error {
			_, err := engine.Transfer(context.Background(), a.ID, b.ID, domain.MoneyFromMajor(5), "")
			return err
		})
		g.Go(func() error {
			_, err := engine.Transfer(context.Background(), b.ID, a.ID, domain.MoneyFromMajor(3), "")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("opposing transfers: %v", err)
	}

	gotA := balanceOf(t, store, a.ID)
	gotB := balanceOf(t, store, b.ID)
	if gotA != domain.MoneyFromMajor(500-2*rounds) || gotB != domain.MoneyFromMajor(500+2*rounds) {
		t.Fatalf("unexpected balances %s / %s", gotA, gotB)
	}
	if gotA+gotB != domain.MoneyFromMajor(1000) {
		t.Fatalf("money not conserved: %s", gotA+gotB)
	}
}

func testHistoryOrder(t *testing.T, store domain.Store) {
	engine := engineFor(store)
	me := seedAccount(t, store, "me@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)
	friend := seedAccount(t, store, "friend@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)

	for i := 0; i < 3; i++ {
		if _, err := engine.Transfer(context.Background(), me.ID, friend.ID, domain.MoneyFromMajor(1), ""); err != nil {
			t.Fatalf("outgoing transfer: %v", err)
		}
		if _, err := engine.Transfer(context.Background(), friend.ID, me.ID, domain.MoneyFromMajor(2), ""); err != nil {
			t.Fatalf("incoming transfer: %v", err)
		}
	}

	history := historyOf(t, store, "ME@example.com")
	if len(history) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i-1].ID <= history[i].ID {
			t.Fatalf("history not newest first: %d before %d", history[i-1].ID, history[i].ID)
		}
	}
}

func testRecipientLookup(t *testing.T, store domain.Store) {
	ctx := context.Background()
	engine := engineFor(store)

	sender := seedAccount(t, store, "sender@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)
	dan := seedAccount(t, store, "dan@example.com", 0, domain.AccountStatusActive)
	daniela := seedAccount(t, store, "daniela@example.com", 0, domain.AccountStatusActive)

	first, err := engine.Transfer(ctx, sender.ID, dan.ID, domain.MoneyFromMajor(1), "first")
	if err != nil {
		t.Fatalf("transfer to dan: %v", err)
	}
	second, err := engine.Transfer(ctx, sender.ID, dan.ID, domain.MoneyFromMajor(2), "second")
	if err != nil {
		t.Fatalf("transfer to dan: %v", err)
	}
	toDaniela, err := engine.Transfer(ctx, sender.ID, daniela.ID, domain.MoneyFromMajor(3), "")
	if err != nil {
		t.Fatalf("transfer to daniela: %v", err)
	}

	got, err := store.Transactions().FindLatestSentTo(ctx, "sender@example.com", "dan")
	if err != nil {
		t.Fatalf("find latest sent to dan: %v", err)
	}
	if got.ID != second.ID {
		t.Fatalf("expected latest transfer %d to dan, got %d (first was %d)", second.ID, got.ID, first.ID)
	}

	got, err = store.Transactions().FindLatestSentTo(ctx, "sender@example.com", "DANIELA")
	if err != nil || got.ID != toDaniela.ID {
		t.Fatalf("expected case-insensitive match on daniela, got %+v (%v)", got, err)
	}

	otherDan := seedAccount(t, store, "dan@y.com", 0, domain.AccountStatusActive)
	toOtherDan, err := engine.Transfer(ctx, sender.ID, otherDan.ID, domain.MoneyFromMajor(4), "")
	if err != nil {
		t.Fatalf("transfer to dan@y.com: %v", err)
	}
	got, err = store.Transactions().FindLatestSentTo(ctx, "sender@example.com", "dan")
	if err != nil || got.ID != toOtherDan.ID || got.ToEmail != "dan@y.com" {
		t.Fatalf("expected local part to match across domains, got %+v (%v)", got, err)
	}

	for _, name := range []string{"da", "dan@", "an", "%", "d_n", "example.com"} {
		if _, err := store.Transactions().FindLatestSentTo(ctx, "sender@example.com", name); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("expected %q not to match, got %v", name, err)
		}
	}

	if _, err := store.Transactions().FindLatestSentTo(ctx, "dan@example.com", "sender"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected only outgoing rows to match, got %v", err)
	}
}

func testIdempotentReads(t *testing.T, store domain.Store) {
	ctx := context.Background()
	a := seedAccount(t, store, "reader@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)
	b := seedAccount(t, store, "writer@example.com", domain.MoneyFromMajor(100), domain.AccountStatusActive)

	if _, err := engineFor(store).Transfer(ctx, a.ID, b.ID, domain.MoneyFromMajor(7), "once"); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	firstAccount, err := store.Accounts().GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	secondAccount, err := store.Accounts().GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if !reflect.DeepEqual(firstAccount, secondAccount) {
		t.Fatalf("account reads differ: %+v vs %+v", firstAccount, secondAccount)
	}

	firstHistory := historyOf(t, store, "reader@example.com")
	secondHistory := historyOf(t, store, "reader@example.com")
	if !reflect.DeepEqual(firstHistory, secondHistory) {
		t.Fatalf("history reads differ")
	}
	if got := balanceOf(t, store, b.ID); got != domain.MoneyFromMajor(107) {
		t.Fatalf("reads changed state: %s", got)
	}
}
