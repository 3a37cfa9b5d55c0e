package memory_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/api-sage/bank-one-one/src/internal/adapter/repository/memory"
	"github.com/api-sage/bank-one-one/src/internal/adapter/repository/storetest"
	"github.com/api-sage/bank-one-one/src/internal/domain"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) domain.Store {
		return memory.NewStore()
	})
}

func TestAccountCreateRejectsSecondAccountForUser(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	if _, err := store.Accounts().Create(ctx, domain.Account{UserID: "u-1", Status: domain.AccountStatusPending}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := store.Accounts().Create(ctx, domain.Account{UserID: "u-1", Status: domain.AccountStatusPending}); err == nil {
		t.Fatal("expected duplicate account for user to be rejected")
	}
}

func TestAccountCreateRejectsNegativeBalance(t *testing.T) {
	store := memory.NewStore()

	_, err := store.Accounts().Create(context.Background(), domain.Account{UserID: "u-1", Balance: -1, Status: domain.AccountStatusActive})
	if err == nil {
		t.Fatal("expected negative balance to be rejected")
	}
}

func TestExecTransferHonoursCancelledContext(t *testing.T) {
	store := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.ExecTransfer(ctx, func(context.Context, domain.TransferTx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("expected unit not to run")
	}
}

func TestCreditRefusesToOverflowBalance(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	from, err := store.Accounts().Create(ctx, domain.Account{UserID: "u-1", Balance: 100, Status: domain.AccountStatusActive})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	to, err := store.Accounts().Create(ctx, domain.Account{UserID: "u-2", Balance: math.MaxInt64 - 10, Status: domain.AccountStatusActive})
	if err != nil {
		t.Fatalf("create destination: %v", err)
	}

	err = store.ExecTransfer(ctx, func(ctx context.Context, tx domain.TransferTx) error {
		if _, _, err := tx.LockAccounts(ctx, from.ID, to.ID); err != nil {
			return err
		}
		if err := tx.Debit(ctx, from.ID, 50); err != nil {
			return err
		}
		return tx.Credit(ctx, to.ID, 50)
	})
	if !errors.Is(err, domain.ErrStorageFault) {
		t.Fatalf("expected ErrStorageFault, got %v", err)
	}

	for _, want := range []domain.Account{from, to} {
		got, err := store.Accounts().GetByID(ctx, want.ID)
		if err != nil {
			t.Fatalf("get account: %v", err)
		}
		if got.Balance != want.Balance {
			t.Fatalf("balance of %s changed: %s -> %s", want.ID, want.Balance, got.Balance)
		}
	}
}
