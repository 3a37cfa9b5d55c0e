package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/usecase/services"
)

func callerIs(email string) userRepoStub {
	return userRepoStub{
		resolveEmailFn: func(context.Context, string) (string, error) { return email, nil },
	}
}

func TestTransactionServiceListSignsRows(t *testing.T) {
	svc := services.NewTransactionService(transactionRepoStub{
		findByParticipantFn: func(context.Context, string) ([]domain.Transaction, error) {
			return []domain.Transaction{
				{ID: 3, FromEmail: "me@example.com", ToEmail: "a@example.com", Amount: 100},
				{ID: 2, FromEmail: "b@example.com", ToEmail: "me@example.com", Amount: 100},
			}, nil
		},
	}, callerIs("me@example.com"))

	resp, err := svc.List(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	rows := *resp.Data
	if len(rows) != 2 || rows[0].Sign != models.SignOutgoing || rows[1].Sign != models.SignIncoming {
		t.Fatalf("unexpected rows %+v", rows)
	}
}

func TestTransactionServiceListUnknownUser(t *testing.T) {
	svc := services.NewTransactionService(transactionRepoStub{}, userRepoStub{})

	if _, err := svc.List(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTransactionServiceGetHidesOtherUsersRows(t *testing.T) {
	svc := services.NewTransactionService(transactionRepoStub{
		findByIDFn: func(_ context.Context, id string) (domain.Transaction, error) {
			if id == "7" {
				return domain.Transaction{ID: 7, FromEmail: "x@example.com", ToEmail: "y@example.com"}, nil
			}
			return domain.Transaction{ID: 8, FromEmail: "x@example.com", ToEmail: "me@example.com"}, nil
		},
	}, callerIs("me@example.com"))

	resp, err := svc.Get(context.Background(), "u-1", "7")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if resp.Message != "Transaction not found" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	resp, err = svc.Get(context.Background(), "u-1", "8")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data.ID != 8 || resp.Data.Sign != models.SignIncoming {
		t.Fatalf("unexpected transaction %+v", resp.Data)
	}
}

func TestTransactionServiceLatestSentTo(t *testing.T) {
	svc := services.NewTransactionService(transactionRepoStub{
		findLatestSentToFn: func(_ context.Context, email string, recipient string) (domain.Transaction, error) {
			if email != "me@example.com" {
				t.Fatalf("expected lookup scoped to caller, got %s", email)
			}
			if recipient != "dan" {
				return domain.Transaction{}, domain.ErrRecordNotFound
			}
			return domain.Transaction{ID: 5, FromEmail: email, ToEmail: "dan@example.com", Amount: 700}, nil
		},
	}, callerIs("me@example.com"))

	resp, err := svc.LatestSentTo(context.Background(), "u-1", " dan ")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data.ID != 5 || resp.Data.Amount != "7.00" || resp.Data.Sign != models.SignOutgoing {
		t.Fatalf("unexpected transaction %+v", resp.Data)
	}

	if _, err := svc.LatestSentTo(context.Background(), "u-1", "daniela"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := svc.LatestSentTo(context.Background(), "u-1", "  "); !errors.Is(err, commons.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
