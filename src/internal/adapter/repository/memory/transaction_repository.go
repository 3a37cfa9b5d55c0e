package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/api-sage/bank-one-one/src/internal/domain"
)

type transactionRepository Store

func (r *transactionRepository) FindByParticipant(_ context.Context, email string) ([]domain.Transaction, error) {
	email = normalizeEmail(email)
	matches := r.filter(func(txn domain.Transaction) bool {
		return txn.FromEmail == email || txn.ToEmail == email
	})
	return matches, nil
}

func (r *transactionRepository) FindByID(_ context.Context, id string) (domain.Transaction, error) {
	id = strings.TrimSpace(id)
	number, numErr := strconv.ParseInt(id, 10, 64)

	matches := r.filter(func(txn domain.Transaction) bool {
		if numErr == nil {
			return txn.ID == number
		}
		return strings.EqualFold(txn.RowID, id)
	})
	if len(matches) == 0 {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	return matches[0], nil
}

// FindLatestSentTo compares the local part before the first "@" as a whole.
func (r *transactionRepository) FindLatestSentTo(_ context.Context, email string, recipientLocalPart string) (domain.Transaction, error) {
	email = normalizeEmail(email)
	recipientLocalPart = strings.TrimSpace(recipientLocalPart)
	if recipientLocalPart == "" {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}

	matches := r.filter(func(txn domain.Transaction) bool {
		if txn.FromEmail != email || txn.Status != domain.TransactionStatusCompleted {
			return false
		}
		local, _, _ := strings.Cut(txn.ToEmail, "@")
		return strings.EqualFold(local, recipientLocalPart)
	})
	if len(matches) == 0 {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	return matches[0], nil
}

// filter returns copies of matching rows, newest first.
func (r *transactionRepository) filter(match func(domain.Transaction) bool) []domain.Transaction {
	s := (*Store)(r)
	s.mu.RLock()
	matches := make([]domain.Transaction, 0)
	for _, txn := range s.transactions {
		if match(txn) {
			matches = append(matches, txn)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})
	return matches
}
