package domain

import "context"

type TransactionRepository interface {
	FindByParticipant(ctx context.Context, email string) ([]Transaction, error)
	FindByID(ctx context.Context, id string) (Transaction, error)
	FindLatestSentTo(ctx context.Context, email string, recipientLocalPart string) (Transaction, error)
}
