package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
)

type TransactionService interface {
	List(ctx context.Context, userID string) (commons.Response[[]models.TransactionResponse], error)
	Get(ctx context.Context, userID string, transactionID string) (commons.Response[models.TransactionResponse], error)
	LatestSentTo(ctx context.Context, userID string, recipientName string) (commons.Response[models.TransactionResponse], error)
}
