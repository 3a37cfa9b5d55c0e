package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
)

type TransferService interface {
	CreateTransaction(ctx context.Context, senderUserID string, req models.CreateTransactionRequest) (commons.Response[models.CreateTransactionResponse], error)
}
