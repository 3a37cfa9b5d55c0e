package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/adapter/http/models"
	"github.com/api-sage/bank-one-one/src/internal/commons"
)

type AccountService interface {
	GetOverview(ctx context.Context, userID string) (commons.Response[models.AccountOverviewResponse], error)
	SetStatus(ctx context.Context, accountID string, req models.UpdateAccountStatusRequest) (commons.Response[models.AccountResponse], error)
}
