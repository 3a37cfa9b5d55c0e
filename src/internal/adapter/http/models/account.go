package models

import (
	"errors"
	"strings"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
)

type AccountResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Balance   string `json:"balance"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		UserID:    account.UserID,
		Balance:   account.Balance.String(),
		Status:    string(account.Status),
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type AccountOverviewResponse struct {
	Account      AccountResponse       `json:"account"`
	Transactions []TransactionResponse `json:"transactions"`
}

type UpdateAccountStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateAccountStatusRequest) Validate() error {
	status := domain.AccountStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
	if status == "" {
		return errors.New("status is required")
	}
	if !status.Valid() {
		return errors.New("status must be one of PENDING, ACTIVE, BLOCKED")
	}
	return nil
}

func (r UpdateAccountStatusRequest) AccountStatus() domain.AccountStatus {
	return domain.AccountStatus(strings.ToUpper(strings.TrimSpace(r.Status)))
}
