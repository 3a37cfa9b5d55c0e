package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	SignOutgoing = "-"
	SignIncoming = "+"
)

type CreateTransactionRequest struct {
	ReceiverEmail string           `json:"receiverEmail"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   string           `json:"description,omitempty"`
}

func (r CreateTransactionRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.ReceiverEmail) == "" {
		errs = append(errs, "receiverEmail is required")
	}

	if r.Amount == nil {
		errs = append(errs, "amount is required")
	} else if err := domain.CheckAmountScale(*r.Amount); err != nil {
		errs = append(errs, err.Error())
	} else if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "Amount must be greater than zero")
	} else if _, err := domain.MoneyFromDecimal(*r.Amount); err != nil {
		errs = append(errs, err.Error())
	}

	if utf8.RuneCountInString(strings.TrimSpace(r.Description)) > domain.MaxDescriptionLength {
		errs = append(errs, fmt.Sprintf("description must be at most %d characters", domain.MaxDescriptionLength))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// UnmarshalJSON refuses amounts whose scale cannot fit Money, before anything
// formats or compares them.
func (r *CreateTransactionRequest) UnmarshalJSON(data []byte) error {
	type plain CreateTransactionRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Amount != nil {
		if err := domain.CheckAmountScale(*p.Amount); err != nil {
			return err
		}
	}
	*r = CreateTransactionRequest(p)
	return nil
}

// Money returns the validated amount in minor units.
func (r CreateTransactionRequest) Money() (domain.Money, error) {
	if r.Amount == nil {
		return 0, errors.New("amount is required")
	}
	return domain.MoneyFromDecimal(*r.Amount)
}

type TransactionResponse struct {
	ID          int64  `json:"id"`
	RowID       string `json:"rowId"`
	FromEmail   string `json:"fromEmail"`
	ToEmail     string `json:"toEmail"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
	Sign        string `json:"sign,omitempty"`
}

func NewTransactionResponse(txn domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          txn.ID,
		RowID:       txn.RowID,
		FromEmail:   txn.FromEmail,
		ToEmail:     txn.ToEmail,
		Amount:      txn.Amount.String(),
		Status:      string(txn.Status),
		Description: txn.Description,
		CreatedAt:   txn.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type CreateTransactionResponse struct {
	SenderBalance   string              `json:"senderBalance"`
	ReceiverBalance string              `json:"receiverBalance"`
	Transaction     TransactionResponse `json:"transaction"`
}
