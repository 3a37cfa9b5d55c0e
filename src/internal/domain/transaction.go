package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

const MaxDescriptionLength = 255

// Transaction is an immutable ledger row. ID is issued by the store from a
// monotonic source; RowID is the storage identity.
type Transaction struct {
	ID          int64
	RowID       string
	FromEmail   string
	ToEmail     string
	Amount      Money
	Status      TransactionStatus
	Description string
	CreatedAt   time.Time
}
