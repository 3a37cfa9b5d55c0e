package domain

import "time"

type AccountStatus string

const (
	AccountStatusPending AccountStatus = "PENDING"
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusBlocked AccountStatus = "BLOCKED"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusPending, AccountStatusActive, AccountStatusBlocked:
		return true
	}
	return false
}

// Account is owned by exactly one user. Balance never drops below zero.
type Account struct {
	ID        string
	UserID    string
	Balance   Money
	Status    AccountStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
