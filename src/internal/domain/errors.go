package domain

import (
	"errors"
	"fmt"
)

var ErrRecordNotFound = errors.New("Record not found")

// Transfer errors. Everything except ErrTransientStoreConflict and
// ErrStorageFault is a client-correctable precondition failure.
var (
	ErrInvalidAmount            = errors.New("Amount must be greater than zero")
	ErrSelfTransfer             = fmt.Errorf("%w: source and destination accounts are the same", ErrInvalidAmount)
	ErrDescriptionTooLong       = fmt.Errorf("%w: description exceeds %d characters", ErrInvalidAmount, MaxDescriptionLength)
	ErrAmountOutOfRange         = fmt.Errorf("%w: amount is out of range", ErrInvalidAmount)
	ErrAccountNotFound          = errors.New("Account not found")
	ErrSourceNotActive          = errors.New("Source account is not active")
	ErrInsufficientFunds        = errors.New("Insufficient funds")
	ErrIdentityResolutionFailed = errors.New("User email not found")
	ErrTransientStoreConflict   = errors.New("transient store conflict")
	ErrStorageFault             = errors.New("storage fault")
)

var (
	ErrUserNotFound       = errors.New("User not found")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserNotVerified    = errors.New("User is not verified")
	ErrInvalidToken       = errors.New("Invalid or expired token")
	ErrTokenExpired       = errors.New("Token expired")
	ErrInvalidStatus      = errors.New("Invalid account status")
)

// IsTransferRejection reports whether err is a precondition failure of a
// transfer, as opposed to a storage problem.
func IsTransferRejection(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrSourceNotActive) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrIdentityResolutionFailed)
}
