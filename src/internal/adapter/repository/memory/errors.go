package memory

import "errors"

var (
	errAlreadyLocked = errors.New("accounts already locked in this unit")
	errNotLocked     = errors.New("account not locked in this unit")
)

var (
	errDuplicateAccount = errors.New("account already exists")
	errNegativeBalance  = errors.New("account balance cannot be negative")
)
