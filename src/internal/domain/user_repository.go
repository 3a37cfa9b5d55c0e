package domain

import "context"

type UserRepository interface {
	UserDirectory
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByVerificationToken(ctx context.Context, token string) (User, error)
	GetByResetToken(ctx context.Context, token string) (User, error)
	Update(ctx context.Context, user User) (User, error)
}

// UserDirectory resolves a user id to the contact email used on ledger rows.
type UserDirectory interface {
	ResolveEmail(ctx context.Context, userID string) (string, error)
}
