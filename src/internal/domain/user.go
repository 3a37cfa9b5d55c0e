package domain

import "time"

type User struct {
	ID                     string
	FirstName              string
	LastName               string
	Email                  string
	PhoneNumber            string
	PasswordHash           string
	IsVerified             bool
	VerificationToken      *string
	VerificationExpiresAt  *time.Time
	ResetPasswordToken     *string
	ResetPasswordExpiresAt *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
