package models

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	minNameLength     = 2
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^05\d{8}$`)
)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizeEmail trims and lower-cases an address for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

func (r SignupRequest) Validate() error {
	var errs []string

	email := strings.TrimSpace(r.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if !IsValidEmail(email) {
		errs = append(errs, "Invalid email format")
	}

	if r.Password == "" {
		errs = append(errs, "password is required")
	} else if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		errs = append(errs, "password must be at least 6 characters")
	}

	phone := strings.TrimSpace(r.PhoneNumber)
	if phone == "" {
		errs = append(errs, "phoneNumber is required")
	} else if !IsValidPhone(phone) {
		errs = append(errs, "Invalid phone number format")
	}

	if name := strings.TrimSpace(r.FirstName); name == "" {
		errs = append(errs, "firstName is required")
	} else if utf8.RuneCountInString(name) < minNameLength {
		errs = append(errs, "firstName must be at least 2 characters")
	}
	if name := strings.TrimSpace(r.LastName); name == "" {
		errs = append(errs, "lastName is required")
	} else if utf8.RuneCountInString(name) < minNameLength {
		errs = append(errs, "lastName must be at least 2 characters")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type SignupResponse struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	var errs []string
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("email is required")
	}
	return nil
}

type ResetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	var errs []string
	if strings.TrimSpace(r.Token) == "" {
		errs = append(errs, "token is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	} else if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		errs = append(errs, "password must be at least 6 characters")
	}
	if r.ConfirmPassword == "" {
		errs = append(errs, "confirmPassword is required")
	}
	if len(errs) == 0 && r.Password != r.ConfirmPassword {
		errs = append(errs, "Passwords do not match")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type VerifyStatusResponse struct {
	IsVerified bool `json:"isVerified"`
}

type EmptyResponse struct{}
