package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/api-sage/bank-one-one/src/internal/logger"
	"github.com/google/uuid"
)

type UserRepository struct {
	db *sql.DB
}

const userColumns = `id, first_name, last_name, email, phone_number, password_hash, is_verified,
       verification_token, verification_expires_at, reset_password_token, reset_password_expires_at,
       created_at, updated_at`

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = normalizeEmail(user.Email)

	logger.Info("user repository create", logger.Fields{
		"userId":    user.ID,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
	})

	const query = `
INSERT INTO users (
	id,
	first_name,
	last_name,
	email,
	phone_number,
	password_hash,
	is_verified,
	verification_token,
	verification_expires_at,
	reset_password_token,
	reset_password_expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + userColumns

	var created domain.User
	if err := scanUser(r.db.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PhoneNumber,
		user.PasswordHash,
		user.IsVerified,
		nullString(user.VerificationToken),
		nullTime(user.VerificationExpiresAt),
		nullString(user.ResetPasswordToken),
		nullTime(user.ResetPasswordExpiresAt),
	), &created); err != nil {
		if isUniqueViolation(err) {
			logger.Info("user repository email already registered", logger.Fields{
				"email": user.Email,
			})
			return domain.User{}, domain.ErrEmailTaken
		}
		logger.Error("user repository create failed", err, logger.Fields{
			"email": user.Email,
		})
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	logger.Info("user repository create success", logger.Fields{
		"userId": created.ID,
	})

	return created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	if !validUUID(id) {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return r.getOne(ctx, "get by id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, "get by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, normalizeEmail(email))
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (domain.User, error) {
	return r.getOne(ctx, "get by verification token", `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token)
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (domain.User, error) {
	return r.getOne(ctx, "get by reset token", `SELECT `+userColumns+` FROM users WHERE reset_password_token = $1`, token)
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	if !validUUID(user.ID) {
		return domain.User{}, domain.ErrRecordNotFound
	}
	user.Email = normalizeEmail(user.Email)

	logger.Info("user repository update", logger.Fields{
		"userId": user.ID,
	})

	const query = `
UPDATE users
SET first_name = $2,
	last_name = $3,
	email = $4,
	phone_number = $5,
	password_hash = $6,
	is_verified = $7,
	verification_token = $8,
	verification_expires_at = $9,
	reset_password_token = $10,
	reset_password_expires_at = $11,
	updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns

	return r.getOne(
		ctx,
		"update",
		query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PhoneNumber,
		user.PasswordHash,
		user.IsVerified,
		nullString(user.VerificationToken),
		nullTime(user.VerificationExpiresAt),
		nullString(user.ResetPasswordToken),
		nullTime(user.ResetPasswordExpiresAt),
	)
}

// ResolveEmail implements domain.UserDirectory outside a transfer unit.
func (r *UserRepository) ResolveEmail(ctx context.Context, userID string) (string, error) {
	return resolveEmail(ctx, r.db, userID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func resolveEmail(ctx context.Context, q queryRower, userID string) (string, error) {
	if !validUUID(userID) {
		return "", domain.ErrRecordNotFound
	}

	var email string
	if err := q.QueryRowContext(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrRecordNotFound
		}
		return "", fmt.Errorf("resolve user email: %w", err)
	}
	return email, nil
}

func (r *UserRepository) getOne(ctx context.Context, op string, query string, args ...any) (domain.User, error) {
	var user domain.User
	if err := scanUser(r.db.QueryRowContext(ctx, query, args...), &user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("user repository record not found", logger.Fields{
				"operation": op,
			})
			return domain.User{}, domain.ErrRecordNotFound
		}
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		logger.Error("user repository "+op+" failed", err, nil)
		return domain.User{}, fmt.Errorf("user %s: %w", op, err)
	}
	return user, nil
}

func scanUser(row rowScanner, user *domain.User) error {
	var (
		verificationToken      sql.NullString
		verificationExpiresAt  sql.NullTime
		resetPasswordToken     sql.NullString
		resetPasswordExpiresAt sql.NullTime
	)

	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PhoneNumber,
		&user.PasswordHash,
		&user.IsVerified,
		&verificationToken,
		&verificationExpiresAt,
		&resetPasswordToken,
		&resetPasswordExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return err
	}

	user.VerificationToken = stringPtr(verificationToken)
	user.VerificationExpiresAt = timePtr(verificationExpiresAt)
	user.ResetPasswordToken = stringPtr(resetPasswordToken)
	user.ResetPasswordExpiresAt = timePtr(resetPasswordExpiresAt)
	return nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	v := value.Time
	return &v
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
