package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
}

const userColumns = `id, first_name, last_name, email, phone_number, password_hash, is_verified,
	verification_token, verification_expires_at, reset_password_token, reset_password_expires_at,
	created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	now := toMillis(r.store.now())

	err := r.store.write(func() error {
		_, err := r.store.db.ExecContext(ctx, `
INSERT INTO users (
	id, first_name, last_name, email, phone_number, password_hash, is_verified,
	verification_token, verification_expires_at, reset_password_token, reset_password_expires_at,
	created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID,
			user.FirstName,
			user.LastName,
			user.Email,
			user.PhoneNumber,
			user.PasswordHash,
			user.IsVerified,
			nullString(user.VerificationToken),
			nullMillis(user.VerificationExpiresAt),
			nullString(user.ResetPasswordToken),
			nullMillis(user.ResetPasswordExpiresAt),
			now,
			now,
		)
		return err
	})
	if err != nil {
		if isConstraintError(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	return r.GetByID(ctx, user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetByVerificationToken(ctx context.Context, token string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = ?`, token)
}

func (r *userRepository) GetByResetToken(ctx context.Context, token string) (domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_password_token = ?`, token)
}

func (r *userRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	var rows int64
	err := r.store.write(func() error {
		result, err := r.store.db.ExecContext(ctx, `
UPDATE users
SET first_name = ?,
	last_name = ?,
	email = ?,
	phone_number = ?,
	password_hash = ?,
	is_verified = ?,
	verification_token = ?,
	verification_expires_at = ?,
	reset_password_token = ?,
	reset_password_expires_at = ?,
	updated_at = ?
WHERE id = ?`,
			user.FirstName,
			user.LastName,
			user.Email,
			user.PhoneNumber,
			user.PasswordHash,
			user.IsVerified,
			nullString(user.VerificationToken),
			nullMillis(user.VerificationExpiresAt),
			nullString(user.ResetPasswordToken),
			nullMillis(user.ResetPasswordExpiresAt),
			toMillis(r.store.now()),
			user.ID,
		)
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		return err
	})
	if err != nil {
		if isConstraintError(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	if rows == 0 {
		return domain.User{}, domain.ErrRecordNotFound
	}

	return r.GetByID(ctx, user.ID)
}

func (r *userRepository) ResolveEmail(ctx context.Context, userID string) (string, error) {
	return resolveEmail(ctx, r.store.db, userID)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func resolveEmail(ctx context.Context, q queryRower, userID string) (string, error) {
	var email string
	if err := q.QueryRowContext(ctx, `SELECT email FROM users WHERE id = ?`, userID).Scan(&email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrRecordNotFound
		}
		return "", fmt.Errorf("resolve user email: %w", err)
	}
	return email, nil
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (domain.User, error) {
	var user domain.User
	if err := scanUser(r.store.db.QueryRowContext(ctx, query, args...), &user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrRecordNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func scanUser(row rowScanner, user *domain.User) error {
	var (
		verificationToken      sql.NullString
		verificationExpiresAt  sql.NullInt64
		resetPasswordToken     sql.NullString
		resetPasswordExpiresAt sql.NullInt64
		createdAt              int64
		updatedAt              int64
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
		&createdAt,
		&updatedAt,
	); err != nil {
		return err
	}

	user.VerificationToken = stringPtr(verificationToken)
	user.VerificationExpiresAt = millisPtr(verificationExpiresAt)
	user.ResetPasswordToken = stringPtr(resetPasswordToken)
	user.ResetPasswordExpiresAt = millisPtr(resetPasswordExpiresAt)
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func millisPtr(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	v := fromMillis(value.Int64)
	return &v
}
