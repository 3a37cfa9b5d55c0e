package memory

import (
	"context"

	"github.com/api-sage/bank-one-one/src/internal/domain"
	"github.com/google/uuid"
)

type userRepository Store

func (r *userRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	s := (*Store)(r)
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = normalizeEmail(user.Email)
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	s.users[user.ID] = user
	return user, nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *userRepository) GetByVerificationToken(_ context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return r.find(func(u domain.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *userRepository) GetByResetToken(_ context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return r.find(func(u domain.User) bool {
		return u.ResetPasswordToken != nil && *u.ResetPasswordToken == token
	})
}

func (r *userRepository) Update(_ context.Context, user domain.User) (domain.User, error) {
	s := (*Store)(r)
	user.Email = normalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}
	for id, other := range s.users {
		if id != user.ID && other.Email == user.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = s.now()
	s.users[user.ID] = user
	return user, nil
}

func (r *userRepository) ResolveEmail(_ context.Context, userID string) (string, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return "", domain.ErrRecordNotFound
	}
	return user.Email, nil
}

func (r *userRepository) find(match func(domain.User) bool) (domain.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if match(user) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrRecordNotFound
}
