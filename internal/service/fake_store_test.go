package service

import (
	"context"
	"sync"
	"time"

	"goaltrack/api/internal/models"
	"goaltrack/api/internal/repository"
)

// fakeUserStore is an in-memory UserStore honoring the persistence contract:
// store-level uniqueness, expiry-filtered reset-token lookup, and token
// consumption on password update.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if user.Phone != nil && existing.Phone != nil && *existing.Phone == *user.Phone {
			return repository.ErrDuplicatePhone
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return f.find(func(u models.User) bool { return u.Email == email })
}

func (f *fakeUserStore) FindByPhone(ctx context.Context, phone string) (models.User, error) {
	return f.find(func(u models.User) bool { return u.Phone != nil && *u.Phone == phone })
}

func (f *fakeUserStore) FindByEmailOrPhone(ctx context.Context, value string) (models.User, error) {
	return f.find(func(u models.User) bool {
		return u.Email == value || (u.Phone != nil && *u.Phone == value)
	})
}

func (f *fakeUserStore) FindByResetToken(ctx context.Context, token string, now time.Time) (models.User, error) {
	return f.find(func(u models.User) bool {
		return u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now)
	})
}

func (f *fakeUserStore) SetResetToken(ctx context.Context, id string, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.ResetToken = &token
	user.ResetTokenExpiresAt = &expiresAt
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id string, passwordHash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.ResetToken = nil
	user.ResetTokenExpiresAt = nil
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) expireToken(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, user := range f.users {
		if user.Email == email && user.ResetTokenExpiresAt != nil {
			past := time.Now().Add(-time.Second)
			user.ResetTokenExpiresAt = &past
			f.users[id] = user
		}
	}
}

func (f *fakeUserStore) find(match func(models.User) bool) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if match(user) {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}
