package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"goaltrack/api/internal/config"
	"goaltrack/api/internal/models"
	"goaltrack/api/internal/notify"
	"goaltrack/api/internal/repository"
	"goaltrack/api/internal/service"
)

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

type fakeGoalStore struct {
	mu    sync.Mutex
	goals map[string]models.Goal
}

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: make(map[string]models.Goal)}
}

func (f *fakeGoalStore) Create(ctx context.Context, goal models.Goal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = goal.CreatedAt
	f.goals[goal.ID] = goal
	return nil
}

func (f *fakeGoalStore) GetByID(ctx context.Context, id string) (models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	goal, ok := f.goals[id]
	if !ok {
		return models.Goal{}, repository.ErrGoalNotFound
	}
	return goal, nil
}

func (f *fakeGoalStore) ListByUser(ctx context.Context, userID string) ([]models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	goals := make([]models.Goal, 0)
	for _, goal := range f.goals {
		if goal.UserID == userID {
			goals = append(goals, goal)
		}
	}
	return goals, nil
}

func (f *fakeGoalStore) UpdateText(ctx context.Context, id string, text string) (models.Goal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	goal, ok := f.goals[id]
	if !ok {
		return models.Goal{}, repository.ErrGoalNotFound
	}
	goal.Text = text
	goal.UpdatedAt = time.Now()
	f.goals[id] = goal
	return goal, nil
}

func (f *fakeGoalStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.goals[id]; !ok {
		return repository.ErrGoalNotFound
	}
	delete(f.goals, id)
	return nil
}

type testEnv struct {
	engine *gin.Engine
	users  *fakeUserStore
	goals  *fakeGoalStore
}

func newTestEnv(environment string) testEnv {
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		Environment: environment,
		Security: config.SecurityConfig{
			JWTSecret:       "test-signing-secret",
			SessionTokenTTL: 30 * 24 * time.Hour,
			ResetTokenTTL:   10 * time.Minute,
		},
	}
	logger := zerolog.New(io.Discard)

	users := newFakeUserStore()
	goals := newFakeGoalStore()

	h := HandlerSet{
		log:         logger,
		cfg:         cfg,
		authService: service.NewAuthService(users, notify.NopNotifier{}, cfg, logger),
		users:       users,
		goals:       goals,
	}

	engine := gin.New()
	h.Mount(engine.Group("/api"))

	return testEnv{engine: engine, users: users, goals: goals}
}

func (e testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (e testEnv) register(t *testing.T, name, email, password string) (id string, token string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/register", "", gin.H{
		"name":             name,
		"email":            email,
		"password":         password,
		"securityQuestion": "first pet",
		"securityAnswer":   "Rex",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	return body["id"].(string), body["token"].(string)
}
