package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goaltrack/api/internal/config"
	"goaltrack/api/internal/ids"
	"goaltrack/api/internal/models"
	"goaltrack/api/internal/notify"
	"goaltrack/api/internal/repository"
	"goaltrack/api/internal/security"
)

var (
	// ErrValidation marks missing or malformed input; callers wrap it with
	// the field detail.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials carries one message for both unknown email and
	// wrong password, so responses cannot leak which one occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidOrExpiredToken likewise collapses unknown and expired reset
	// tokens into a single outcome.
	ErrInvalidOrExpiredToken  = errors.New("invalid or expired reset token")
	ErrSecurityAnswerMismatch = errors.New("security answer does not match")
	ErrNotAuthorized          = errors.New("not authorized")
)

// UserStore is the persistence boundary for user records. Uniqueness of
// email and phone is enforced by the store; concurrent writers losing a race
// must see repository.ErrDuplicateEmail / ErrDuplicatePhone.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByPhone(ctx context.Context, phone string) (models.User, error)
	FindByEmailOrPhone(ctx context.Context, value string) (models.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (models.User, error)
	SetResetToken(ctx context.Context, id string, token string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
}

type AuthService struct {
	users    UserStore
	notifier notify.Notifier
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users UserStore, notifier notify.Notifier, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Name             string
	Email            string
	Password         string
	Phone            string
	SecurityQuestion string
	SecurityAnswer   string
}

type AuthResult struct {
	User  models.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.Phone = strings.TrimSpace(input.Phone)

	if input.Name == "" || input.Email == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, repository.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	if input.Phone != "" {
		if _, err := s.users.FindByPhone(ctx, input.Phone); err == nil {
			return AuthResult{}, repository.ErrDuplicatePhone
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, err
		}
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:               ids.New(),
		Name:             input.Name,
		Email:            input.Email,
		PasswordHash:     passwordHash,
		SecurityQuestion: strings.TrimSpace(input.SecurityQuestion),
		SecurityAnswer:   strings.TrimSpace(input.SecurityAnswer),
	}
	if input.Phone != "" {
		user.Phone = &input.Phone
	}

	// The pre-checks above race; the store's unique constraints are the
	// authority and a losing writer surfaces the same duplicate errors.
	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	token, err := security.IssueSessionToken(s.cfg.Security.JWTSecret, user.ID, s.cfg.Security.SessionTokenTTL)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user, Token: token}, nil
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if !security.VerifyPassword(input.Password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := security.IssueSessionToken(s.cfg.Security.JWTSecret, user.ID, s.cfg.Security.SessionTokenTTL)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user, Token: token}, nil
}

type ForgotPasswordResult struct {
	SecurityQuestion string

	// ResetToken is populated outside production only; in production the
	// token reaches the user through the notification collaborator alone.
	ResetToken string
}

func (s *AuthService) ForgotPassword(ctx context.Context, emailOrPhone string) (ForgotPasswordResult, error) {
	emailOrPhone = strings.TrimSpace(strings.ToLower(emailOrPhone))
	if emailOrPhone == "" {
		return ForgotPasswordResult{}, fmt.Errorf("%w: email or phone is required", ErrValidation)
	}

	user, err := s.users.FindByEmailOrPhone(ctx, emailOrPhone)
	if err != nil {
		return ForgotPasswordResult{}, err
	}

	token, expiresAt, err := security.GenerateResetToken(s.cfg.Security.ResetTokenTTL)
	if err != nil {
		return ForgotPasswordResult{}, err
	}

	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return ForgotPasswordResult{}, err
	}

	// Delivery is out-of-band; a queueing failure must not fail the flow,
	// the token is already persisted and retrying forgot-password is safe.
	if err := s.notifier.PasswordReset(ctx, emailOrPhone, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("enqueue reset notification failed")
	}

	result := ForgotPasswordResult{SecurityQuestion: user.SecurityQuestion}
	if !s.cfg.Production() {
		result.ResetToken = token
	}
	return result, nil
}

func (s *AuthService) VerifyResetToken(ctx context.Context, token string) (models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.User{}, fmt.Errorf("%w: reset token is required", ErrValidation)
	}

	user, err := s.users.FindByResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidOrExpiredToken
		}
		return models.User{}, err
	}
	return user, nil
}

type ResetPasswordInput struct {
	ResetToken     string
	NewPassword    string
	SecurityAnswer string
}

func (s *AuthService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	input.ResetToken = strings.TrimSpace(input.ResetToken)
	if input.ResetToken == "" || input.NewPassword == "" || input.SecurityAnswer == "" {
		return fmt.Errorf("%w: reset token, new password and security answer are required", ErrValidation)
	}

	user, err := s.users.FindByResetToken(ctx, input.ResetToken, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	if !strings.EqualFold(strings.TrimSpace(input.SecurityAnswer), user.SecurityAnswer) {
		return ErrSecurityAnswerMismatch
	}

	passwordHash, err := security.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	// UpdatePassword clears the reset token in the same write, so the
	// consumed token can never verify again.
	return s.users.UpdatePassword(ctx, user.ID, passwordHash)
}
