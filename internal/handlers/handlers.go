package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"goaltrack/api/internal/config"
	"goaltrack/api/internal/middleware"
	"goaltrack/api/internal/models"
	"goaltrack/api/internal/notify"
	"goaltrack/api/internal/repository"
	"goaltrack/api/internal/service"
)

type GoalStore interface {
	Create(ctx context.Context, goal models.Goal) error
	GetByID(ctx context.Context, id string) (models.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]models.Goal, error)
	UpdateText(ctx context.Context, id string, text string) (models.Goal, error)
	Delete(ctx context.Context, id string) error
}

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	authService *service.AuthService
	users       service.UserStore
	goals       GoalStore
	db          *pgxpool.Pool
	cache       *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)

	var notifier notify.Notifier = notify.NopNotifier{}
	if cache != nil {
		notifier = notify.NewStreamNotifier(cache)
	}
	auth := service.NewAuthService(userRepo, notifier, cfg, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		authService: auth,
		users:       userRepo,
		goals:       goalRepo,
		db:          db,
		cache:       cache,
	}
}

func (h HandlerSet) Mount(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)
		v1.POST("/forgot-password", h.ForgotPassword)
		v1.POST("/verify-reset-token", h.VerifyResetToken)
		v1.POST("/reset-password", h.ResetPassword)
		v1.POST("/reset-password/:token", h.ResetPasswordLegacy)

		protected := v1.Group("")
		protected.Use(middleware.Auth(h.cfg.Security.JWTSecret, h.users))
		protected.GET("/user", h.Detail)

		goals := protected.Group("/goals")
		goals.GET("", h.ListGoals)
		goals.POST("", h.CreateGoal)
		goals.PUT("/:id", h.UpdateGoal)
		goals.DELETE("/:id", h.DeleteGoal)
	}
}

// respondError maps domain errors to the status convention: 400 for
// validation and business-rule failures, 401 unauthorized, 404 unknown user,
// 500 with a generic body for anything unexpected.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, repository.ErrDuplicateEmail),
		errors.Is(err, repository.ErrDuplicatePhone),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidOrExpiredToken),
		errors.Is(err, service.ErrSecurityAnswerMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
