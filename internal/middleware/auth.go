package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"goaltrack/api/internal/models"
	"goaltrack/api/internal/security"
)

// CurrentUserKey holds the resolved user on the request context after a
// successful token verification.
const CurrentUserKey = "current_user"

type UserResolver interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Auth verifies the bearer session token and attaches the resolved user to
// the request. Every failure answers 401 with the same body.
func Auth(jwtSecret string, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortNotAuthorized(c)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := security.ParseSessionToken(tokenStr, jwtSecret)
		if err != nil {
			abortNotAuthorized(c)
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			abortNotAuthorized(c)
			return
		}

		c.Set(CurrentUserKey, user)

		c.Next()
	}
}

func abortNotAuthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
}

// CurrentUser returns the user attached by Auth, if any.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(CurrentUserKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}
