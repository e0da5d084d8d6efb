package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	"github.com/dexhub/hr-portal/pkg/logger"
)

const currentUserKey = "auth.current_user"

// UserLoader loads the user named by a token subject.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Middleware authenticates bearer tokens and stores the calling user on the gin context.
type Middleware struct {
	tokens *TokenManager
	users  UserLoader
	log    *logger.Logger
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(tokens *TokenManager, users UserLoader, log *logger.Logger) *Middleware {
	return &Middleware{tokens: tokens, users: users, log: log.Component("auth")}
}

// Authenticate rejects requests without a valid bearer token for an active user.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			abort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := m.tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			m.log.Debug().Err(err).Msg("Rejected access token")
			c.Header("WWW-Authenticate", "Bearer")
			abort(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			abort(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := m.users.GetByID(c.Request.Context(), userID)
		if errors.Is(err, repository.ErrNotFound) {
			m.log.Debug().Uint("user_id", userID).Msg("Token subject not found")
			abort(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if err != nil {
			m.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to load token subject")
			abort(c, http.StatusInternalServerError, "Failed to authenticate request")
			return
		}
		if !user.IsActive {
			abort(c, http.StatusForbidden, "Inactive user")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not listed.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "The user doesn't have enough privileges")
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// SetCurrentUser stores user on the context. Used by tests and internal callers.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
