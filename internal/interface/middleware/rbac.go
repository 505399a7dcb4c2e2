package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nimbusworks/accounts-api/internal/application"
	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	"github.com/nimbusworks/accounts-api/pkg/response"
)

// UserLoader fetches the full user record for a session subject.
// Implemented by application.UserService.
type UserLoader interface {
	GetProfile(ctx context.Context, userID string) (*entity.User, error)
}

// RequireAdmin runs after SessionGuard and rejects callers whose
// account does not hold the admin role or is currently banned.
func RequireAdmin(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFromContext(c)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "missing session", response.CodeUnauthorized, nil)
			return
		}
		u, err := users.GetProfile(c.Request.Context(), sess.UserID)
		if err != nil {
			if errors.Is(err, application.ErrUserNotFound) {
				response.AbortError(c, http.StatusUnauthorized, "unknown session subject", response.CodeUnauthorized, nil)
				return
			}
			response.AbortError(c, http.StatusInternalServerError, "authorization check failed", response.CodeInternal, nil)
			return
		}
		if u.Role != entity.RoleAdmin || u.IsBanned(time.Now()) {
			response.AbortError(c, http.StatusForbidden, "admin privileges required", response.CodeForbidden, nil)
			return
		}
		c.Next()
	}
}
