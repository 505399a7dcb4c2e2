package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nimbusworks/accounts-api/internal/application"
	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	"github.com/nimbusworks/accounts-api/pkg/helpers"
	"github.com/nimbusworks/accounts-api/pkg/response"
)

// CtxSessionKey is the gin context key the resolved session lives under.
const CtxSessionKey = "session"

// SessionResolver validates a session token, optionally consulting the
// cookie cache. Implemented by application.AuthService.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token, cacheToken string) (*entity.Session, string, error)
}

// SessionGuard rejects requests without a resolvable session and
// attaches the session to the context for downstream handlers. A fresh
// cache cookie is set whenever the resolver re-validated against the
// store.
func SessionGuard(resolver SessionResolver, cookies *helpers.CookieManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing session token", response.CodeUnauthorized, nil)
			return
		}
		cacheToken, _ := c.Cookie(helpers.SessionCacheCookie)

		sess, refresh, err := resolver.ResolveSession(c.Request.Context(), token, cacheToken)
		if err != nil {
			if errors.Is(err, application.ErrSessionNotFound) {
				response.AbortError(c, http.StatusUnauthorized, "invalid or expired session", response.CodeUnauthorized, nil)
				return
			}
			// Store unreachable: a generic failure, not an auth verdict.
			response.AbortError(c, http.StatusInternalServerError, "session resolution failed", response.CodeInternal, nil)
			return
		}
		if refresh != "" && cookies != nil {
			cookies.RefreshCache(c, refresh, sess.ExpiresAt)
		}
		c.Set(CtxSessionKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the session attached by SessionGuard.
func SessionFromContext(c *gin.Context) (*entity.Session, bool) {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*entity.Session)
	return sess, ok && sess != nil
}

func extractToken(c *gin.Context) string {
	if tok, err := c.Cookie(helpers.SessionCookie); err == nil && tok != "" {
		return tok
	}
	auth := c.GetHeader("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
