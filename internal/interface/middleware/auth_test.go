package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusworks/accounts-api/internal/application"
	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	"github.com/nimbusworks/accounts-api/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	sess    *entity.Session
	refresh string
	err     error

	gotToken string
	gotCache string
}

func (r *stubResolver) ResolveSession(_ context.Context, token, cacheToken string) (*entity.Session, string, error) {
	r.gotToken = token
	r.gotCache = cacheToken
	if r.err != nil {
		return nil, "", r.err
	}
	return r.sess, r.refresh, nil
}

func guardRouter(resolver SessionResolver) *gin.Engine {
	r := gin.New()
	r.GET("/protected", SessionGuard(resolver, helpers.NewCookieManager("localhost", false)), func(c *gin.Context) {
		sess, ok := SessionFromContext(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no session in context")
			return
		}
		c.String(http.StatusOK, sess.UserID)
	})
	return r
}

func TestSessionGuard_MissingToken(t *testing.T) {
	r := guardRouter(&stubResolver{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

func TestSessionGuard_CookieToken(t *testing.T) {
	resolver := &stubResolver{sess: &entity.Session{Token: "tok", UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)}}
	r := guardRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookie, Value: "tok"})
	req.AddCookie(&http.Cookie{Name: helpers.SessionCacheCookie, Value: "cached"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())
	assert.Equal(t, "tok", resolver.gotToken)
	assert.Equal(t, "cached", resolver.gotCache)
}

func TestSessionGuard_BearerToken(t *testing.T) {
	resolver := &stubResolver{sess: &entity.Session{Token: "tok", UserID: "u-2", ExpiresAt: time.Now().Add(time.Hour)}}
	r := guardRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-2", w.Body.String())
}

func TestSessionGuard_InvalidSession(t *testing.T) {
	r := guardRouter(&stubResolver{err: application.ErrSessionNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer expired")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionGuard_StoreFailure(t *testing.T) {
	r := guardRouter(&stubResolver{err: errors.New("redis down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)

	// A store outage is not an auth verdict.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSessionGuard_RefreshesCacheCookie(t *testing.T) {
	resolver := &stubResolver{
		sess:    &entity.Session{Token: "tok", UserID: "u-3", ExpiresAt: time.Now().Add(time.Hour)},
		refresh: "new-cache-token",
	}
	r := guardRouter(resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var found bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == helpers.SessionCacheCookie {
			found = true
			assert.Equal(t, "new-cache-token", ck.Value)
			assert.True(t, ck.HttpOnly)
		}
	}
	assert.True(t, found, "cache cookie should be set")
}
