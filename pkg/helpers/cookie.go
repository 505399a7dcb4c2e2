package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie      = "session_token"
	SessionCacheCookie = "session_data"
)

type CookieManager struct {
	Domain string
	Secure bool
}

func NewCookieManager(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

// SetSession stores the opaque session token and its signed cache
// cookie. Both are HttpOnly; the cache cookie may expire earlier.
func (m *CookieManager) SetSession(c *gin.Context, token string, exp time.Time, cache string, cacheExp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
	if cache != "" {
		c.SetCookie(SessionCacheCookie, cache, maxAgeFrom(cacheExp), "/", m.Domain, m.Secure, true)
	}
}

// RefreshCache replaces only the cache cookie after a store-backed
// resolution re-validated the session.
func (m *CookieManager) RefreshCache(c *gin.Context, cache string, cacheExp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCacheCookie, cache, maxAgeFrom(cacheExp), "/", m.Domain, m.Secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", m.Domain, m.Secure, true)
	c.SetCookie(SessionCacheCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
