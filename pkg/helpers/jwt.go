package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCache signs and verifies the short-lived cookie that caches a
// positive session check, so the guard can skip the store lookup for a
// few minutes after a successful resolution.
type SessionCache struct {
	Secret []byte
	TTL    time.Duration
}

func NewSessionCache(secret string, ttl time.Duration) *SessionCache {
	return &SessionCache{Secret: []byte(secret), TTL: ttl}
}

// CacheClaims binds the cached assertion to a specific session token
// via its digest, so a cache cookie cannot vouch for a different token.
type CacheClaims struct {
	UserID      string `json:"uid"`
	TokenDigest string `json:"td"`
	jwt.RegisteredClaims
}

// Issue signs a cache token expiring at now+TTL, capped at notAfter
// (the session's own expiry).
func (m *SessionCache) Issue(userID, tokenDigest string, notAfter time.Time) (string, error) {
	exp := time.Now().Add(m.TTL)
	if exp.After(notAfter) {
		exp = notAfter
	}
	claims := &CacheClaims{
		UserID:      userID,
		TokenDigest: tokenDigest,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.Secret)
}

func (m *SessionCache) Parse(tokenStr string) (*CacheClaims, error) {
	claims := &CacheClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
