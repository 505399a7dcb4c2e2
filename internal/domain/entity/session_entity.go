package entity

import "time"

// Session is the server-side proof of authentication. The token is an
// opaque random value handed to the client; everything else lives in
// the session store.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its validity window.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
