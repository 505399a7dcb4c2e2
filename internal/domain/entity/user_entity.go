package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// PasswordHash is a bcrypt hash and must never leave the process.
type User struct {
	ID              string
	Email           string
	EmailVerified   bool
	Username        string
	DisplayUsername string
	Name            string
	PasswordHash    string
	Image           string
	Role            Role
	Banned          bool
	BanReason       string
	BanExpires      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsBanned reports whether the ban is currently in effect. A ban with a
// past expiry no longer blocks the account.
func (u *User) IsBanned(now time.Time) bool {
	if !u.Banned {
		return false
	}
	if u.BanExpires != nil && u.BanExpires.Before(now) {
		return false
	}
	return true
}

// ProfileChanges is the closed set of fields a user may change on their
// own record. Nil means "leave unchanged". Anything not representable
// here cannot reach the UPDATE statement, so new user columns stay
// read-only on the self-service path unless added explicitly.
type ProfileChanges struct {
	DisplayUsername *string
	Name            *string
	Image           *string
}

// Empty reports whether no field is being changed.
func (c ProfileChanges) Empty() bool {
	return c.DisplayUsername == nil && c.Name == nil && c.Image == nil
}

// PublicView is the wire representation of a user, excluding credentials.
type PublicView struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	EmailVerified   bool       `json:"emailVerified"`
	Username        string     `json:"username"`
	DisplayUsername string     `json:"displayUsername,omitempty"`
	Name            string     `json:"name"`
	Image           string     `json:"image,omitempty"`
	Role            Role       `json:"role"`
	Banned          bool       `json:"banned"`
	BanReason       string     `json:"banReason,omitempty"`
	BanExpires      *time.Time `json:"banExpires,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Public returns the safe view of the user.
func (u *User) Public() PublicView {
	return PublicView{
		ID:              u.ID,
		Email:           u.Email,
		EmailVerified:   u.EmailVerified,
		Username:        u.Username,
		DisplayUsername: u.DisplayUsername,
		Name:            u.Name,
		Image:           u.Image,
		Role:            u.Role,
		Banned:          u.Banned,
		BanReason:       u.BanReason,
		BanExpires:      u.BanExpires,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
