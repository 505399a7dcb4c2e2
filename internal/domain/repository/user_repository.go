package repository

import (
	"context"
	"time"

	"github.com/nimbusworks/accounts-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	// UpdateProfile applies the allowlisted changes to the row with the
	// given id and refreshes updated_at. It returns the updated row, or
	// a not-found error when no row was affected.
	UpdateProfile(ctx context.Context, id string, ch entity.ProfileChanges) (*entity.User, error)
	SetRole(ctx context.Context, id string, role entity.Role) error
	SetBan(ctx context.Context, id string, banned bool, reason string, expires *time.Time) error
	SetEmailVerified(ctx context.Context, id string) error
}
