package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	repo "github.com/nimbusworks/accounts-api/internal/domain/repository"
)

// Bootstrap provisions the single configured admin account at process
// start. It is never wired to a route.
type Bootstrap struct {
	Repo          repo.UserRepository
	Auth          *AuthService
	Logger        *logrus.Logger
	AdminEmail    string
	AdminUsername string
	AdminPassword string
}

// EnsureAdmin is idempotent and non-fatal: missing configuration or a
// creation failure is logged and the process keeps serving.
func (b *Bootstrap) EnsureAdmin(ctx context.Context) {
	missing := b.missingVars()
	if len(missing) > 0 {
		b.Logger.WithField("missing", missing).Info("admin credentials not fully configured; skipping admin bootstrap")
		return
	}

	existing, err := b.Repo.GetByUsername(ctx, b.AdminUsername)
	if err == nil && existing != nil {
		b.Logger.WithFields(logrus.Fields{
			"username": existing.Username,
			"role":     existing.Role,
		}).Info("admin user already exists")
		return
	}
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		b.Logger.WithError(err).Error("admin lookup failed; skipping admin bootstrap")
		return
	}

	u, err := b.Auth.SignUp(ctx, SignUpInput{
		Email:    b.AdminEmail,
		Username: b.AdminUsername,
		Name:     b.AdminUsername,
		Password: b.AdminPassword,
	})
	if err != nil {
		b.Logger.WithError(err).Error("failed to create admin user")
		return
	}
	// Sign-up never grants privileges; elevate explicitly.
	if err := b.Repo.SetRole(ctx, u.ID, entity.RoleAdmin); err != nil {
		b.Logger.WithError(err).WithField("user_id", u.ID).Error("failed to elevate admin user")
		return
	}
	b.Logger.WithField("username", u.Username).Info("admin user created")
}

func (b *Bootstrap) missingVars() []string {
	var missing []string
	if b.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if b.AdminUsername == "" {
		missing = append(missing, "ADMIN_USERNAME")
	}
	if b.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}
	return missing
}
