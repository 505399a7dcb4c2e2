package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	repo "github.com/nimbusworks/accounts-api/internal/domain/repository"
)

// AdminService performs privileged mutations on other users' records.
// Authorization (the caller holding the admin role) is enforced at the
// transport layer before any of these run.
type AdminService struct {
	Repo   repo.UserRepository
	Logger *logrus.Logger
}

func NewAdminService(r repo.UserRepository, logger *logrus.Logger) *AdminService {
	return &AdminService{Repo: r, Logger: logger}
}

func (s *AdminService) SetRole(ctx context.Context, userID string, role entity.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if err := s.Repo.SetRole(ctx, userID, role); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *AdminService) Ban(ctx context.Context, userID, reason string, expires *time.Time) error {
	if err := s.Repo.SetBan(ctx, userID, true, reason, expires); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *AdminService) Unban(ctx context.Context, userID string) error {
	if err := s.Repo.SetBan(ctx, userID, false, "", nil); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
