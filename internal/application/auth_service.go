package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	repo "github.com/nimbusworks/accounts-api/internal/domain/repository"
	"github.com/nimbusworks/accounts-api/pkg/helpers"
)

const sessionTokenBytes = 32

// SessionStore is the persistence contract for sessions. The Redis
// implementation lives in infrastructure; tests substitute an
// in-memory one.
type SessionStore interface {
	Save(ctx context.Context, sess *entity.Session) error
	Get(ctx context.Context, token string) (*entity.Session, error)
	Touch(ctx context.Context, token string, updatedAt, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
}

// KV stores short-lived string tokens (email verification).
type KV interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

func keyVerifyToken(t string) string { return "email:verify:token:" + t }

// AuthService owns credentials and sessions: sign-up, sign-in,
// sign-out, session resolution, and email verification tokens.
type AuthService struct {
	Repo       repo.UserRepository
	Sessions   SessionStore
	Tokens     KV
	Cache      *helpers.SessionCache
	Logger     *logrus.Logger
	SessionTTL time.Duration
	UpdateAge  time.Duration
}

func NewAuthService(r repo.UserRepository, sessions SessionStore, tokens KV, cache *helpers.SessionCache, logger *logrus.Logger, sessionTTL, updateAge time.Duration) *AuthService {
	return &AuthService{
		Repo:       r,
		Sessions:   sessions,
		Tokens:     tokens,
		Cache:      cache,
		Logger:     logger,
		SessionTTL: sessionTTL,
		UpdateAge:  updateAge,
	}
}

// SignUpInput carries the fields of an internal sign-up. Public HTTP
// sign-up is disabled; only the admin bootstrap and internal callers
// create accounts.
type SignUpInput struct {
	Email    string
	Username string
	Name     string
	Password string
}

// SignUp creates an account with the default role. The password is
// bcrypt-hashed before it reaches the repository.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		name = in.Username
	}
	u := &entity.User{
		Email:        in.Email,
		Username:     in.Username,
		Name:         name,
		PasswordHash: hash,
		Role:         entity.RoleUser,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// SignInEmail authenticates by email and issues a session.
func (s *AuthService) SignInEmail(ctx context.Context, email, password string) (*entity.User, *entity.Session, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	return s.signIn(ctx, u, err, password)
}

// SignInUsername authenticates by username and issues a session.
func (s *AuthService) SignInUsername(ctx context.Context, username, password string) (*entity.User, *entity.Session, error) {
	u, err := s.Repo.GetByUsername(ctx, username)
	return s.signIn(ctx, u, err, password)
}

func (s *AuthService) signIn(ctx context.Context, u *entity.User, lookupErr error, password string) (*entity.User, *entity.Session, error) {
	if lookupErr != nil || u == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}
	if u.IsBanned(time.Now()) {
		return nil, nil, ErrBanned
	}
	sess, err := s.createSession(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, sess, nil
}

func (s *AuthService) createSession(ctx context.Context, userID string) (*entity.Session, error) {
	token, err := helpers.GenToken(sessionTokenBytes)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &entity.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.SessionTTL),
	}
	if err := s.Sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// CacheToken signs a short-lived cookie that vouches for the session
// without a store lookup.
func (s *AuthService) CacheToken(sess *entity.Session) (string, error) {
	if s.Cache == nil {
		return "", nil
	}
	return s.Cache.Issue(sess.UserID, helpers.Digest(sess.Token), sess.ExpiresAt)
}

// ResolveSession validates a session token. A valid cache token bound
// to the same session skips the store; otherwise the store is
// consulted, expiry enforced, and the sliding window refreshed. The
// returned refresh string, when non-empty, is a new cache token the
// transport layer should set.
func (s *AuthService) ResolveSession(ctx context.Context, token, cacheToken string) (*entity.Session, string, error) {
	if token == "" {
		return nil, "", ErrSessionNotFound
	}

	if cacheToken != "" && s.Cache != nil {
		if claims, err := s.Cache.Parse(cacheToken); err == nil && claims.TokenDigest == helpers.Digest(token) {
			return &entity.Session{
				Token:     token,
				UserID:    claims.UserID,
				ExpiresAt: claims.ExpiresAt.Time,
			}, "", nil
		}
	}

	sess, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if sess == nil {
		return nil, "", ErrSessionNotFound
	}
	now := time.Now().UTC()
	if sess.Expired(now) {
		_ = s.Sessions.Delete(ctx, token)
		return nil, "", ErrSessionNotFound
	}
	if s.UpdateAge > 0 && now.Sub(sess.UpdatedAt) >= s.UpdateAge {
		sess.UpdatedAt = now
		sess.ExpiresAt = now.Add(s.SessionTTL)
		if terr := s.Sessions.Touch(ctx, token, sess.UpdatedAt, sess.ExpiresAt); terr != nil && s.Logger != nil {
			s.Logger.WithError(terr).Warn("session touch failed")
		}
	}
	refresh, err := s.CacheToken(sess)
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("cache token issue failed")
	}
	return sess, refresh, nil
}

// SignOut revokes the session token.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, token)
}

// IssueVerification creates a verification token for the user's email,
// valid for 24 hours, and returns the user together with the token.
func (s *AuthService) IssueVerification(ctx context.Context, userID string) (*entity.User, string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, "", ErrUserNotFound
	}
	tok, err := helpers.GenToken(32)
	if err != nil {
		return nil, "", err
	}
	if err := s.Tokens.Set(ctx, keyVerifyToken(tok), u.ID, 24*time.Hour); err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

// ConfirmVerification redeems a verification token and marks the
// account's email as verified.
func (s *AuthService) ConfirmVerification(ctx context.Context, token string) error {
	uid, err := s.Tokens.Get(ctx, keyVerifyToken(token))
	if err != nil {
		return err
	}
	if uid == "" {
		return ErrInvalidToken
	}
	if err := s.Repo.SetEmailVerified(ctx, uid); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return s.Tokens.Del(ctx, keyVerifyToken(token))
}
