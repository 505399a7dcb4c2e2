package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nimbusworks/accounts-api/config"
	"github.com/nimbusworks/accounts-api/internal/application"
	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	"github.com/nimbusworks/accounts-api/internal/interface/middleware"
	"github.com/nimbusworks/accounts-api/pkg/helpers"
	"github.com/nimbusworks/accounts-api/pkg/mailer"
	"github.com/nimbusworks/accounts-api/pkg/response"
	"github.com/nimbusworks/accounts-api/pkg/validation"
)

// AuthAPI is the application surface the auth endpoints need.
type AuthAPI interface {
	SignInEmail(ctx context.Context, email, password string) (*entity.User, *entity.Session, error)
	SignInUsername(ctx context.Context, username, password string) (*entity.User, *entity.Session, error)
	SignOut(ctx context.Context, token string) error
	CacheToken(sess *entity.Session) (string, error)
	IssueVerification(ctx context.Context, userID string) (*entity.User, string, error)
	ConfirmVerification(ctx context.Context, token string) error
}

// Publisher enqueues outbound email jobs. Implemented by
// helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type AuthHandler struct {
	Svc     AuthAPI
	Users   middleware.UserLoader
	Cookies *helpers.CookieManager
	Pub     Publisher
	Logger  *logrus.Logger
	Cfg     *config.Config
}

func NewAuthHandler(svc AuthAPI, users middleware.UserLoader, cookies *helpers.CookieManager, pub Publisher, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Svc: svc, Users: users, Cookies: cookies, Pub: pub, Logger: logger, Cfg: cfg}
}

type signInEmailRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signInUsernameRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUpDisabled rejects all public sign-up attempts. Accounts are
// created internally (admin bootstrap) only.
func (h *AuthHandler) SignUpDisabled(c *gin.Context) {
	response.Error(c, http.StatusForbidden, "Public signup is disabled. Contact an administrator.", response.CodeForbidden, nil)
}

// SignInEmail authenticates with email + password and sets the session
// cookies.
func (h *AuthHandler) SignInEmail(c *gin.Context) {
	var req signInEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, validation.ToDetails(err))
		return
	}
	u, sess, err := h.Svc.SignInEmail(c.Request.Context(), req.Email, req.Password)
	h.finishSignIn(c, u, sess, err)
}

// SignInUsername authenticates with username + password.
func (h *AuthHandler) SignInUsername(c *gin.Context) {
	var req signInUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, validation.ToDetails(err))
		return
	}
	u, sess, err := h.Svc.SignInUsername(c.Request.Context(), req.Username, req.Password)
	h.finishSignIn(c, u, sess, err)
}

func (h *AuthHandler) finishSignIn(c *gin.Context, u *entity.User, sess *entity.Session, err error) {
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "invalid credentials", response.CodeInvalidCredentials, nil)
		case errors.Is(err, application.ErrBanned):
			response.Error(c, http.StatusForbidden, "account is banned", response.CodeBanned, nil)
		default:
			h.Logger.WithError(err).Error("sign-in failed")
			response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
		}
		return
	}

	cache, cerr := h.Svc.CacheToken(sess)
	if cerr != nil {
		h.Logger.WithError(cerr).Warn("cache token issue failed")
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt, cache, sess.ExpiresAt)

	response.Success(c, http.StatusOK, "signed in", gin.H{
		"token":   sess.Token,
		"user":    u.Public(),
		"session": sess,
	}, nil)
}

// SignOut revokes the current session and clears cookies.
func (h *AuthHandler) SignOut(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "missing session", response.CodeUnauthorized, nil)
		return
	}
	if err := h.Svc.SignOut(c.Request.Context(), sess.Token); err != nil {
		h.Logger.WithError(err).Warn("sign-out failed")
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, "signed out", gin.H{"signedOut": true}, nil)
}

// GetSession returns the resolved session and its subject.
func (h *AuthHandler) GetSession(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "missing session", response.CodeUnauthorized, nil)
		return
	}
	u, err := h.Users.GetProfile(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusUnauthorized, "unknown session subject", response.CodeUnauthorized, nil)
			return
		}
		h.Logger.WithError(err).Error("get session failed")
		response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
		return
	}
	response.Success(c, http.StatusOK, "session", gin.H{
		"session": sess,
		"user":    u.Public(),
	}, nil)
}

// VerifyInit issues an email verification link and enqueues the email.
func (h *AuthHandler) VerifyInit(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "missing session", response.CodeUnauthorized, nil)
		return
	}
	u, tok, err := h.Svc.IssueVerification(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found", response.CodeUserNotFound, nil)
			return
		}
		h.Logger.WithError(err).Error("verification issue failed")
		response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
		return
	}
	if u.EmailVerified {
		response.Success(c, http.StatusOK, "already verified", gin.H{"alreadyVerified": true}, nil)
		return
	}

	link := h.Cfg.VerifyEmailURL + "?token=" + tok
	if h.Pub != nil && h.Cfg.MailSendEnabled {
		job := mailer.EmailJob{
			To:       u.Email,
			Template: mailer.TemplateVerifyEmail,
			Data: map[string]any{
				"Name":      u.Name,
				"AppName":   h.Cfg.AppName,
				"VerifyURL": link,
			},
		}
		if perr := h.Pub.PublishJSON(c.Request.Context(), job); perr != nil {
			h.Logger.WithError(perr).Warn("failed to enqueue verification email")
		}
	}

	response.Success(c, http.StatusOK, "verification link", gin.H{"verifyLink": link}, nil)
}

type verifyConfirmRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyConfirm redeems a verification token.
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req verifyConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "validation error", response.CodeValidation, validation.ToDetails(err))
		return
	}
	if err := h.Svc.ConfirmVerification(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, application.ErrInvalidToken) {
			response.Error(c, http.StatusBadRequest, "invalid or expired token", response.CodeValidation, nil)
			return
		}
		h.Logger.WithError(err).Error("verification confirm failed")
		response.Error(c, http.StatusInternalServerError, "internal server error", response.CodeInternal, nil)
		return
	}
	response.Success(c, http.StatusOK, "email verified", gin.H{"verified": true}, nil)
}
