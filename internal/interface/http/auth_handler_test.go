package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusworks/accounts-api/config"
	"github.com/nimbusworks/accounts-api/internal/application"
	"github.com/nimbusworks/accounts-api/internal/domain/entity"
	"github.com/nimbusworks/accounts-api/pkg/helpers"
	"github.com/nimbusworks/accounts-api/pkg/mailer"
)

type stubAuth struct {
	user *entity.User
	sess *entity.Session
	err  error

	signedOutToken string
	verifyToken    string
	confirmedToken string
	confirmErr     error
}

func (s *stubAuth) SignInEmail(_ context.Context, _, _ string) (*entity.User, *entity.Session, error) {
	return s.user, s.sess, s.err
}

func (s *stubAuth) SignInUsername(_ context.Context, _, _ string) (*entity.User, *entity.Session, error) {
	return s.user, s.sess, s.err
}

func (s *stubAuth) SignOut(_ context.Context, token string) error {
	s.signedOutToken = token
	return nil
}

func (s *stubAuth) CacheToken(*entity.Session) (string, error) {
	return "cache-token", nil
}

func (s *stubAuth) IssueVerification(_ context.Context, _ string) (*entity.User, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.user, s.verifyToken, nil
}

func (s *stubAuth) ConfirmVerification(_ context.Context, token string) error {
	if s.confirmErr != nil {
		return s.confirmErr
	}
	s.confirmedToken = token
	return nil
}

type stubPublisher struct {
	jobs []mailer.EmailJob
}

func (p *stubPublisher) PublishJSON(_ context.Context, body any) error {
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:         "accounts-api",
		VerifyEmailURL:  "http://localhost:4000/verify-email",
		MailSendEnabled: true,
	}
}

func authRouter(svc *stubAuth, pub Publisher, sessionUserID string) *gin.Engine {
	users := &stubProfiles{user: svc.user}
	h := NewAuthHandler(svc, users, helpers.NewCookieManager("localhost", false), pub, testLogger(), testConfig())
	r := gin.New()
	r.POST("/api/auth/sign-up/email", h.SignUpDisabled)
	r.POST("/api/auth/sign-in/email", h.SignInEmail)
	r.POST("/api/auth/sign-in/username", h.SignInUsername)
	r.POST("/api/auth/sign-out", attachSession(sessionUserID), h.SignOut)
	r.GET("/api/auth/get-session", attachSession(sessionUserID), h.GetSession)
	r.POST("/api/auth/verify/init", attachSession(sessionUserID), h.VerifyInit)
	r.POST("/api/auth/verify/confirm", h.VerifyConfirm)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSignUpDisabled(t *testing.T) {
	svc := &stubAuth{user: baseUser()}
	w := postJSON(authRouter(svc, nil, ""), "/api/auth/sign-up/email", `{"email":"x@y.com","password":"hunter22"}`)

	require.Equal(t, http.StatusForbidden, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "Public signup is disabled. Contact an administrator.", env.Message)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestSignInEmail_Success(t *testing.T) {
	u := baseUser()
	sess := &entity.Session{Token: "tok", UserID: u.ID, ExpiresAt: time.Now().Add(8 * time.Hour)}
	svc := &stubAuth{user: u, sess: sess}

	w := postJSON(authRouter(svc, nil, ""), "/api/auth/sign-in/email", `{"email":"alice@example.com","password":"hunter22"}`)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "tok", env.Data["token"])
	user, ok := env.Data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])

	cookies := map[string]string{}
	for _, ck := range w.Result().Cookies() {
		cookies[ck.Name] = ck.Value
	}
	assert.Equal(t, "tok", cookies[helpers.SessionCookie])
	assert.Equal(t, "cache-token", cookies[helpers.SessionCacheCookie])
}

func TestSignInEmail_InvalidBody(t *testing.T) {
	svc := &stubAuth{}
	w := postJSON(authRouter(svc, nil, ""), "/api/auth/sign-in/email", `{"email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignInEmail_BadCredentials(t *testing.T) {
	svc := &stubAuth{err: application.ErrInvalidCredentials}
	w := postJSON(authRouter(svc, nil, ""), "/api/auth/sign-in/email", `{"email":"alice@example.com","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestSignInUsername_Banned(t *testing.T) {
	svc := &stubAuth{err: application.ErrBanned}
	w := postJSON(authRouter(svc, nil, ""), "/api/auth/sign-in/username", `{"username":"alice","password":"hunter22"}`)

	require.Equal(t, http.StatusForbidden, w.Code)
	env := decode(t, w)
	assert.Equal(t, "BANNED", env.Error.Code)
}

func TestSignOut(t *testing.T) {
	svc := &stubAuth{user: baseUser()}
	w := postJSON(authRouter(svc, nil, "u-1"), "/api/auth/sign-out", `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", svc.signedOutToken)

	cleared := 0
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			cleared++
		}
	}
	assert.Equal(t, 2, cleared, "both session cookies are cleared")
}

func TestGetSession(t *testing.T) {
	svc := &stubAuth{user: baseUser()}
	r := authRouter(svc, nil, "u-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/get-session", nil))

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	sess, ok := env.Data["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u-1", sess["userId"])
	assert.NotContains(t, sess, "token", "opaque token never appears in the session view")
}

func TestVerifyInit_EnqueuesEmail(t *testing.T) {
	svc := &stubAuth{user: baseUser(), verifyToken: "vt-123"}
	pub := &stubPublisher{}
	w := postJSON(authRouter(svc, pub, "u-1"), "/api/auth/verify/init", `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "http://localhost:4000/verify-email?token=vt-123", env.Data["verifyLink"])

	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, mailer.TemplateVerifyEmail, job.Template)
	assert.Equal(t, "http://localhost:4000/verify-email?token=vt-123", job.Data["VerifyURL"])
}

func TestVerifyInit_AlreadyVerified(t *testing.T) {
	u := baseUser()
	u.EmailVerified = true
	svc := &stubAuth{user: u, verifyToken: "vt-123"}
	pub := &stubPublisher{}
	w := postJSON(authRouter(svc, pub, "u-1"), "/api/auth/verify/init", `{}`)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, true, env.Data["alreadyVerified"])
	assert.Empty(t, pub.jobs)
}

func TestVerifyConfirm(t *testing.T) {
	svc := &stubAuth{user: baseUser()}
	w := postJSON(authRouter(svc, nil, ""), "/api/auth/verify/confirm", `{"token":"vt-123"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vt-123", svc.confirmedToken)
}

func TestVerifyConfirm_InvalidToken(t *testing.T) {
	svc := &stubAuth{confirmErr: application.ErrInvalidToken}
	w := postJSON(authRouter(svc, nil, ""), "/api/auth/verify/confirm", `{"token":"bogus"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
