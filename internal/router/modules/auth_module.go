package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nimbusworks/accounts-api/internal/container"
	handlers "github.com/nimbusworks/accounts-api/internal/interface/http"
	"github.com/nimbusworks/accounts-api/internal/interface/middleware"
)

// AuthModule owns the /api/auth/* surface.
// Public: sign-up (disabled), sign-in by email or username, verify/confirm.
// Session-protected: sign-out, get-session, verify/init.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, guard gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Guard: guard}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signInLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	verifyConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/sign-up/email", m.Handler.SignUpDisabled)
	rg.POST("/auth/sign-in/email", signInLimiter, m.Handler.SignInEmail)
	rg.POST("/auth/sign-in/username", signInLimiter, m.Handler.SignInUsername)
	rg.POST("/auth/verify/confirm", verifyConfirmLimiter, m.Handler.VerifyConfirm)

	auth := rg.Group("/")
	auth.Use(m.Guard)
	{
		auth.POST("/auth/sign-out", m.Handler.SignOut)
		auth.GET("/auth/get-session", m.Handler.GetSession)
		auth.POST("/auth/verify/init",
			middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyBySession(), nil),
			m.Handler.VerifyInit)
	}
}
