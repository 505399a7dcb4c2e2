package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nimbusworks/accounts-api/internal/container"
	handlers "github.com/nimbusworks/accounts-api/internal/interface/http"
	"github.com/nimbusworks/accounts-api/internal/interface/middleware"
)

// UserModule owns the self-service /api/users/* surface.
// All routes require a session; the profile update body is validated
// before the handler runs.
type UserModule struct {
	Handler *handlers.UserHandler
	Guard   gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, guard gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Guard: guard}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(m.Guard)
	users.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyBySession(), nil),
	)
	{
		users.GET("/me", m.Handler.Me)
		users.PUT("/", middleware.ValidateBody[handlers.UpdateProfileRequest](), m.Handler.UpdateProfile)
		users.POST("/avatar", m.Handler.UploadAvatar)
	}
}
