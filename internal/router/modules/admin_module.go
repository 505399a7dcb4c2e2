package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nimbusworks/accounts-api/internal/container"
	handlers "github.com/nimbusworks/accounts-api/internal/interface/http"
	"github.com/nimbusworks/accounts-api/internal/interface/middleware"
)

// AdminModule owns /api/admin/*. Every route requires a session whose
// user holds the admin role.
type AdminModule struct {
	Handler *handlers.AdminHandler
	Guard   gin.HandlerFunc
	Admin   gin.HandlerFunc
}

func NewAdminModule(h *handlers.AdminHandler, guard, admin gin.HandlerFunc) *AdminModule {
	return &AdminModule{Handler: h, Guard: guard, Admin: admin}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(m.Guard, m.Admin)
	admin.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyBySession(), nil))
	{
		admin.PUT("/users/:id/role", m.Handler.SetRole)
		admin.POST("/users/:id/ban", m.Handler.Ban)
		admin.DELETE("/users/:id/ban", m.Handler.Unban)
		admin.GET("/users/search", m.Handler.SearchUsers)
	}
}
