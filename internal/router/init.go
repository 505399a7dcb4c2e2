package router

import (
	"github.com/nimbusworks/accounts-api/internal/application"
	"github.com/nimbusworks/accounts-api/internal/container"
	"github.com/nimbusworks/accounts-api/internal/infrastructure/postgres"
	"github.com/nimbusworks/accounts-api/internal/infrastructure/redisstore"
	handlers "github.com/nimbusworks/accounts-api/internal/interface/http"
	"github.com/nimbusworks/accounts-api/internal/interface/middleware"
	"github.com/nimbusworks/accounts-api/internal/router/modules"
	"github.com/nimbusworks/accounts-api/pkg/helpers"
)

// Deps holds the wired application services so callers outside the
// router (admin bootstrap, workers) can reuse them.
type Deps struct {
	Repo  *postgres.UserRepository
	Auth  *application.AuthService
	Users *application.UserService
	Admin *application.AdminService
}

// InitModules wires all feature modules from the container singletons
// and registers them with the registry. Called once during startup.
func InitModules(r *Registry) Deps {
	cfg := container.GetConfig()
	log := container.GetLogger()

	repo := postgres.NewUserRepository(container.GetPGPool())
	sessions := redisstore.NewSessionStore(container.GetRedis())
	tokens := redisstore.NewKV(container.GetRedis())

	authSvc := application.NewAuthService(repo, sessions, tokens, container.GetSessionCache(), log, cfg.SessionTTL, cfg.SessionUpdateAge)
	userSvc := application.NewUserService(repo, container.GetGCS(), cfg.GCSBucket, log, container.GetES(), cfg.ESUsersIndex)
	adminSvc := application.NewAdminService(repo, log)

	cookies := helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure)
	guard := middleware.SessionGuard(authSvc, cookies)
	requireAdmin := middleware.RequireAdmin(userSvc)

	var pub handlers.Publisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	authHandler := handlers.NewAuthHandler(authSvc, userSvc, cookies, pub, log, cfg)
	userHandler := handlers.NewUserHandler(userSvc, log)
	adminHandler := handlers.NewAdminHandler(adminSvc, userSvc, log)

	r.Add(modules.NewAuthModule(authHandler, guard))
	r.Add(modules.NewUserModule(userHandler, guard))
	r.Add(modules.NewAdminModule(adminHandler, guard, requireAdmin))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}

	return Deps{Repo: repo, Auth: authSvc, Users: userSvc, Admin: adminSvc}
}
