package router

import (
	"hotel/config"
	_ "hotel/docs" // swagger spec
	"hotel/infras/metrics"
	"hotel/internal/handlers/auth"
	"hotel/internal/handlers/booking"
	"hotel/internal/handlers/room"
	"hotel/internal/handlers/user"
	"hotel/shared/constant"
	"hotel/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type DomainHandlers struct {
	Auth    auth.Handler
	User    user.Handler
	Room    room.Handler
	Booking booking.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	AuthRole       middleware.AuthRole
	Config         *config.Config
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
		r.App.Recover,
		r.App.Logger,
		r.App.CORS(),
		r.App.Tracing,
	)

	if r.Config.Metrics.Enable {
		router.Handle(r.Config.Metrics.Path, metrics.Handler())
	}

	if r.Config.Server.Env != constant.ServerEnvProduction {
		router.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	router.Group(func(routerGroup chi.Router) {
		routerGroup.Use(r.App.RateLimit(), r.AuthRole.APIKey, r.AuthRole.Auth, r.AuthRole.RBAC)

		routerGroup.Route("/v1", func(v1 chi.Router) {
			r.DomainHandlers.Auth.Router(v1)
			r.DomainHandlers.User.Router(v1)
			r.DomainHandlers.Room.Router(v1)
			r.DomainHandlers.Booking.Router(v1)
		})
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole, cfg *config.Config) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		AuthRole:       authRole,
		Config:         cfg,
	}
}
