package router

import (
	"github.com/oksasatya/go-gis-markers/internal/application"
	"github.com/oksasatya/go-gis-markers/internal/container"
	pginfra "github.com/oksasatya/go-gis-markers/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-gis-markers/internal/interface/http"
	"github.com/oksasatya/go-gis-markers/internal/router/modules"
)

type Services struct {
	Users   *application.UserService
	Markers *application.MarkerService
	Health  *application.HealthService
}

func buildServices(c *container.Container) Services {
	cfg := c.Config
	return Services{
		Users: application.NewUserService(
			pginfra.NewUserRepository(c.DB),
			c.JWT,
			c.Events,
			c.Logger,
			application.AccountPolicy{
				PasswordMinLength: cfg.PasswordMinLength,
				RequireEmail:      cfg.RequireEmail,
			},
		),
		Markers: application.NewMarkerService(pginfra.NewMarkerRepository(c.DB), c.Events, c.Logger),
		Health:  application.NewHealthService(pginfra.NewHealthRepository(c.DB)),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, c *container.Container) Services {
	svc := buildServices(c)
	errs := handlers.ErrorResponder{Logger: c.Logger, ExposeCause: c.Config.IsDevelopment()}

	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(svc.Health, c.Logger, c.Config.IsDevelopment())))
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(svc.Users, errs), c.RateCounter, c.Logger))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(svc.Users, errs), c.JWT))
	if c.Metrics != nil {
		r.Add(modules.NewDebugModule(c.Metrics, c.RateCounter, c.Logger))
	}
	r.AddAPI(modules.NewMarkerModule(handlers.NewMarkerHandler(svc.Markers, errs), c.JWT))
	return svc
}
