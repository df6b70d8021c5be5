package api

import (
	"passport-admin-go/internal/api/handlers"
	"passport-admin-go/internal/domain/passport"
)

// Handlers groups every HTTP handler of the service.
type Handlers struct {
	Records   *handlers.RecordsHandler
	Passport  *handlers.PassportHandler
	Dashboard *handlers.DashboardHandler
	Health    *handlers.HealthHandler
}

func NewHandlers(service passport.Service, breakers ...handlers.GuardedDependency) *Handlers {
	return &Handlers{
		Records:   handlers.NewRecordsHandler(service),
		Passport:  handlers.NewPassportHandler(service),
		Dashboard: handlers.NewDashboardHandler(service),
		Health:    handlers.NewHealthHandler(breakers...),
	}
}
