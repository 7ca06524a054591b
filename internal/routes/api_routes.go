package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/flightsurety/internal/api"
	"infinite-experiment/flightsurety/internal/constants"
	"infinite-experiment/flightsurety/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies, limiter *middleware.RateLimiter) {

	r.Route("/api/v1", func(v1 chi.Router) {
		// Public reads
		v1.Group(func(public chi.Router) {
			public.Use(limiter.Middleware)
			public.Get("/operational", handlers.GetOperational())
			public.Get("/airlines/{address}", handlers.GetAirline())
			public.Get("/flights", handlers.FlightsBoard())
			public.Get("/flights/{airline}/{flight}/{timestamp}", handlers.GetFlight())
		})

		// Every call below carries a caller token
		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.AuthMiddleware(deps.Services.Tokens))
			authed.Use(limiter.Middleware)
			authed.Use(middleware.CallerLogging)

			authed.Post("/airlines", handlers.RegisterAirline())
			authed.Post("/airlines/fund", handlers.FundAirline())
			authed.Post("/flights", handlers.RegisterFlight())
			authed.Post("/flights/{airline}/{flight}/{timestamp}/status", handlers.FetchFlightStatus())

			authed.Post("/insurance", handlers.BuyInsurance())
			authed.Get("/insurance/{airline}/{flight}/{timestamp}", handlers.GetInsurance())
			authed.Post("/insurance/{airline}/{flight}/{timestamp}/claim", handlers.ClaimInsurance())
			authed.Post("/insurance/{airline}/{flight}/{timestamp}/withdraw", handlers.WithdrawInsurance())
			authed.Get("/passengers/me/policies", handlers.MyPolicies())

			// Oracle-only group
			authed.Group(func(oracle chi.Router) {
				oracle.Use(middleware.RequireRole(constants.RoleOracle))
				oracle.Post("/oracles", handlers.RegisterOracle())
				oracle.Get("/oracles/me/indexes", handlers.GetMyIndexes())
				oracle.Post("/oracles/responses", handlers.SubmitOracleResponse())
			})

			// Owner-only group
			authed.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireRole(constants.RoleOwner))
				admin.Post("/admin/operating-status", handlers.SetOperatingStatus())
				admin.Post("/admin/authorized-caller", handlers.SetAuthorizedCaller())
			})
		})
	})
}
