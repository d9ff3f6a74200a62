// AngelaMos | 2026
// routes.go

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/membership-api/internal/admin"
	"github.com/carterperez-dev/templates/membership-api/internal/auth"
	"github.com/carterperez-dev/templates/membership-api/internal/eid"
	"github.com/carterperez-dev/templates/membership-api/internal/health"
	"github.com/carterperez-dev/templates/membership-api/internal/property"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

type routes struct {
	health     *health.Handler
	auth       *auth.Handler
	users      *user.Handler
	roles      *role.Handler
	cards      *eid.Handler
	properties *property.Handler
	admin      *admin.Handler

	permissions       *role.Table
	authenticator     func(http.Handler) http.Handler
	credentialLimiter func(http.Handler) http.Handler
	cardLimits        eid.Limits
}

// mount puts the health checks at the root and the API under /v1.
func (rt routes) mount(router chi.Router) {
	rt.health.RegisterRoutes(router)

	router.Route("/v1", func(r chi.Router) {
		rt.auth.RegisterRoutes(r, rt.authenticator, rt.credentialLimiter)
		rt.users.RegisterRoutes(r, rt.authenticator)
		rt.users.RegisterAdminRoutes(r, rt.authenticator, rt.permissions)
		rt.roles.RegisterRoutes(r, rt.authenticator)
		rt.cards.RegisterRoutes(r, rt.authenticator, rt.cardLimits)
		rt.cards.RegisterAdminRoutes(r, rt.authenticator, rt.permissions)
		rt.properties.RegisterRoutes(r, rt.authenticator, rt.permissions)
		rt.admin.RegisterRoutes(r, rt.authenticator, rt.permissions)
	})
}
