// AngelaMos | 2026
// handler.go

package role

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
)

// Require builds the authorization gate for c from the table itself, so the
// enforced allow-list and the advertised flags cannot drift apart.
func (t *Table) Require(c Capability) func(http.Handler) http.Handler {
	return middleware.RequireRole(Strings(t.AllowList(c))...)
}

type Handler struct {
	table *Table
}

func NewHandler(table *Table) *Handler {
	return &Handler{table: table}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/roles", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/permissions", h.ListPermissions)
		r.Get("/me/permissions", h.MyPermissions)
	})
}

type RolePermissions struct {
	Role        string        `json:"role"`
	DisplayName string        `json:"display_name"`
	Permissions PermissionSet `json:"permissions"`
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	out := make([]RolePermissions, 0, len(All))
	for _, role := range All {
		out = append(out, RolePermissions{
			Role:        role.String(),
			DisplayName: role.DisplayName(),
			Permissions: h.table.Permissions(role),
		})
	}

	core.OK(w, out)
}

func (h *Handler) MyPermissions(w http.ResponseWriter, r *http.Request) {
	current, err := Parse(middleware.GetUserRole(r.Context()))
	if err != nil {
		core.Forbidden(w, "unknown role")
		return
	}

	core.OK(w, RolePermissions{
		Role:        current.String(),
		DisplayName: current.DisplayName(),
		Permissions: h.table.Permissions(current),
	})
}
