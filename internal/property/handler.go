// AngelaMos | 2026
// handler.go

package property

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

type ActorResolver interface {
	ResolveActor(ctx context.Context, userID, roleName string) (*user.Actor, error)
}

type Handler struct {
	service   *Service
	actors    ActorResolver
	validator *validator.Validate
}

func NewHandler(service *Service, actors ActorResolver) *Handler {
	return &Handler{
		service:   service,
		actors:    actors,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	table *role.Table,
) {
	r.Route("/properties", func(r chi.Router) {
		r.Use(authenticator)
		r.Get("/", h.List)
		r.Get("/{propertyID}", h.Get)
	})

	r.Route("/admin/properties", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(table.Require(role.ManageProperties))

		r.Post("/", h.Create)
		r.Put("/{propertyID}", h.Update)
		r.Delete("/{propertyID}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Page:      queryInt(q.Get("page"), 1),
		PageSize:  queryInt(q.Get("page_size"), 20),
		StateCode: q.Get("state_code"),
		Category:  q.Get("category"),
	}
	params.Normalize()

	props, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToPropertyResponseList(props), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		writePropertyError(w, err)
		return
	}

	core.OK(w, ToPropertyResponse(p))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreatePropertyRequest
	if err := core.DecodeJSON(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	p, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		writePropertyError(w, err)
		return
	}

	core.Created(w, ToPropertyResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req UpdatePropertyRequest
	if err := core.DecodeJSON(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	p, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "propertyID"), req)
	if err != nil {
		writePropertyError(w, err)
		return
	}

	core.OK(w, ToPropertyResponse(p))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "propertyID")); err != nil {
		writePropertyError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*user.Actor, bool) {
	actor, err := h.actors.ResolveActor(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.GetUserRole(r.Context()),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.Unauthorized(w, "account no longer exists")
			return nil, false
		}
		core.JSONError(w, err)
		return nil, false
	}
	return actor, true
}

func writePropertyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "property")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "property is outside your state")
	default:
		core.JSONError(w, err)
	}
}

func queryInt(val string, defaultVal int) int {
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
