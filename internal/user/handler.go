// AngelaMos | 2026
// handler.go

package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
	})
}

// RegisterAdminRoutes mounts /admin/users. Each route's allow-list comes
// from the permission table.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	table *role.Table,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)

		r.With(table.Require(role.ViewAnalytics)).Get("/", h.ListUsers)
		r.With(table.Require(role.CreateUsers)).Post("/", h.CreateUser)
		r.With(table.Require(role.EditUsers)).Get("/{userID}", h.GetUser)
		r.With(table.Require(role.EditUsers)).Put("/{userID}", h.UpdateUser)

		r.Group(func(r chi.Router) {
			r.Use(table.Require(role.DeleteUsers))
			r.Put("/{userID}/role", h.UpdateUserRole)
			r.Post("/{userID}/activate", h.ActivateUser)
			r.Delete("/{userID}", h.DeactivateUser)
		})
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := core.DecodeJSON(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.UpdateMe(
		r.Context(),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	params := ListUsersParams{
		Page:      parseIntQuery(r, "page", 1),
		PageSize:  parseIntQuery(r, "page_size", 20),
		Search:    q.Get("search"),
		Role:      q.Get("role"),
		StateCode: q.Get("state_code"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), actor, params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := core.DecodeJSON(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), actor, req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		writeUserError(w, err)
		return
	}

	core.Created(w, ToUserResponse(user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUserFor(r.Context(), actor, chi.URLParam(r, "userID"))
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := core.DecodeJSON(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.UpdateUser(
		r.Context(),
		actor,
		chi.URLParam(r, "userID"),
		req,
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRoleRequest
	if err := core.DecodeJSON(r, &req, h.validator); err != nil {
		core.JSONError(w, err)
		return
	}

	user, err := h.service.UpdateUserRole(
		r.Context(),
		chi.URLParam(r, "userID"),
		req.Role,
	)
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user))
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	err := h.service.Deactivate(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "super admin accounts cannot be deactivated")
			return
		}
		writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Activate(r.Context(), chi.URLParam(r, "userID")); err != nil {
		writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*Actor, bool) {
	actor, err := h.service.ResolveActor(
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

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "insufficient permissions")
	default:
		core.JSONError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
