// AngelaMos | 2026
// handler.go

package eid

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

// Members is the slice of the identity store the card endpoints read.
type Members interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	ResolveActor(ctx context.Context, userID, roleName string) (*user.Actor, error)
	GetUserFor(ctx context.Context, actor *user.Actor, id string) (*user.User, error)
}

type Handler struct {
	service *Service
	members Members
}

func NewHandler(service *Service, members Members) *Handler {
	return &Handler{service: service, members: members}
}

// Limits holds the per-route limiters of the card endpoints. Nil fields
// leave the route unguarded.
type Limits struct {
	// Render guards the endpoints that render SVG.
	Render func(http.Handler) http.Handler
	// Verify guards the public lookup, which answers without a credential.
	Verify func(http.Handler) http.Handler
}

func with(r chi.Router, mw func(http.Handler) http.Handler) chi.Router {
	if mw == nil {
		return r
	}
	return r.With(mw)
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limits Limits,
) {
	r.Route("/eid", func(r chi.Router) {
		with(r, limits.Verify).Get("/verify/{shortID}", h.Verify)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMine)
			r.Get("/me/svg", h.GetMineSVG)

			render := with(r, limits.Render)
			render.Post("/me", h.GenerateMine)
			render.Post("/me/regenerate", h.RegenerateMine)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	table *role.Table,
) {
	r.Route("/admin/eid", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(table.Require(role.ViewAnalytics))

		r.Get("/{userID}", h.GetForUser)
	})
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.GetForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeCardError(w, err, "card")
		return
	}

	core.OK(w, ToCardResponse(card))
}

func (h *Handler) GenerateMine(w http.ResponseWriter, r *http.Request) {
	holder, ok := h.holder(w, r)
	if !ok {
		return
	}

	card, err := h.service.GenerateForUser(r.Context(), holder)
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	core.OK(w, ToCardResponse(card))
}

func (h *Handler) RegenerateMine(w http.ResponseWriter, r *http.Request) {
	holder, ok := h.holder(w, r)
	if !ok {
		return
	}

	card, err := h.service.Regenerate(r.Context(), holder)
	if err != nil {
		writeGenerateError(w, err)
		return
	}

	core.OK(w, ToCardResponse(card))
}

func (h *Handler) GetMineSVG(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.GetForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeCardError(w, err, "card")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "private, no-cache")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // client went away
	_, _ = w.Write([]byte(card.SVG))
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Verify(r.Context(), chi.URLParam(r, "shortID"))
	if err != nil {
		writeCardError(w, err, "card")
		return
	}

	core.OK(w, v)
}

func (h *Handler) GetForUser(w http.ResponseWriter, r *http.Request) {
	actor, err := h.members.ResolveActor(
		r.Context(),
		middleware.GetUserID(r.Context()),
		middleware.GetUserRole(r.Context()),
	)
	if err != nil {
		writeCardError(w, err, "user")
		return
	}

	target, err := h.members.GetUserFor(r.Context(), actor, chi.URLParam(r, "userID"))
	if err != nil {
		writeCardError(w, err, "user")
		return
	}

	card, err := h.service.GetForUser(r.Context(), target.ID)
	if err != nil {
		writeCardError(w, err, "card")
		return
	}

	core.OK(w, ToCardResponse(card))
}

// holder loads the caller's current record so the card reflects it rather
// than the possibly stale token claims.
func (h *Handler) holder(w http.ResponseWriter, r *http.Request) (CardData, bool) {
	u, err := h.members.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeCardError(w, err, "user")
		return CardData{}, false
	}

	return HolderFromUser(u), true
}

func HolderFromUser(u *user.User) CardData {
	return CardData{
		UserID:          u.ID,
		FullName:        u.FullName,
		StateCode:       u.StateCode,
		DeploymentState: u.DeploymentState,
		Role:            u.Role,
	}
}

func writeCardError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "insufficient permissions")
	default:
		core.JSONError(w, err)
	}
}

func writeGenerateError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "user")
		return
	}
	core.JSONError(w, core.NewAppError(
		err,
		"unable to generate card",
		http.StatusInternalServerError,
		core.CodeInternal,
	))
}
