// AngelaMos | 2026
// handler_test.go

package eid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
	"github.com/carterperez-dev/templates/membership-api/internal/user"
)

type stubMembers struct {
	users map[string]*user.User
}

func (s *stubMembers) GetUser(_ context.Context, id string) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return u, nil
}

func (s *stubMembers) ResolveActor(_ context.Context, userID, roleName string) (*user.Actor, error) {
	u, err := s.GetUser(context.Background(), userID)
	if err != nil {
		return nil, err
	}
	return &user.Actor{ID: u.ID, Role: role.Role(roleName), StateCode: u.StateCode}, nil
}

func (s *stubMembers) GetUserFor(ctx context.Context, actor *user.Actor, id string) (*user.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanSee(u.StateCode) {
		return nil, core.ErrForbidden
	}
	return u, nil
}

// fakeAuth admits any request carrying X-Test-User as that user.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Test-User")
		if id == "" {
			core.JSONError(w, core.ErrTokenMissing)
			return
		}
		ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
			UserID: id,
			Role:   r.Header.Get("X-Test-Role"),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newCardRouter(limits Limits) *chi.Mux {
	members := &stubMembers{users: map[string]*user.User{
		aisha.UserID: {
			ID:              aisha.UserID,
			FullName:        aisha.FullName,
			StateCode:       aisha.StateCode,
			DeploymentState: aisha.DeploymentState,
			Role:            aisha.Role,
			IsActive:        true,
		},
	}}
	h := NewHandler(NewService(newMemRepository(), testRenderer()), members)

	r := chi.NewRouter()
	h.RegisterRoutes(r, fakeAuth, limits)
	return r
}

func call(r http.Handler, method, path, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
		req.Header.Set("X-Test-Role", "MEMBER")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCardEndpointsRequireCredential(t *testing.T) {
	r := newCardRouter(Limits{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/eid/me"},
		{http.MethodPost, "/eid/me"},
		{http.MethodGet, "/eid/me/svg"},
	} {
		rec := call(r, tc.method, tc.path, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestCardLifecycleOverHTTP(t *testing.T) {
	r := newCardRouter(Limits{})

	rec := call(r, http.MethodGet, "/eid/me", aisha.UserID)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(r, http.MethodPost, "/eid/me", aisha.UserID)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool         `json:"success"`
		Data    CardResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.True(t, body.Success)
	require.Equal(t, "ABC123EF", body.Data.CardNumber)
	require.Contains(t, body.Data.SVG, "Aisha Bello")

	rec = call(r, http.MethodGet, "/eid/me/svg", aisha.UserID)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/svg+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, body.Data.SVG, rec.Body.String())

	rec = call(r, http.MethodGet, "/eid/verify/abc123ef", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateForUnknownHolder(t *testing.T) {
	rec := call(newCardRouter(Limits{}), http.MethodPost, "/eid/me", "ghost")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// denyAfter admits n requests, then answers 429.
func denyAfter(n int) func(http.Handler) http.Handler {
	var mu sync.Mutex
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			n--
			allowed := n >= 0
			mu.Unlock()
			if !allowed {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func TestVerifyHasItsOwnLimiter(t *testing.T) {
	r := newCardRouter(Limits{Verify: denyAfter(1)})

	rec := call(r, http.MethodPost, "/eid/me", aisha.UserID)
	require.Equal(t, http.StatusOK, rec.Code, "render is not guarded by the verify limiter")

	rec = call(r, http.MethodGet, "/eid/verify/abc123ef", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(r, http.MethodGet, "/eid/verify/abc123ef", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = call(r, http.MethodGet, "/eid/me", aisha.UserID)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRenderLimiterGuardsOnlyRendering(t *testing.T) {
	r := newCardRouter(Limits{Render: denyAfter(1)})

	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/eid/me", aisha.UserID).Code)
	require.Equal(t, http.StatusTooManyRequests,
		call(r, http.MethodPost, "/eid/me/regenerate", aisha.UserID).Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/eid/me/svg", aisha.UserID).Code)
}
