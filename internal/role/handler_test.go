// AngelaMos | 2026
// handler_test.go

package role_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
	"github.com/carterperez-dev/templates/membership-api/internal/role"
)

func asRole(r role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithClaims(req.Context(), &middleware.AccessTokenClaims{
				UserID: "u-1",
				Role:   r.String(),
			})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func TestMyPermissions(t *testing.T) {
	router := chi.NewRouter()
	role.NewHandler(role.DefaultTable()).RegisterRoutes(router, asRole(role.NationalAdmin))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/me/permissions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data role.RolePermissions `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "NATIONAL_ADMIN", body.Data.Role)
	require.Equal(t, "NATIONAL ADMIN", body.Data.DisplayName)
	require.True(t, body.Data.Permissions.ManagePayments)
	require.False(t, body.Data.Permissions.ManageSystem)
}

func TestListPermissionsCoversEveryRole(t *testing.T) {
	router := chi.NewRouter()
	role.NewHandler(role.DefaultTable()).RegisterRoutes(router, asRole(role.Member))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/permissions", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []role.RolePermissions `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, len(role.All))
	require.Equal(t, "SUPER_ADMIN", body.Data[0].Role)
}
