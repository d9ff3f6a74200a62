// AngelaMos | 2026
// auth_test.go

package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/membership-api/internal/core"
	"github.com/carterperez-dev/templates/membership-api/internal/middleware"
)

type stubVerifier struct {
	claims *middleware.AccessTokenClaims
	err    error
	calls  int
}

func (s *stubVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (*middleware.AccessTokenClaims, error) {
	s.calls++
	return s.claims, s.err
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsAccessTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func serve(
	h func(http.Handler) http.Handler,
	authHeader string,
) (*httptest.ResponseRecorder, *bool, *middleware.AccessTokenClaims) {
	reached := false
	var seen *middleware.AccessTokenClaims

	handler := h(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seen = middleware.GetClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/eid/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, &reached, seen
}

func validClaims() *middleware.AccessTokenClaims {
	return &middleware.AccessTokenClaims{
		UserID:    "8a4b7c1e-0000-4000-8000-000000000001",
		Email:     "aisha@example.org",
		Role:      "MEMBER",
		TokenID:   "jti-1",
		ExpiresAt: time.Now().Add(time.Minute),
	}
}

func TestAuthenticatorMissingHeaderNeverReachesHandler(t *testing.T) {
	verifier := &stubVerifier{claims: validClaims()}

	rec, reached, _ := serve(middleware.Authenticator(verifier, nil), "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, *reached)
	require.Zero(t, verifier.calls)
	require.Equal(t, core.CodeMissingCredential, decode(t, rec).Code)
}

func TestAuthenticatorCredentialFailures(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		verifyEr error
		wantCode string
	}{
		{"empty bearer", "Bearer", nil, core.CodeMissingCredential},
		{"basic scheme", "Basic dXNlcjpwYXNz", nil, core.CodeMalformedCredential},
		{"malformed token", "Bearer abc", fmt.Errorf("verify: %w", core.ErrTokenMalformed), core.CodeMalformedCredential},
		{"expired token", "Bearer a.b.c", fmt.Errorf("verify: %w", core.ErrTokenExpired), core.CodeExpiredCredential},
		{"bad signature", "Bearer a.b.c", fmt.Errorf("verify: %w", core.ErrTokenInvalid), core.CodeInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &stubVerifier{err: tt.verifyEr}
			if tt.verifyEr == nil {
				verifier.claims = validClaims()
			}

			rec, reached, _ := serve(middleware.Authenticator(verifier, nil), tt.header)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.False(t, *reached)
			require.Equal(t, tt.wantCode, decode(t, rec).Code)
		})
	}
}

func TestAuthenticatorAttachesIdentity(t *testing.T) {
	claims := validClaims()
	verifier := &stubVerifier{claims: claims}

	rec, reached, seen := serve(middleware.Authenticator(verifier, nil), "bearer a.b.c")

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, *reached)
	require.Equal(t, claims, seen)
}

func TestAuthenticatorRevokedToken(t *testing.T) {
	verifier := &stubVerifier{claims: validClaims()}
	revocations := stubRevocations{revoked: map[string]bool{"jti-1": true}}

	rec, reached, _ := serve(middleware.Authenticator(verifier, revocations), "Bearer a.b.c")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, *reached)
	require.Equal(t, core.CodeRevokedCredential, decode(t, rec).Code)
}

func TestAuthenticatorBlacklistOutageFailsOpen(t *testing.T) {
	verifier := &stubVerifier{claims: validClaims()}
	revocations := stubRevocations{err: errors.New("redis down")}

	rec, reached, _ := serve(middleware.Authenticator(verifier, revocations), "Bearer a.b.c")

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, *reached)
}

func TestRequireRole(t *testing.T) {
	allow := []string{"SUPER_ADMIN", "NATIONAL_ADMIN"}
	roles := []string{
		"SUPER_ADMIN", "NATIONAL_ADMIN", "STATE_AMEER",
		"STATE_SECRETARY", "MCLO_AMEER", "MEMBER",
	}

	for _, r := range roles {
		t.Run(r, func(t *testing.T) {
			reached := false
			h := middleware.RequireRole(allow...)(http.HandlerFunc(
				func(w http.ResponseWriter, _ *http.Request) {
					reached = true
					w.WriteHeader(http.StatusOK)
				},
			))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(middleware.WithClaims(req.Context(), &middleware.AccessTokenClaims{
				UserID: "u", Role: r,
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			admitted := r == "SUPER_ADMIN" || r == "NATIONAL_ADMIN"
			require.Equal(t, admitted, reached)
			if admitted {
				require.Equal(t, http.StatusOK, rec.Code)
				return
			}
			require.Equal(t, http.StatusForbidden, rec.Code)
			require.Equal(t, core.CodeInsufficientPermissions, decode(t, rec).Code)
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	h := middleware.RequireRole("MEMBER")(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			t.Fatal("handler must not run")
		},
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"", "", core.ErrTokenMissing},
		{"Bearer", "", core.ErrTokenMissing},
		{"Token abc", "", core.ErrTokenMalformed},
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"BEARER   abc.def.ghi ", "abc.def.ghi", nil},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}

		got, err := middleware.ExtractToken(req)
		if tt.wantErr != nil {
			require.ErrorIs(t, err, tt.wantErr, tt.header)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}
