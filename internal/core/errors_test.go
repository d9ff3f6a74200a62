// AngelaMos | 2026
// errors_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("extract: %w", ErrTokenMissing), http.StatusUnauthorized, CodeMissingCredential},
		{ErrTokenMalformed, http.StatusUnauthorized, CodeMalformedCredential},
		{ErrTokenExpired, http.StatusUnauthorized, CodeExpiredCredential},
		{ErrTokenInvalid, http.StatusUnauthorized, CodeInvalidSignature},
		{ErrTokenRevoked, http.StatusUnauthorized, CodeRevokedCredential},
		{ErrUnauthorized, http.StatusUnauthorized, CodeUnauthenticated},
		{fmt.Errorf("get user: %w", ErrForbidden), http.StatusForbidden, CodeInsufficientPermissions},
		{ErrNotFound, http.StatusNotFound, CodeNotFound},
		{ErrDuplicateKey, http.StatusConflict, CodeConflict},
		{ErrInvalidInput, http.StatusBadRequest, CodeBadRequest},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		appErr := Translate(tt.err)
		require.Equal(t, tt.status, appErr.StatusCode, tt.err.Error())
		require.Equal(t, tt.code, appErr.Code, tt.err.Error())
	}
}

func TestTranslateKeepsAppError(t *testing.T) {
	custom := NewAppError(ErrForbidden, "super admin accounts cannot be deactivated", http.StatusForbidden, CodeInsufficientPermissions)

	require.Same(t, custom, Translate(fmt.Errorf("wrapped: %w", custom)))
	require.ErrorIs(t, custom, ErrForbidden)
}

func TestJSONErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, errors.New("dial tcp 10.0.0.5:5432: secret host"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "10.0.0.5")

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.False(t, body.Success)
	require.Equal(t, "internal server error", body.Message)
	require.Equal(t, CodeInternal, body.Code)
}

func TestValidationErrorListsFields(t *testing.T) {
	type payload struct {
		StateCode string `validate:"required"`
		Email     string `validate:"required,email"`
	}

	err := validator.New().Struct(payload{Email: "nope"})
	appErr := ValidationError(err)

	require.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	require.Equal(t, CodeValidationFailed, appErr.Code)
	require.ElementsMatch(t, []FieldError{
		{Field: "state_code", Rule: "required"},
		{Field: "email", Rule: "email"},
	}, appErr.Details)
}

func TestPaginatedMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []string{"a"}, 2, 20, 41)

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.True(t, body.Success)
	require.Equal(t, &PageMeta{Page: 2, PageSize: 20, Total: 41, TotalPages: 3}, body.Meta)
}
