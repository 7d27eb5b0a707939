package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetJWTSecret("test-secret")
}

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken(userID, "ada@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "ada@example.com")
	require.NoError(t, err)

	SetJWTSecret("a-different-secret")
	defer SetJWTSecret("test-secret")

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTMiddlewareRequiresCookie(t *testing.T) {
	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a cookie")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/call/myself", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddlewarePutsUserInContext(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateToken(userID, "ada@example.com")
	require.NoError(t, err)

	var gotID uuid.UUID
	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		require.True(t, ok)
		gotID = id
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/call/myself", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, gotID)
}

func TestAuthCookieFlags(t *testing.T) {
	rec := httptest.NewRecorder()
	SetAuthCookie(rec, "some-token")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, AuthCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
}
