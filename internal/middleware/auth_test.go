package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/authctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, m *AuthMiddleware, authz string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotUID string
	handler := m.RequireAuth(func(c echo.Context) error {
		gotUID = authctx.UID(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, gotUID
}

func TestRequireAuthAcceptsSessionToken(t *testing.T) {
	m, err := New(context.Background(), testSecret, "")
	require.NoError(t, err)

	token := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "local:abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	rec, uid := doRequest(t, m, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "local:abc", uid)
}

func TestRequireAuthRejects(t *testing.T) {
	m, err := New(context.Background(), testSecret, "")
	require.NoError(t, err)

	expired := signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "local:abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	wrongKey := signToken(t, "some-other-secret", jwt.RegisteredClaims{
		Subject:   "local:abc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	cases := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, uid := doRequest(t, m, tc.authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, uid)
		})
	}
}
