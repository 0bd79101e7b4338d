package middleware

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/mkurosawa/marketplace-backend/internal/authctx"
)

// AuthMiddleware resolves Bearer tokens to a uid. Locally issued HMAC
// session tokens are tried first, then Firebase ID tokens when a
// project is configured.
type AuthMiddleware struct {
	jwtSecret  []byte
	authClient *fbauth.Client
}

func New(ctx context.Context, jwtSecret, firebaseProjectID string) (*AuthMiddleware, error) {
	m := &AuthMiddleware{jwtSecret: []byte(jwtSecret)}
	if firebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: firebaseProjectID})
		if err != nil {
			return nil, err
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, err
		}
		m.authClient = client
	}
	return m, nil
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")

		uid := m.resolveUID(c.Request().Context(), tokenStr)
		if uid == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}
		c.SetRequest(c.Request().WithContext(authctx.WithUID(c.Request().Context(), uid)))
		return next(c)
	}
}

func (m *AuthMiddleware) resolveUID(ctx context.Context, tokenStr string) string {
	if uid := m.parseSessionToken(tokenStr); uid != "" {
		return uid
	}
	if m.authClient != nil {
		if token, err := m.authClient.VerifyIDToken(ctx, tokenStr); err == nil {
			return token.UID
		}
	}
	return ""
}

func (m *AuthMiddleware) parseSessionToken(tokenStr string) string {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// Client exposes the Firebase auth client for handlers that read
// provider profiles (nil when no project is configured).
func (m *AuthMiddleware) Client() *fbauth.Client {
	return m.authClient
}
