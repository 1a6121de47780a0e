package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func seedUser(t *testing.T, s *store.MemoryStore, email, password string, role models.UserRole) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func newAuthApp(s *store.MemoryStore) *fiber.App {
	app := fiber.New()
	app.Post("/api/auth/login", LoginHandler(s, testSecret))
	app.Post("/api/auth/logout", LogoutHandler(testSecret, nil))
	app.Post("/api/auth/register-super-admin", RegisterSuperAdminHandler(s, "admin@circulyte.com"))

	protected := app.Group("/api", JWTMiddleware(testSecret), RequireRole(models.RoleAdmin))
	protected.Get("/auth/me", MeHandler(s))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, &models.User{ID: "u1", Email: "a@b.c", Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)

	_, err = ParseToken("another-secret-another-secret-xx", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	claims := &JWTCustomClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	s := store.NewMemoryStore()
	seedUser(t, s, "admin@circulyte.com", "secret123", models.RoleAdmin)
	seedUser(t, s, "sorter@circulyte.com", "secret123", models.RoleSorter)
	app := newAuthApp(s)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"admin", `{"email":" Admin@Circulyte.com ","password":"secret123"}`, fiber.StatusOK},
		{"wrong password", `{"email":"admin@circulyte.com","password":"nope"}`, fiber.StatusUnauthorized},
		{"unknown email", `{"email":"ghost@circulyte.com","password":"secret123"}`, fiber.StatusUnauthorized},
		{"non admin role", `{"email":"sorter@circulyte.com","password":"secret123"}`, fiber.StatusForbidden},
		{"missing fields", `{"email":""}`, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/auth/login", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status != fiber.StatusOK {
				return
			}
			var body struct {
				Token string       `json:"token"`
				User  UserResponse `json:"user"`
			}
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.NotEmpty(t, body.Token)
			assert.Equal(t, models.RoleAdmin, body.User.Role)
		})
	}
}

func TestMeRequiresAdminToken(t *testing.T) {
	s := store.NewMemoryStore()
	admin := seedUser(t, s, "admin@circulyte.com", "secret123", models.RoleAdmin)
	app := newAuthApp(s)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	sorterToken, err := GenerateToken(testSecret, &models.User{ID: "x", Role: models.RoleSorter})
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+sorterToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	adminToken, err := GenerateToken(testSecret, admin)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var me UserResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, admin.ID, me.ID)
}

func TestRegisterSuperAdminOnce(t *testing.T) {
	s := store.NewMemoryStore()
	app := newAuthApp(s)

	resp := postJSON(t, app, "/api/auth/register-super-admin", `{"password":"abc"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/register-super-admin", `{"password":"secret123"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/register-super-admin", `{"password":"secret123"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	u, err := s.GetUserByEmail(context.Background(), "admin@circulyte.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, CheckPassword(u.PasswordHash, "secret123"))
}

func TestLogout(t *testing.T) {
	resp := postJSON(t, newAuthApp(store.NewMemoryStore()), "/api/auth/logout", ``)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLogoutReleasesCallerState(t *testing.T) {
	var released []string
	app := fiber.New()
	app.Post("/api/auth/logout", LogoutHandler(testSecret, func(id string) { released = append(released, id) }))

	logout := func(authHeader string) int {
		req := httptest.NewRequest("POST", "/api/auth/logout", nil)
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	token, err := GenerateToken(testSecret, &models.User{ID: "u1", Email: "a@b.c", Role: models.RoleAdmin})
	require.NoError(t, err)
	forged, err := GenerateToken("another-secret-another-secret-123", &models.User{ID: "u2", Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, logout("Bearer "+token))
	assert.Equal(t, fiber.StatusOK, logout("Bearer "+forged))
	assert.Equal(t, fiber.StatusOK, logout("Token "+token))
	assert.Equal(t, fiber.StatusOK, logout(""))
	assert.Equal(t, []string{"u1"}, released)
}
