package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"circulyte-backend/internal/auth"
	"circulyte-backend/internal/config"
	"circulyte-backend/internal/events"
	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestApp(t *testing.T) (*fiber.App, *store.MemoryStore) {
	t.Helper()
	cfg := config.Default()
	cfg.JWTSecret = testSecret
	cfg.StoreDriver = "memory"

	mem := store.NewMemoryStore()
	broker := events.NewLocalBroker()
	t.Cleanup(func() { _ = broker.Close() })

	return NewApp(Deps{Config: cfg, Store: mem, Broker: broker, Logger: zap.NewNop()}), mem
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func tokenFor(t *testing.T, mem *store.MemoryStore, email string, role models.UserRole) string {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, mem.CreateUser(context.Background(), u))
	token, err := auth.GenerateToken(testSecret, u)
	require.NoError(t, err)
	return token
}

func TestAdminGate(t *testing.T) {
	app, mem := newTestApp(t)
	admin := tokenFor(t, mem, "ops@circulyte.com", models.RoleAdmin)
	sorter := tokenFor(t, mem, "sorter@circulyte.com", models.RoleSorter)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", fiber.StatusUnauthorized},
		{"garbage token", "not-a-jwt", fiber.StatusUnauthorized},
		{"sorter", sorter, fiber.StatusForbidden},
		{"admin", admin, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, app, "GET", "/api/sources", tt.token, "")
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestBootstrapLoginAndUse(t *testing.T) {
	app, _ := newTestApp(t)

	resp, _ := do(t, app, "POST", "/api/auth/register-super-admin", "", `{"password":"s3cret-pass"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, raw := do(t, app, "POST", "/api/auth/login", "", `{"email":"Admin@Circulyte.com ","password":"s3cret-pass"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	require.NotEmpty(t, login.Token)

	resp, _ = do(t, app, "POST", "/api/sources", login.Token,
		`{"name":"Factory1","contact":"Ravi","city":"Tiruppur","country":"India"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, raw = do(t, app, "GET", "/api/audit-logs?entity_type=source", login.Token, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(raw, &logs))
	assert.Len(t, logs, 1)

	// The protected admin cannot be deleted, even by itself.
	resp, raw = do(t, app, "POST", "/api/functions/deleteUser", login.Token, `{"email":"admin@circulyte.com"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(raw), "permission-denied")
}

func TestRouteSmoke(t *testing.T) {
	app, mem := newTestApp(t)
	admin := tokenFor(t, mem, "ops@circulyte.com", models.RoleAdmin)

	for _, path := range []string{
		"/api/auth/me",
		"/api/users",
		"/api/vendors",
		"/api/fiber-packs",
		"/api/dashboard/stats",
		"/api/batches",
		"/api/vendor-shipments",
		"/api/vendor-shipments/vendors",
		"/api/audit-logs",
	} {
		t.Run(path, func(t *testing.T) {
			resp, _ := do(t, app, "GET", path, admin, "")
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		})
	}

	resp, _ := do(t, app, "GET", "/api/trace/fiber-packs/missing", admin, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

// nextEvent reads one server-sent event and returns its data line.
func nextEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "event: sources\n", line)
	data, err := r.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(data, "data: "), data)
	blank, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "\n", blank)
	return strings.TrimSpace(strings.TrimPrefix(data, "data: "))
}

func TestSourceStreamOverListener(t *testing.T) {
	app, mem := newTestApp(t)
	admin := tokenFor(t, mem, "ops@circulyte.com", models.RoleAdmin)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	base := "http://" + ln.Addr().String()
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequest("GET", base+"/api/sources/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := bufio.NewReader(resp.Body)
	assert.Equal(t, "[]", nextEvent(t, events))

	create, err := http.NewRequest("POST", base+"/api/sources",
		strings.NewReader(`{"name":"Factory1","contact":"Ravi","city":"Tiruppur","country":"India"}`))
	require.NoError(t, err)
	create.Header.Set("Content-Type", "application/json")
	create.Header.Set("Authorization", "Bearer "+admin)
	created, err := client.Do(create)
	require.NoError(t, err)
	created.Body.Close()
	require.Equal(t, fiber.StatusCreated, created.StatusCode)

	var list []map[string]any
	require.NoError(t, json.Unmarshal([]byte(nextEvent(t, events)), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Factory1", list[0]["name"])
}

type fetchCountingStore struct {
	*store.MemoryStore
	fiberFetches int
}

func (s *fetchCountingStore) GetFiberPack(ctx context.Context, id string) (*models.FiberPack, error) {
	s.fiberFetches++
	return s.MemoryStore.GetFiberPack(ctx, id)
}

func TestLogoutDropsHeldTrace(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.JWTSecret = testSecret
	st := &fetchCountingStore{MemoryStore: store.NewMemoryStore()}
	app := NewApp(Deps{Config: cfg, Store: st, Broker: events.NewLocalBroker(), Logger: zap.NewNop()})
	admin := tokenFor(t, st.MemoryStore, "ops@circulyte.com", models.RoleAdmin)

	require.NoError(t, st.CreateBatch(ctx, &models.Batch{ID: "B1", Source: "Factory1"}))
	require.NoError(t, st.CreateSortedPack(ctx, &models.SortedPack{ID: "S1", Material: "Cotton", Weight: 4, OriginalBatchID: "B1"}))
	require.NoError(t, st.CreateFiberPack(ctx, &models.FiberPack{ID: "F1", Weight: 3.6, FromSortedPacks: []string{"S1"}}))

	for i := 0; i < 2; i++ {
		resp, _ := do(t, app, "GET", "/api/trace/fiber-packs/F1", admin, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 1, st.fiberFetches)

	resp, _ := do(t, app, "POST", "/api/auth/logout", admin, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, "GET", "/api/trace/fiber-packs/F1", admin, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, st.fiberFetches)
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t, "http://a.io,http://b.io", corsOrigins(" http://a.io , ,http://b.io"))
	assert.Equal(t, "*", corsOrigins(""))
}
