package users

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"circulyte-backend/internal/apperr"
	"circulyte-backend/internal/audit"
	"circulyte-backend/internal/events"
	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const protected = "admin@circulyte.com"

var admin = Caller{ID: "admin-1", Email: protected}

// spyStore counts the user-store calls that reach the backend.
type spyStore struct {
	*store.MemoryStore
	calls     int
	createErr error
}

func (s *spyStore) CreateUser(ctx context.Context, u *models.User) error {
	s.calls++
	if s.createErr != nil {
		return s.createErr
	}
	return s.MemoryStore.CreateUser(ctx, u)
}

func (s *spyStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.calls++
	return s.MemoryStore.GetUserByEmail(ctx, email)
}

func (s *spyStore) DeleteUsersByEmail(ctx context.Context, email string) (int64, error) {
	s.calls++
	return s.MemoryStore.DeleteUsersByEmail(ctx, email)
}

func newService(t *testing.T) (*Service, *spyStore, *events.LocalBroker) {
	t.Helper()
	mem := store.NewMemoryStore()
	spy := &spyStore{MemoryStore: mem}
	broker := events.NewLocalBroker()
	t.Cleanup(func() { broker.Close() })
	svc := NewService(spy, audit.NewService(mem, zap.NewNop()), broker, protected, zap.NewNop())
	return svc, spy, broker
}

func TestCreateNewUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, spy, broker := newService(t)
		changes := 0
		_, err := broker.Subscribe(events.TopicUsersChanged, func([]byte) { changes++ })
		require.NoError(t, err)

		res, err := svc.CreateNewUser(ctx, admin, CreateUserRequest{Email: " Sorter@Circulyte.com", Password: "secret1", Role: models.RoleSorter})
		require.NoError(t, err)
		assert.Equal(t, "success", res.Status)
		assert.Equal(t, "Successfully created user sorter@circulyte.com with role sorter.", res.Message)
		assert.NotEmpty(t, res.UID)
		assert.Equal(t, 1, changes)

		u, err := spy.MemoryStore.GetUserByEmail(ctx, "sorter@circulyte.com")
		require.NoError(t, err)
		assert.Equal(t, res.UID, u.ID)
		assert.NotEqual(t, "secret1", u.PasswordHash)

		logs, err := spy.ListAuditLogs(ctx, store.AuditQuery{EntityType: "user", EntityID: u.ID})
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})

	invalid := []struct {
		name string
		req  CreateUserRequest
	}{
		{"missing email", CreateUserRequest{Password: "secret1", Role: models.RoleSorter}},
		{"missing password", CreateUserRequest{Email: "a@b.c", Role: models.RoleSorter}},
		{"missing role", CreateUserRequest{Email: "a@b.c", Password: "secret1"}},
		{"short password", CreateUserRequest{Email: "a@b.c", Password: "12345", Role: models.RoleSorter}},
		{"unknown role", CreateUserRequest{Email: "a@b.c", Password: "secret1", Role: "janitor"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			svc, spy, _ := newService(t)
			_, err := svc.CreateNewUser(ctx, admin, tt.req)
			assert.Equal(t, apperr.InvalidArgument, apperr.CodeOf(err))
			assert.Zero(t, spy.calls)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		svc, _, _ := newService(t)
		req := CreateUserRequest{Email: "packer@circulyte.com", Password: "secret1", Role: models.RolePacker}
		_, err := svc.CreateNewUser(ctx, admin, req)
		require.NoError(t, err)

		_, err = svc.CreateNewUser(ctx, admin, req)
		assert.Equal(t, apperr.AlreadyExists, apperr.CodeOf(err))
	})

	t.Run("store failure is internal", func(t *testing.T) {
		svc, spy, _ := newService(t)
		spy.createErr = errors.New("connection reset")
		_, err := svc.CreateNewUser(ctx, admin, CreateUserRequest{Email: "a@b.c", Password: "secret1", Role: models.RoleManager})
		assert.Equal(t, apperr.Internal, apperr.CodeOf(err))
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("protected admin is refused before any store call", func(t *testing.T) {
		svc, spy, _ := newService(t)
		_, err := svc.DeleteUser(ctx, admin, " ADMIN@circulyte.com ")
		assert.Equal(t, apperr.PermissionDenied, apperr.CodeOf(err))
		assert.Zero(t, spy.calls)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc, spy, _ := newService(t)
		_, err := svc.DeleteUser(ctx, Caller{}, "a@b.c")
		assert.Equal(t, apperr.Unauthenticated, apperr.CodeOf(err))
		assert.Zero(t, spy.calls)
	})

	t.Run("empty email", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.DeleteUser(ctx, admin, "  ")
		assert.Equal(t, apperr.InvalidArgument, apperr.CodeOf(err))
	})

	t.Run("not found", func(t *testing.T) {
		svc, _, _ := newService(t)
		_, err := svc.DeleteUser(ctx, admin, "ghost@circulyte.com")
		assert.Equal(t, apperr.NotFound, apperr.CodeOf(err))
	})

	t.Run("success", func(t *testing.T) {
		svc, spy, _ := newService(t)
		_, err := svc.CreateNewUser(ctx, admin, CreateUserRequest{Email: "sorter@circulyte.com", Password: "secret1", Role: models.RoleSorter})
		require.NoError(t, err)

		res, err := svc.DeleteUser(ctx, admin, "sorter@circulyte.com")
		require.NoError(t, err)
		assert.Equal(t, "Successfully deleted user sorter@circulyte.com", res.Message)

		_, err = spy.MemoryStore.GetUserByEmail(ctx, "sorter@circulyte.com")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestListHidesProtectedAdmin(t *testing.T) {
	ctx := context.Background()
	svc, spy, _ := newService(t)
	require.NoError(t, spy.MemoryStore.CreateUser(ctx, &models.User{Email: protected, Role: models.RoleAdmin}))
	require.NoError(t, spy.MemoryStore.CreateUser(ctx, &models.User{Email: "m@circulyte.com", Role: models.RoleManager}))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "m@circulyte.com", list[0].Email)
}

func TestHandlersRenderTypedErrors(t *testing.T) {
	svc, _, _ := newService(t)

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(zap.NewNop())})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", admin.ID)
		c.Locals("user_email", admin.Email)
		return c.Next()
	})
	app.Post("/api/functions/createNewUser", CreateNewUserHandler(svc))
	app.Post("/api/functions/deleteUser", DeleteUserHandler(svc))

	tests := []struct {
		path   string
		body   string
		status int
		code   string
	}{
		{"/api/functions/createNewUser", `{"email":"a@b.c","password":"1","role":"sorter"}`, 400, "invalid-argument"},
		{"/api/functions/createNewUser", `{"email":"a@b.c","password":"secret1","role":"sorter"}`, 200, ""},
		{"/api/functions/createNewUser", `{"email":"a@b.c","password":"secret1","role":"sorter"}`, 409, "already-exists"},
		{"/api/functions/deleteUser", `{"email":"admin@circulyte.com"}`, 403, "permission-denied"},
		{"/api/functions/deleteUser", `{"email":"nobody@b.c"}`, 404, "not-found"},
		{"/api/functions/deleteUser", `{"email":"a@b.c"}`, 200, ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("POST", tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, tt.body)

		if tt.code == "" {
			continue
		}
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, tt.code, body["code"])
		assert.NotEmpty(t, body["error"])
	}
}
