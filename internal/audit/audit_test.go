package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type failingStore struct{}

func (failingStore) CreateAuditLog(context.Context, *models.AuditLog) error {
	return errors.New("write refused")
}

func (failingStore) ListAuditLogs(context.Context, store.AuditQuery) ([]models.AuditLog, error) {
	return nil, errors.New("read refused")
}

func TestWriteLogSnapshots(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewService(mem, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.WriteLog(ctx, LogOptions{
		UserID:     "u1",
		UserEmail:  "admin@circulyte.com",
		EntityType: "source",
		EntityID:   "s1",
		Action:     models.AuditActionCreate,
		After:      map[string]string{"name": "Factory1"},
	}))

	logs, err := svc.List(ctx, store.AuditQuery{EntityType: "source"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "null", logs[0].BeforeData)
	assert.JSONEq(t, `{"name":"Factory1"}`, logs[0].AfterData)
	assert.NotEmpty(t, logs[0].ID)
}

func TestRecordOnlyLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(failingStore{}, zap.New(core))

	svc.Record(context.Background(), LogOptions{EntityType: "vendor", EntityID: "v1", Action: models.AuditActionDelete})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "audit log write failed", logs.All()[0].Message)
}

func TestListAuditLogsHandler(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewService(mem, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, svc.WriteLog(ctx, LogOptions{EntityType: "source", EntityID: "s1", Action: models.AuditActionCreate}))
	require.NoError(t, svc.WriteLog(ctx, LogOptions{EntityType: "vendor", EntityID: "v1", Action: models.AuditActionCreate}))

	app := fiber.New()
	app.Get("/api/audit-logs", ListAuditLogsHandler(svc))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/audit-logs?entity_type=vendor", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var got []AuditLogResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].EntityID)
	assert.Equal(t, json.RawMessage("null"), got[0].Before)
}

func TestListAuditLogsHandlerStoreFailure(t *testing.T) {
	app := fiber.New()
	app.Get("/api/audit-logs", ListAuditLogsHandler(NewService(failingStore{}, zap.NewNop())))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/audit-logs", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
