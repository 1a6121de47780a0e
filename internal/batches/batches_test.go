package batches

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var base = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

// seed creates n batches one hour apart, b000 being the oldest.
func seed(t *testing.T, n int) *store.MemoryStore {
	t.Helper()
	mem := store.NewMemoryStore()
	for i := 0; i < n; i++ {
		require.NoError(t, mem.CreateBatch(context.Background(), &models.Batch{
			ID:           fmt.Sprintf("b%03d", i),
			Source:       "Factory1",
			DateReceived: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	return mem
}

func TestFetchPageWalksNewestFirst(t *testing.T) {
	mem := seed(t, 45)
	ctx := context.Background()

	first, err := FetchPage(ctx, mem, "")
	require.NoError(t, err)
	require.Len(t, first.Batches, PageSize)
	assert.True(t, first.HasMore)
	assert.Equal(t, "b044", first.Batches[0].ID)

	second, err := FetchPage(ctx, mem, first.Cursor)
	require.NoError(t, err)
	assert.Equal(t, "b024", second.Batches[0].ID)
	assert.True(t, second.HasMore)

	third, err := FetchPage(ctx, mem, second.Cursor)
	require.NoError(t, err)
	assert.Len(t, third.Batches, 5)
	assert.False(t, third.HasMore)
	assert.Equal(t, "b000", third.Batches[4].ID)

	_, err = FetchPage(ctx, mem, "not a cursor")
	assert.ErrorIs(t, err, store.ErrInvalidCursor)
}

func TestFullLastPageStillReportsMore(t *testing.T) {
	mem := seed(t, PageSize)
	page, err := FetchPage(context.Background(), mem, "")
	require.NoError(t, err)
	assert.True(t, page.HasMore)

	next, err := FetchPage(context.Background(), mem, page.Cursor)
	require.NoError(t, err)
	assert.Empty(t, next.Batches)
	assert.False(t, next.HasMore)
}

func TestFetchDayInclusiveBounds(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	for id, at := range map[string]time.Time{
		"midnight": time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		"last-ms":  time.Date(2024, 5, 10, 23, 59, 59, int(999*time.Millisecond), time.UTC),
		"next-day": time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC),
		"day-prev": time.Date(2024, 5, 9, 23, 59, 59, 0, time.UTC),
	} {
		require.NoError(t, mem.CreateBatch(ctx, &models.Batch{ID: id, DateReceived: at}))
	}

	page, err := FetchDay(ctx, mem, time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, page.Batches, 2)
	assert.Equal(t, "last-ms", page.Batches[0].ID)
	assert.Equal(t, "midnight", page.Batches[1].ID)
	assert.False(t, page.HasMore)
}

func TestBrowserModesReset(t *testing.T) {
	ctx := context.Background()
	mem := seed(t, 30)
	b := NewBrowser(mem)

	require.NoError(t, b.LoadMore(ctx))
	assert.Len(t, b.Batches(), 20)
	assert.True(t, b.HasMore())

	require.NoError(t, b.LoadMore(ctx))
	assert.Len(t, b.Batches(), 30)
	assert.False(t, b.HasMore())

	require.NoError(t, b.LoadMore(ctx))
	assert.Len(t, b.Batches(), 30)

	require.NoError(t, b.FilterByDate(ctx, base))
	assert.Len(t, b.Batches(), 16)
	assert.False(t, b.HasMore())
	require.NoError(t, b.LoadMore(ctx))
	assert.Len(t, b.Batches(), 16)

	require.NoError(t, b.ClearFilter(ctx))
	got := b.Batches()
	require.Len(t, got, 20)
	assert.Equal(t, "b029", got[0].ID)
}

func TestListBatchesHandler(t *testing.T) {
	mem := seed(t, 25)
	app := fiber.New()
	app.Get("/api/batches", ListBatchesHandler(mem, time.UTC, zap.NewNop()))

	get := func(path string) (int, PageResponse) {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		var body PageResponse
		if resp.StatusCode == fiber.StatusOK {
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, &body))
		}
		return resp.StatusCode, body
	}

	status, first := get("/api/batches")
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, first.Batches, 20)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	status, second := get("/api/batches?cursor=" + first.NextCursor)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, second.Batches, 5)
	assert.False(t, second.HasMore)
	assert.Empty(t, second.NextCursor)

	status, day := get("/api/batches?date=2024-05-10&cursor=" + first.NextCursor)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, day.Batches, 16)
	assert.False(t, day.HasMore)

	status, _ = get("/api/batches?date=10-05-2024")
	assert.Equal(t, fiber.StatusBadRequest, status)
	status, _ = get("/api/batches?cursor=%25%25")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
