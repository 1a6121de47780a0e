package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 10, 3, 14, 52, 30, 123_000_000, time.UTC)

func newTestGenerator() *Generator {
	g := NewGenerator(time.UTC)
	g.now = func() time.Time { return fixedNow }
	return g
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{"BOX": TypeBox, "fiber": TypeFiber, " Pack ": TypePack} {
		got, err := ParseType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseType("CRATE")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestGenerateCodeShape(t *testing.T) {
	rows, err := newTestGenerator().Generate(TypeBox, 3, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	pattern := regexp.MustCompile(`^BX20251003145230123(\d{6})[A-Z0-9]{8}$`)
	for i, r := range rows {
		m := pattern.FindStringSubmatch(r.Code)
		require.NotNil(t, m, r.Code)
		assert.Equal(t, fmt.Sprintf("%06d", i+1), m[1])
		assert.Equal(t, i+1, r.Serial)
		assert.Equal(t, "3/10/2025", r.Date)
		assert.Equal(t, "03/10/2025, 02:52:30 pm", r.Timestamp)
	}
}

func TestGenerateExactQuantityDistinctSequence(t *testing.T) {
	var checkpoints []int
	rows, err := NewGenerator(time.UTC).Generate(TypeFiber, 2500, func(done, total int) {
		assert.Equal(t, 2500, total)
		checkpoints = append(checkpoints, done)
	})
	require.NoError(t, err)
	require.Len(t, rows, 2500)
	assert.Equal(t, []int{1000, 2000}, checkpoints)

	seqs := make(map[string]struct{}, len(rows))
	codes := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		require.True(t, strings.HasPrefix(r.Code, "FX"))
		seqs[r.Code[19:25]] = struct{}{}
		codes[r.Code] = struct{}{}
	}
	assert.Len(t, seqs, 2500)
	assert.Len(t, codes, 2500)
}

func TestGenerateRejectsQuantity(t *testing.T) {
	g := newTestGenerator()
	for _, q := range []int{0, -5, MaxQuantity + 1} {
		rows, err := g.Generate(TypePack, q, nil)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Nil(t, rows)
	}
}

func TestGenerateDiscardsPartialOutput(t *testing.T) {
	g := newTestGenerator()
	g.rand = brokenReader{}

	rows, err := g.Generate(TypeBox, 10, nil)
	assert.Error(t, err)
	assert.Nil(t, rows)

	data, name, err := g.Export(TypeBox, 10, nil)
	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Empty(t, name)
}

func TestExportRowCount(t *testing.T) {
	g := newTestGenerator()
	data, name, err := g.Export(TypePack, 1234, nil)
	require.NoError(t, err)
	assert.Equal(t, "PACK_QR_Codes_1234_20251003.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"PACK QR Codes"}, f.GetSheetList())
	rows, err := f.GetRows("PACK QR Codes")
	require.NoError(t, err)
	require.Len(t, rows, 1235)
	assert.Equal(t, []string{"Serial Number", "QR Code", "Date", "Timestamp"}, rows[0])
	assert.Equal(t, "1234", rows[1234][0])

	width, err := f.GetColWidth("PACK QR Codes", "B")
	require.NoError(t, err)
	assert.InDelta(t, 25, width, 0.01)
}

func TestGenerateHandler(t *testing.T) {
	app := fiber.New()
	app.Post("/api/codes/generate", GenerateHandler(newTestGenerator(), zap.NewNop()))

	post := func(body string) (*http.Response, []byte) {
		req := httptest.NewRequest("POST", "/api/codes/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, raw
	}
	status := func(body string) int {
		resp, _ := post(body)
		return resp.StatusCode
	}

	resp, raw := post(`{"type":"box","quantity":5}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "BOX_QR_Codes_5_20251003.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	rows, err := f.GetRows("BOX QR Codes")
	require.NoError(t, err)
	assert.Len(t, rows, 6)
	f.Close()

	assert.Equal(t, fiber.StatusBadRequest, status(`{"type":"box","quantity":1000001}`))
	assert.Equal(t, fiber.StatusBadRequest, status(`{"type":"crate","quantity":5}`))
	assert.Equal(t, fiber.StatusBadRequest, status(`{"type":"box","quantity":0}`))
}
