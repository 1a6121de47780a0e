package dashboard

import (
	"context"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Loader interface {
	ListSortedPacks(ctx context.Context) ([]models.SortedPack, error)
	ListFiberPacks(ctx context.Context) ([]models.FiberPack, error)
	ListBatches(ctx context.Context) ([]models.Batch, error)
	ListSources(ctx context.Context) ([]models.Source, error)
}

var _ Loader = (store.Store)(nil)

type StatsResponse struct {
	TotalWeightSorted string `json:"totalWeightSorted"`
	TotalFiberWeight  string `json:"totalFiberWeight"`
	PacksRecycled     int    `json:"packsRecycled"`
	PacksInStorage    int    `json:"packsInStorage"`
}

type BarRow struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type PieRow struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Percent   float64 `json:"percent"`
	ShowLabel bool    `json:"showLabel"`
}

type FilterOptionsResponse struct {
	Sources   []string `json:"sources"`
	Materials []string `json:"materials"`
}

type DashboardResponse struct {
	Stats         StatsResponse         `json:"stats"`
	BarChart      []BarRow              `json:"barChart"`
	PieChart      []PieRow              `json:"pieChart"`
	FilterOptions FilterOptionsResponse `json:"filterOptions"`
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func toResponse(s Summary, opts Options) DashboardResponse {
	resp := DashboardResponse{
		Stats: StatsResponse{
			TotalWeightSorted: fixed2(s.TotalWeightSorted),
			TotalFiberWeight:  fixed2(s.TotalFiberWeight),
			PacksRecycled:     s.PacksRecycled,
			PacksInStorage:    s.PacksInStorage,
		},
		BarChart:      make([]BarRow, 0, len(s.ByMaterial)),
		PieChart:      make([]PieRow, 0, len(s.Shares)),
		FilterOptions: FilterOptionsResponse(opts),
	}
	for _, m := range s.ByMaterial {
		resp.BarChart = append(resp.BarChart, BarRow{Name: m.Name, Weight: round2(m.Weight)})
	}
	for _, m := range s.Shares {
		resp.PieChart = append(resp.PieChart, PieRow{Name: m.Name, Value: m.Value, Percent: m.Percent, ShowLabel: m.ShowLabel})
	}
	return resp
}

type snapshot struct {
	sorted  []models.SortedPack
	fiber   []models.FiberPack
	batches []models.Batch
	sources []models.Source
}

// load pulls every collection once, concurrently.
func load(ctx context.Context, l Loader) (*snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.sorted, err = l.ListSortedPacks(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.fiber, err = l.ListFiberPacks(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.batches, err = l.ListBatches(ctx)
		return err
	})
	g.Go(func() (err error) {
		snap.sources, err = l.ListSources(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// GET /api/dashboard/stats?source=All&material=All&startDate=2024-01-01&endDate=2024-01-31
func StatsHandler(l Loader, loc *time.Location, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filters, err := ParseFilters(c.Query("source", All), c.Query("material", All), c.Query("startDate"), c.Query("endDate"), loc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dates must be in YYYY-MM-DD format")
		}

		snap, err := load(c.UserContext(), l)
		if err != nil {
			logger.Error("dashboard load failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to load dashboard data.")
		}

		summary := Aggregate(snap.sorted, snap.fiber, snap.batches, filters)
		return c.JSON(toResponse(summary, FilterOptions(snap.sorted, snap.sources)))
	}
}
