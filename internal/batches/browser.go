// Package batches pages through batch records newest first, or lists a
// single calendar day.
package batches

import (
	"context"
	"fmt"
	"sync"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"
)

const PageSize = 20

type Page struct {
	Batches []models.Batch
	// Cursor resumes after the last batch of this page. Empty when the
	// page is empty or came from a date query.
	Cursor  string
	HasMore bool
}

type Pager interface {
	ListBatchesPage(ctx context.Context, q store.BatchPageQuery) ([]models.Batch, error)
	ListBatchesBetween(ctx context.Context, start, end time.Time) ([]models.Batch, error)
}

// FetchPage returns the page after cursor (the first page when cursor is
// empty). HasMore only reports whether the page came back full.
func FetchPage(ctx context.Context, p Pager, cursor string) (*Page, error) {
	q := store.BatchPageQuery{Limit: PageSize}
	if cursor != "" {
		after, err := store.DecodeBatchCursor(cursor)
		if err != nil {
			return nil, err
		}
		q.After = after
	}

	list, err := p.ListBatchesPage(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list batches page: %w", err)
	}

	page := &Page{Batches: list, HasMore: len(list) == PageSize}
	if len(list) > 0 {
		page.Cursor = store.CursorFor(list[len(list)-1]).Encode()
	}
	return page, nil
}

// FetchDay returns every batch received on day's calendar date in day's
// location, in one page.
func FetchDay(ctx context.Context, p Pager, day time.Time) (*Page, error) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), day.Location())

	list, err := p.ListBatchesBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list batches for %s: %w", start.Format("2006-01-02"), err)
	}
	return &Page{Batches: list}, nil
}

// Browser accumulates pages for one viewer. Switching between paged mode and
// date mode drops everything accumulated so far.
type Browser struct {
	pager Pager

	mu      sync.Mutex
	day     *time.Time
	batches []models.Batch
	cursor  string
	hasMore bool
	loaded  bool
}

func NewBrowser(p Pager) *Browser {
	return &Browser{pager: p}
}

func (b *Browser) reset() {
	b.batches = nil
	b.cursor = ""
	b.hasMore = false
	b.loaded = false
}

// LoadMore fetches the next page in paged mode. In date mode, or once the
// last page came back short, it does nothing.
func (b *Browser) LoadMore(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.day != nil || (b.loaded && !b.hasMore) {
		return nil
	}

	page, err := FetchPage(ctx, b.pager, b.cursor)
	if err != nil {
		return err
	}
	b.batches = append(b.batches, page.Batches...)
	if page.Cursor != "" {
		b.cursor = page.Cursor
	}
	b.hasMore = page.HasMore
	b.loaded = true
	return nil
}

func (b *Browser) FilterByDate(ctx context.Context, day time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.reset()
	b.day = &day

	page, err := FetchDay(ctx, b.pager, day)
	if err != nil {
		return err
	}
	b.batches = page.Batches
	b.loaded = true
	return nil
}

// ClearFilter returns to paged mode and loads the first page.
func (b *Browser) ClearFilter(ctx context.Context) error {
	b.mu.Lock()
	b.reset()
	b.day = nil
	b.mu.Unlock()

	return b.LoadMore(ctx)
}

func (b *Browser) Batches() []models.Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Batch(nil), b.batches...)
}

func (b *Browser) HasMore() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.day == nil && b.hasMore
}
