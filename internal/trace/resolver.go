// Package trace reconstructs the provenance chain of a fiber pack: the sorted
// packs it was made from and the batches those packs were sorted out of.
package trace

import (
	"context"
	"errors"
	"fmt"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"
)

// ErrNoLinkedSortedPacks means the fiber pack references no sorted pack that
// can be resolved. No partial trace accompanies it.
var ErrNoLinkedSortedPacks = errors.New("trace: fiber pack has no linked sorted packs")

type Trace struct {
	FiberPack   models.FiberPack
	SortedPacks []models.SortedPack
	Batches     []models.Batch
}

type SortedPackFetcher interface {
	GetSortedPacksByIDs(ctx context.Context, ids []string) ([]models.SortedPack, error)
}

type BatchFetcher interface {
	GetBatchesByIDs(ctx context.Context, ids []string) ([]models.Batch, error)
}

type Resolver struct {
	packs     SortedPackFetcher
	batches   BatchFetcher
	chunkSize int
}

func NewResolver(packs SortedPackFetcher, batches BatchFetcher) *Resolver {
	return &Resolver{packs: packs, batches: batches, chunkSize: store.MaxMembership}
}

// Resolve runs the lookups one after another. Id lists longer than the
// membership ceiling are split into chunks and merged.
func (r *Resolver) Resolve(ctx context.Context, fp models.FiberPack) (*Trace, error) {
	packIDs := store.Distinct(fp.FromSortedPacks)
	if len(packIDs) == 0 {
		return nil, ErrNoLinkedSortedPacks
	}

	packs, err := fetchChunked(ctx, packIDs, r.chunkSize, r.packs.GetSortedPacksByIDs,
		func(p models.SortedPack) string { return p.ID })
	if err != nil {
		return nil, fmt.Errorf("fetch sorted packs: %w", err)
	}
	if len(packs) == 0 {
		return nil, ErrNoLinkedSortedPacks
	}

	batchIDs := make([]string, 0, len(packs))
	for _, p := range packs {
		batchIDs = append(batchIDs, p.OriginalBatchID)
	}
	batchIDs = store.Distinct(batchIDs)

	t := &Trace{FiberPack: fp, SortedPacks: packs, Batches: []models.Batch{}}
	if len(batchIDs) == 0 {
		return t, nil
	}

	batches, err := fetchChunked(ctx, batchIDs, r.chunkSize, r.batches.GetBatchesByIDs,
		func(b models.Batch) string { return b.ID })
	if err != nil {
		return nil, fmt.Errorf("fetch batches: %w", err)
	}
	t.Batches = batches
	return t, nil
}

// fetchChunked queries ids in chunks and returns the hits ordered like ids.
func fetchChunked[T any](ctx context.Context, ids []string, size int, fetch func(context.Context, []string) ([]T, error), idOf func(T) string) ([]T, error) {
	byID := make(map[string]T, len(ids))
	for _, chunk := range store.Chunk(ids, size) {
		found, err := fetch(ctx, chunk)
		if err != nil {
			return nil, err
		}
		for _, item := range found {
			byID[idOf(item)] = item
		}
	}

	out := make([]T, 0, len(byID))
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}
