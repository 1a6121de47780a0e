// Package dashboard computes the filtered statistics and chart groupings of
// the recycling dashboard from fully loaded collections.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"circulyte-backend/internal/models"
)

// All matches every value of a source or material filter.
const All = "All"

const labelThreshold = 0.05

const dateLayout = "2006-01-02"

// Filters is a source/material selection plus inclusive time bounds. Empty
// strings behave like All.
type Filters struct {
	Source   string
	Material string
	Start    *time.Time
	End      *time.Time
}

type MaterialWeight struct {
	Name   string
	Weight float64
}

type MaterialShare struct {
	Name      string
	Value     float64
	Percent   float64
	ShowLabel bool
}

type Summary struct {
	TotalWeightSorted float64
	TotalFiberWeight  float64
	PacksRecycled     int
	PacksInStorage    int
	ByMaterial        []MaterialWeight
	Shares            []MaterialShare
}

// ParseFilters reads YYYY-MM-DD bounds in loc. The start bound is the start of
// its day and the end bound is 23:59:59.999 of its day.
func ParseFilters(source, material, startDate, endDate string, loc *time.Location) (Filters, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := Filters{Source: strings.TrimSpace(source), Material: strings.TrimSpace(material)}

	if s := strings.TrimSpace(startDate); s != "" {
		day, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return Filters{}, fmt.Errorf("invalid startDate %q: %w", s, err)
		}
		f.Start = &day
	}
	if s := strings.TrimSpace(endDate); s != "" {
		day, err := time.ParseInLocation(dateLayout, s, loc)
		if err != nil {
			return Filters{}, fmt.Errorf("invalid endDate %q: %w", s, err)
		}
		end := EndOfDay(day)
		f.End = &end
	}
	return f, nil
}

// EndOfDay returns 23:59:59.999 on t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func matches(filter, value string) bool {
	return filter == "" || filter == All || filter == value
}

func (f Filters) keep(p models.SortedPack, batches map[string]models.Batch) bool {
	if !matches(f.Material, p.Material) {
		return false
	}
	if f.Start != nil || f.End != nil {
		if p.SortedAt == nil {
			return false
		}
		if f.Start != nil && p.SortedAt.Before(*f.Start) {
			return false
		}
		if f.End != nil && p.SortedAt.After(*f.End) {
			return false
		}
	}
	if f.Source != "" && f.Source != All {
		b, ok := batches[p.OriginalBatchID]
		if !ok || b.Source != f.Source {
			return false
		}
	}
	return true
}

// Aggregate filters sorted packs and rolls the result up. Inputs are not
// modified.
func Aggregate(sorted []models.SortedPack, fiber []models.FiberPack, batches []models.Batch, f Filters) Summary {
	batchByID := make(map[string]models.Batch, len(batches))
	for _, b := range batches {
		batchByID[b.ID] = b
	}

	filtered := make([]models.SortedPack, 0, len(sorted))
	filteredIDs := make(map[string]struct{}, len(sorted))
	for _, p := range sorted {
		if f.keep(p, batchByID) {
			filtered = append(filtered, p)
			filteredIDs[p.ID] = struct{}{}
		}
	}

	var s Summary
	recycledIDs := make(map[string]struct{})
	for _, fp := range fiber {
		relevant := false
		for _, id := range fp.FromSortedPacks {
			if _, ok := filteredIDs[id]; ok {
				relevant = true
				break
			}
		}
		if !relevant {
			continue
		}
		s.TotalFiberWeight += fp.Weight
		for _, id := range fp.FromSortedPacks {
			recycledIDs[id] = struct{}{}
		}
	}

	weights := make(map[string]float64)
	var order []string
	for _, p := range filtered {
		s.TotalWeightSorted += p.Weight
		if _, ok := recycledIDs[p.ID]; ok {
			s.PacksRecycled++
		}
		if p.Material == "" {
			continue
		}
		if _, seen := weights[p.Material]; !seen {
			order = append(order, p.Material)
		}
		weights[p.Material] += p.Weight
	}

	s.PacksInStorage = len(filtered) - s.PacksRecycled
	if s.PacksInStorage < 0 {
		s.PacksInStorage = 0
	}

	var groupTotal float64
	for _, name := range order {
		groupTotal += weights[name]
	}

	s.ByMaterial = make([]MaterialWeight, 0, len(order))
	s.Shares = make([]MaterialShare, 0, len(order))
	for _, name := range order {
		w := weights[name]
		s.ByMaterial = append(s.ByMaterial, MaterialWeight{Name: name, Weight: w})

		var pct float64
		if groupTotal > 0 {
			pct = w / groupTotal
		}
		s.Shares = append(s.Shares, MaterialShare{
			Name:      name,
			Value:     w,
			Percent:   pct,
			ShowLabel: pct >= labelThreshold,
		})
	}
	return s
}

// Options lists the values a client can pick as filters: distinct non-empty
// materials in first-seen order and distinct source names.
type Options struct {
	Sources   []string
	Materials []string
}

func FilterOptions(sorted []models.SortedPack, sources []models.Source) Options {
	opts := Options{Sources: []string{}, Materials: []string{}}

	seen := make(map[string]struct{})
	for _, p := range sorted {
		if p.Material == "" {
			continue
		}
		if _, ok := seen[p.Material]; ok {
			continue
		}
		seen[p.Material] = struct{}{}
		opts.Materials = append(opts.Materials, p.Material)
	}

	seen = make(map[string]struct{})
	for _, src := range sources {
		if src.Name == "" {
			continue
		}
		if _, ok := seen[src.Name]; ok {
			continue
		}
		seen[src.Name] = struct{}{}
		opts.Sources = append(opts.Sources, src.Name)
	}
	return opts
}
