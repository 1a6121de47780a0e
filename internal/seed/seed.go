// Package seed fills a store with a small, deterministic demo dataset.
package seed

import (
	"context"
	"fmt"
	"time"

	"circulyte-backend/internal/models"
	"circulyte-backend/internal/store"
)

type Counts struct {
	Sources     int
	Vendors     int
	Batches     int
	SortedPacks int
	FiberPacks  int
	Shipments   int
}

var (
	demoSources = []models.Source{
		{Name: "Factory1", Contact: "Ravi Kumar", City: "Tiruppur", Country: "India"},
		{Name: "Factory2", Contact: "Nusrat Jahan", City: "Dhaka", Country: "Bangladesh"},
		{Name: "Factory3", Contact: "Le Thi Mai", City: "Ho Chi Minh City", Country: "Vietnam"},
	}
	demoVendors = []models.Vendor{
		{Name: "Spinners Ltd", Country: "India", State: "Tamil Nadu", ContactInfo: "orders@spinners.example"},
		{Name: "Weavers Co", Country: "India", State: "Gujarat", ContactInfo: "+91 79 0000 0000"},
	}
	materials = []string{"Cotton", "Polyester", "Wool", "Blend"}
	colors    = []string{"White", "Black", "Blue", "Mixed"}
	brands    = []string{"Acme", "Northwind", "Contoso"}
)

const (
	batchCount     = 45
	packsPerBatch  = 3
	packsPerFiber  = 4
	fibersPerTruck = 5
)

// Demo writes sources, vendors and a provenance chain of batches, sorted
// packs, fiber packs and vendor shipments ending at now. Roughly one sorted
// pack in five stays in storage and every tenth has no recorded batch.
func Demo(ctx context.Context, st store.Store, now time.Time) (*Counts, error) {
	var c Counts

	for i := range demoSources {
		src := demoSources[i]
		src.CreatedAt = now
		if err := st.CreateSource(ctx, &src); err != nil {
			return nil, fmt.Errorf("seed source %s: %w", src.Name, err)
		}
		c.Sources++
	}
	for i := range demoVendors {
		v := demoVendors[i]
		v.CreatedAt = now
		if err := st.CreateVendor(ctx, &v); err != nil {
			return nil, fmt.Errorf("seed vendor %s: %w", v.Name, err)
		}
		c.Vendors++
	}

	var packs []models.SortedPack
	for i := 0; i < batchCount; i++ {
		b := models.Batch{
			ID:           fmt.Sprintf("BATCH-%03d", i+1),
			Source:       demoSources[i%len(demoSources)].Name,
			BoxCount:     5 + i%8,
			DateReceived: now.Add(-time.Duration(i*8) * time.Hour),
			CreatedBy:    "seed",
		}
		if err := st.CreateBatch(ctx, &b); err != nil {
			return nil, fmt.Errorf("seed batch %s: %w", b.ID, err)
		}
		c.Batches++

		for j := 0; j < packsPerBatch; j++ {
			n := i*packsPerBatch + j
			sortedAt := b.DateReceived.Add(2 * time.Hour)
			p := models.SortedPack{
				ID:              fmt.Sprintf("SP-%04d", n+1),
				Material:        materials[n%len(materials)],
				Brand:           brands[n%len(brands)],
				Weight:          10 + float64(n%7)*2.5,
				SortedAt:        &sortedAt,
				OriginalBatchID: b.ID,
			}
			if n%10 == 9 {
				p.OriginalBatchID = ""
			}
			if err := st.CreateSortedPack(ctx, &p); err != nil {
				return nil, fmt.Errorf("seed sorted pack %s: %w", p.ID, err)
			}
			packs = append(packs, p)
			c.SortedPacks++
		}
	}

	// The newest fifth of the sorted packs is left unrecycled.
	recyclable := packs[len(packs)/5:]
	var fibers []models.FiberPack
	for start := 0; start+packsPerFiber <= len(recyclable); start += packsPerFiber {
		group := recyclable[start : start+packsPerFiber]
		fp := models.FiberPack{
			ID:         fmt.Sprintf("FP-%03d", len(fibers)+1),
			RecycledAt: now.Add(-time.Duration(len(fibers)*6) * time.Hour),
			Colors:     []string{colors[len(fibers)%len(colors)]},
		}
		seen := map[string]bool{}
		for _, p := range group {
			fp.Weight += p.Weight * 0.9
			fp.FromSortedPacks = append(fp.FromSortedPacks, p.ID)
			if !seen[p.Material] {
				seen[p.Material] = true
				fp.Materials = append(fp.Materials, p.Material)
			}
		}
		if err := st.CreateFiberPack(ctx, &fp); err != nil {
			return nil, fmt.Errorf("seed fiber pack %s: %w", fp.ID, err)
		}
		fibers = append(fibers, fp)
		c.FiberPacks++
	}

	for start := 0; start+fibersPerTruck <= len(fibers); start += fibersPerTruck {
		n := start / fibersPerTruck
		s := models.VendorShipment{
			ID:            fmt.Sprintf("SHIP-%03d", n+1),
			VendorName:    demoVendors[n%len(demoVendors)].Name,
			VehicleNumber: fmt.Sprintf("TN38AB%04d", 1000+n),
			DriverName:    "Driver " + string(rune('A'+n)),
			DriverContact: fmt.Sprintf("+91 98400 %05d", n),
			CreatedAt:     now.Add(-time.Duration(n) * 24 * time.Hour),
		}
		for _, fp := range fibers[start : start+fibersPerTruck] {
			s.FiberPacksDetails = append(s.FiberPacksDetails, models.ShipmentPackDetail{
				PackID:   fp.ID,
				Weight:   fp.Weight,
				Material: fp.Materials[0],
				Status:   "shipped",
			})
		}
		if err := st.CreateVendorShipment(ctx, &s); err != nil {
			return nil, fmt.Errorf("seed shipment %s: %w", s.ID, err)
		}
		c.Shipments++
	}

	return &c, nil
}
