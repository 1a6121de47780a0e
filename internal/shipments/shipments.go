// Package shipments lists outbound vendor shipments and exports their packs.
package shipments

import (
	"sort"
	"strings"

	"circulyte-backend/internal/models"
)

const allVendors = "All"

type Totals struct {
	TotalPacks  int     `json:"totalPacks"`
	TotalWeight float64 `json:"totalWeight"`
}

func TotalsOf(s models.VendorShipment) Totals {
	t := Totals{TotalPacks: len(s.FiberPacksDetails)}
	for _, p := range s.FiberPacksDetails {
		t.TotalWeight += p.Weight
	}
	return t
}

// Filter keeps shipments whose id, vendor name or vehicle number contains
// search (case-insensitive) and whose vendor equals vendor unless vendor is
// empty or "All". Input order is preserved.
func Filter(list []models.VendorShipment, search, vendor string) []models.VendorShipment {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.VendorShipment, 0, len(list))
	for _, s := range list {
		if needle != "" &&
			!strings.Contains(strings.ToLower(s.ID), needle) &&
			!strings.Contains(strings.ToLower(s.VendorName), needle) &&
			!strings.Contains(strings.ToLower(s.VehicleNumber), needle) {
			continue
		}
		if vendor != "" && vendor != allVendors && s.VendorName != vendor {
			continue
		}
		out = append(out, s)
	}
	return out
}

// VendorNames returns the sorted distinct non-empty vendor names.
func VendorNames(list []models.VendorShipment) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, s := range list {
		if s.VendorName == "" {
			continue
		}
		if _, ok := seen[s.VendorName]; ok {
			continue
		}
		seen[s.VendorName] = struct{}{}
		names = append(names, s.VendorName)
	}
	sort.Strings(names)
	return names
}
