package shipments

import (
	"fmt"
	"io"
	"time"

	"circulyte-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Fiber Packs"

var exportHeaders = []interface{}{"S.No", "Pack ID", "Weight (kg)", "Material", "Source", "Status"}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func ExportFilename(s models.VendorShipment, now time.Time) string {
	return fmt.Sprintf("Shipment_%s_%s.xlsx", s.ID, now.UTC().Format("2006-01-02"))
}

// WriteExport renders one row per pack of the shipment.
func WriteExport(w io.Writer, s models.VendorShipment) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range s.FiberPacksDetails {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, orNA(p.PackID), p.Weight, orNA(p.Material), orNA(p.Source), orNA(p.Status)}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write pack %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
