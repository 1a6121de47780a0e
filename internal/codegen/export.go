package codegen

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

var headers = []interface{}{"Serial Number", "QR Code", "Date", "Timestamp"}

var columnWidths = []float64{15, 25, 15, 25}

func SheetName(t Type) string {
	return fmt.Sprintf("%s QR Codes", t)
}

// Filename uses the UTC calendar date of now.
func Filename(t Type, qty int, now time.Time) string {
	return fmt.Sprintf("%s_QR_Codes_%d_%s.xlsx", t, qty, now.UTC().Format("20060102"))
}

// WriteWorkbook streams rows into a single-sheet workbook and writes it to w.
func WriteWorkbook(w io.Writer, t Type, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(t)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	for i, width := range columnWidths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []interface{}{r.Serial, r.Code, r.Date, r.Timestamp}); err != nil {
			return fmt.Errorf("write row %d: %w", r.Serial, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Export generates and renders a workbook in memory. Nothing is returned
// unless every step succeeded.
func (g *Generator) Export(t Type, qty int, progress Progress) ([]byte, string, error) {
	rows, err := g.Generate(t, qty, progress)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, t, rows); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), Filename(t, qty, g.now()), nil
}
