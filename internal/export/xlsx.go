package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/seating-planner/internal/seating"
)

const sheetName = "Seating"

// WriteXLSX writes the arrangement to a single-sheet workbook.
func WriteXLSX(w io.Writer, arr seating.Arrangement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "C1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range Rows(arr) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{row.TableNumber, row.FullName, row.Department}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "B", "C", 28); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
