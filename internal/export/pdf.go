package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/eugenenazirov/seating-planner/internal/seating"
)

// WritePDF renders a printable chart with one section per table.
func WritePDF(w io.Writer, arr seating.Arrangement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Seating Arrangement", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Seating Arrangement")
	pdf.Ln(12)

	for _, table := range arr.Tables {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Table %d (%d/%d)", table.Number, table.Len(), table.Capacity), "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, p := range table.People {
			pdf.CellFormat(90, 6, tr(p.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, tr(p.Department), "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
