// Package export renders seating arrangements as downloadable CSV, XLSX and
// PDF files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eugenenazirov/seating-planner/internal/seating"
)

// Format identifies an export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

const baseFilename = "seating_arrangement"

var (
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("export format must be one of csv, xlsx, pdf")
	// ErrMalformedRow is returned by ReadCSV for rows that do not match the export layout.
	ErrMalformedRow = errors.New("malformed seating row")
)

var header = []string{"Table Number", "Full Name", "Department"}

// Row is a single exported seat.
type Row struct {
	TableNumber int
	FullName    string
	Department  string
}

// ParseFormat converts a user-supplied format name. An empty string means CSV.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// Filename returns the download name for the format.
func Filename(format Format) string {
	return baseFilename + "." + string(format)
}

// ContentType returns the MIME type for the format.
func ContentType(format Format) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Rows flattens an arrangement in table order, keeping seat order within each
// table.
func Rows(arr seating.Arrangement) []Row {
	rows := make([]Row, 0, arr.TotalSeated())
	for i, table := range arr.Tables {
		for _, p := range table.People {
			rows = append(rows, Row{
				TableNumber: i + 1,
				FullName:    p.Name,
				Department:  p.Department,
			})
		}
	}
	return rows
}

// Write renders arr to w in the requested format.
func Write(w io.Writer, arr seating.Arrangement, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, arr)
	case FormatXLSX:
		return WriteXLSX(w, arr)
	case FormatPDF:
		return WritePDF(w, arr)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteCSV writes a header row followed by one row per seated person.
func WriteCSV(w io.Writer, arr seating.Arrangement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(arr) {
		record := []string{strconv.Itoa(row.TableNumber), row.FullName, row.Department}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses output produced by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedRow)
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformedRow, i+2, len(record))
		}
		number, err := strconv.Atoi(record[0])
		if err != nil || number <= 0 {
			return nil, fmt.Errorf("%w: line %d has invalid table number %q", ErrMalformedRow, i+2, record[0])
		}
		rows = append(rows, Row{TableNumber: number, FullName: record[1], Department: record[2]})
	}
	return rows, nil
}
