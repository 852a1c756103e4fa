// Package roster turns uploaded people lists (CSV or XLSX) into seating.Person
// values.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/seating-planner/internal/seating"
)

// Format identifies the encoding of a roster file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromFilename picks the roster format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Parse reads people from r in the given format.
func Parse(r io.Reader, format Format) ([]seating.Person, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseCSV reads a comma-separated roster whose first row is the header.
func ParseCSV(r io.Reader) ([]seating.Person, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return peopleFromRows(rows)
}

// ParseXLSX reads the first sheet of a workbook whose first row is the header.
func ParseXLSX(r io.Reader) ([]seating.Person, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyRoster
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return peopleFromRows(rows)
}

type columns struct {
	first      int
	last       int
	full       int
	department int
}

func detectColumns(header []string) (columns, error) {
	cols := columns{first: -1, last: -1, full: -1, department: -1}
	for i, name := range header {
		switch normalizeHeader(name) {
		case "first name", "firstname", "given name":
			cols.first = i
		case "last name", "lastname", "surname", "family name":
			cols.last = i
		case "full name", "name":
			cols.full = i
		case "department", "dept":
			cols.department = i
		}
	}

	hasName := cols.first >= 0 || cols.last >= 0 || cols.full >= 0
	if !hasName || cols.department < 0 {
		return cols, ErrMissingColumns
	}
	return cols, nil
}

func normalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func peopleFromRows(rows [][]string) ([]seating.Person, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}

	cols, err := detectColumns(rows[0])
	if err != nil {
		return nil, err
	}

	people := make([]seating.Person, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		people = append(people, seating.Person{
			Name:       cols.name(row),
			Department: field(row, cols.department),
		})
	}

	if len(people) == 0 {
		return nil, ErrEmptyRoster
	}
	return people, nil
}

func (c columns) name(row []string) string {
	if c.first >= 0 || c.last >= 0 {
		if name := strings.TrimSpace(field(row, c.first) + " " + field(row, c.last)); name != "" {
			return name
		}
	}
	return field(row, c.full)
}

func field(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
