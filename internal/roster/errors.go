package roster

import "errors"

var (
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("roster must be a .csv or .xlsx file")
	// ErrMissingColumns is returned when the header lacks a name or department column.
	ErrMissingColumns = errors.New("roster header must contain First Name/Last Name (or Full Name) and Department columns")
	// ErrEmptyRoster is returned when the file has a header but no people.
	ErrEmptyRoster = errors.New("roster does not contain any people")
)
