package source

import (
	"errors"
	"fmt"
	"strings"
)

// Common load errors
var (
	// ErrEmptyFile is returned when the input file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when the input is not UTF-8
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")

	// ErrMissingHeader is returned when a CSV log has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrUnsupportedFormat is returned for extensions other than .json and .csv
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// RowError points at one bad entry of a log file. Row is the 1-based CSV
// line or the 0-based JSON array index.
type RowError struct {
	Row     int
	Column  string
	Message string
	Value   string
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// RowErrors collects every bad row so a file can be fixed in one pass
type RowErrors []RowError

// Error implements the error interface
func (es RowErrors) Error() string {
	const shown = 5
	parts := make([]string, 0, shown)
	for i, e := range es {
		if i == shown {
			parts = append(parts, fmt.Sprintf("and %d more", len(es)-shown))
			break
		}
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}
