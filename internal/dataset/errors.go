package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputNotFound indicates the source CSV does not exist.
	ErrInputNotFound = errors.New("input csv not found")
	// ErrUnknownColumn indicates a column name that is not part of the dataset.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrColumnExists indicates an attempt to add a column that already exists.
	ErrColumnExists = errors.New("column already exists")
	// ErrEmptyHeader indicates the CSV has no header row.
	ErrEmptyHeader = errors.New("csv header is empty")
)

// MissingColumnsError lists required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RowWidthError reports a data row with more fields than the header.
type RowWidthError struct {
	Line   int
	Fields int
	Want   int
}

func (e *RowWidthError) Error() string {
	return fmt.Sprintf("line %d: expected at most %d fields, saw %d", e.Line, e.Want, e.Fields)
}

