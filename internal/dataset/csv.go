package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"dietstat/internal/fileutil"
)

// NewTextReader wraps r so a leading UTF-8 BOM is dropped and invalid UTF-8
// sequences decode to U+FFFD instead of failing the read.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadRows parses CSV from r into a header and data rows. Rows may be shorter
// or longer than the header; callers decide how to treat the difference.
// A bare quote inside an unquoted field is kept as a literal character.
func ReadRows(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(NewTextReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrEmptyHeader
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	header = append([]string(nil), header...)

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

// Read parses CSV from r into a Dataset.
func Read(r io.Reader) (*Dataset, error) {
	header, rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return New(header, rows)
}

// LoadFile reads the CSV at path. A missing file yields ErrInputNotFound.
func LoadFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("open input csv: %w", err)
	}
	defer file.Close()

	ds, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// Write serializes ds as CSV with a header row.
func Write(w io.Writer, ds *Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ds.ColumnNames()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := 0; i < ds.Len(); i++ {
		if err := writer.Write(ds.Row(i)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile atomically replaces path with the CSV serialization of ds.
func WriteFile(path string, ds *Dataset) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Write(w, ds)
	})
}
