package cleaner

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dietstat/internal/dataset"
	"dietstat/internal/logging"
)

// ErrAllValuesMissingInColumn reports a column with no valid value to average.
var ErrAllValuesMissingInColumn = errors.New("all values missing in column")

// AllValuesMissingError names the column that could not be filled.
type AllValuesMissingError struct {
	Column string
	Rows   int
}

func (e *AllValuesMissingError) Error() string {
	return fmt.Sprintf("column %q: %d rows and no numeric value to compute a fill mean", e.Column, e.Rows)
}

// Unwrap lets errors.Is match ErrAllValuesMissingInColumn.
func (e *AllValuesMissingError) Unwrap() error { return ErrAllValuesMissingInColumn }

// ColumnStats summarizes the work done on one column.
type ColumnStats struct {
	Column string `json:"column" yaml:"column"`
	// MissingBefore counts cells that were blank or unparsable before filling.
	MissingBefore int `json:"missing_before" yaml:"missing_before"`
	// Unparsable counts non-blank cells that failed coercion.
	Unparsable int `json:"unparsable" yaml:"unparsable"`
	// Filled counts cells replaced with Mean.
	Filled int `json:"filled" yaml:"filled"`
	// Mean is the fill value; zero when nothing needed filling and the column is empty.
	Mean float64 `json:"mean" yaml:"mean"`
}

// Report is the per-column outcome of Clean.
type Report struct {
	Columns []ColumnStats `json:"columns" yaml:"columns"`
}

// Cleaner applies coercion and mean filling to a dataset.
type Cleaner struct {
	logger *slog.Logger
}

// New returns a Cleaner that logs per-column results.
func New(logger *slog.Logger) *Cleaner {
	return &Cleaner{logger: logging.NewComponentLogger(logger, "cleaner")}
}

// Clean coerces each named column and fills its missing values with the mean
// of the valid values. Columns are processed in order; the first column that
// cannot be filled aborts the call and is left unchanged.
func (c *Cleaner) Clean(ds *dataset.Dataset, columns ...string) (Report, error) {
	var report Report
	for _, name := range columns {
		stats, err := c.cleanColumn(ds, name)
		if err != nil {
			return report, err
		}
		report.Columns = append(report.Columns, stats)
	}
	return report, nil
}

// Clean is a convenience wrapper around a Cleaner without logging.
func Clean(ds *dataset.Dataset, columns ...string) (Report, error) {
	return New(nil).Clean(ds, columns...)
}

func (c *Cleaner) cleanColumn(ds *dataset.Dataset, name string) (ColumnStats, error) {
	col, err := ds.Column(name)
	if err != nil {
		return ColumnStats{}, err
	}

	stats := ColumnStats{Column: name}
	values, unparsable := Coerce(col, ds.Len())
	stats.Unparsable = unparsable

	var mean dataset.RunningMean
	for _, v := range values {
		if v.Valid {
			mean.Add(v.Value)
		}
	}
	stats.MissingBefore = len(values) - mean.Count()
	fill := mean.Value()
	stats.Mean = fill.Value

	if stats.MissingBefore > 0 {
		if !fill.Valid {
			return stats, &AllValuesMissingError{Column: name, Rows: len(values)}
		}
		for i := range values {
			if !values[i].Valid {
				values[i] = fill
				stats.Filled++
			}
		}
	}

	if err := ds.SetNumeric(name, values); err != nil {
		return stats, err
	}

	if stats.Filled > 0 {
		c.logger.Info("filled missing values with column mean",
			logging.String("column", name),
			logging.Int("filled", stats.Filled),
			logging.Int("unparsable", stats.Unparsable),
			logging.Float64("mean", stats.Mean))
	} else {
		c.logger.Debug("column has no missing values", logging.String("column", name))
	}
	return stats, nil
}

// Coerce converts every cell of col to a Float. Numeric columns are returned
// as-is; text cells go through ParseNumeric. The second result counts
// non-blank cells that failed to parse.
func Coerce(col *dataset.Column, rows int) ([]dataset.Float, int) {
	if col.IsNumeric() {
		return col.Floats(), 0
	}
	values := make([]dataset.Float, rows)
	unparsable := 0
	for i := 0; i < rows; i++ {
		raw := col.Raw(i)
		if v, ok := ParseNumeric(raw); ok {
			values[i] = dataset.Some(v)
			continue
		}
		if strings.TrimSpace(raw) != "" {
			unparsable++
		}
	}
	return values, unparsable
}

// MissingCounts reports, per column, how many cells are currently missing
// (blank or unparsable text, or missing numbers).
func MissingCounts(ds *dataset.Dataset, columns ...string) (map[string]int, error) {
	counts := make(map[string]int, len(columns))
	for _, name := range columns {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		values, _ := Coerce(col, ds.Len())
		missing := 0
		for _, v := range values {
			if !v.Valid {
				missing++
			}
		}
		counts[name] = missing
	}
	return counts, nil
}
