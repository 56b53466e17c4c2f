// Package metrics derives ratio columns from cleaned numeric columns.
package metrics

import (
	"fmt"

	"dietstat/internal/dataset"
)

// RatioSpec names a derived column and its operands.
type RatioSpec struct {
	Name        string
	Numerator   string
	Denominator string
}

// DefaultRatios returns the macro ratios reported for every run.
func DefaultRatios() []RatioSpec {
	return []RatioSpec{
		{Name: "Protein_to_Carbs_ratio", Numerator: "Protein(g)", Denominator: "Carbs(g)"},
		{Name: "Carbs_to_Fat_ratio", Numerator: "Carbs(g)", Denominator: "Fat(g)"},
	}
}

// Ratio divides a by b. The result is missing when either operand is missing
// or b is zero. A quotient that overflows float64 (for example 1e300/1e-300)
// is also missing, since a missing marker is the only non-finite value a
// column can hold.
func Ratio(a, b dataset.Float) dataset.Float {
	if !a.Valid || !b.Valid || b.Value == 0 {
		return dataset.Missing()
	}
	return dataset.Some(a.Value / b.Value)
}

// Derive appends one column per spec. Operand columns are read, never
// modified. All specs are checked before any column is added.
func Derive(ds *dataset.Dataset, specs ...RatioSpec) error {
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if ds.HasColumn(spec.Name) || seen[spec.Name] {
			return fmt.Errorf("derive %s: %w", spec.Name, dataset.ErrColumnExists)
		}
		seen[spec.Name] = true
		if err := ds.Require(spec.Numerator, spec.Denominator); err != nil {
			return fmt.Errorf("derive %s: %w", spec.Name, err)
		}
	}

	for _, spec := range specs {
		num, err := ds.Column(spec.Numerator)
		if err != nil {
			return err
		}
		den, err := ds.Column(spec.Denominator)
		if err != nil {
			return err
		}
		values := make([]dataset.Float, ds.Len())
		for i := range values {
			values[i] = Ratio(num.Float(i), den.Float(i))
		}
		if err := ds.AddNumeric(spec.Name, values); err != nil {
			return fmt.Errorf("derive %s: %w", spec.Name, err)
		}
	}
	return nil
}

// MissingCount returns how many values of column are missing.
func MissingCount(ds *dataset.Dataset, column string) (int, error) {
	col, err := ds.Column(column)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := 0; i < ds.Len(); i++ {
		if !col.Float(i).Valid {
			n++
		}
	}
	return n, nil
}
