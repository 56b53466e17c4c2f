package cleaner_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"dietstat/internal/cleaner"
	"dietstat/internal/dataset"
)

var macros = []string{"Protein(g)", "Carbs(g)", "Fat(g)"}

func mustRead(t *testing.T, csv string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return ds
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"12", 12, true},
		{" 12.5 ", 12.5, true},
		{"-3", -3, true},
		{"+2.5E-2", 0.025, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"1e3", 1000, true},
		{"0", 0, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"12g", 0, false},
		{"1,000", 0, false},
		{"1_000", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"-Infinity", 0, false},
		{"0x1p-2", 0, false},
		{"1e400", 0, false},
		{"--1", 0, false},
		{".", 0, false},
	}
	for _, tc := range tests {
		got, ok := cleaner.ParseNumeric(tc.raw)
		if ok != tc.ok {
			t.Errorf("ParseNumeric(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("ParseNumeric(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestCleanFillsWithMeanAfterCoercion(t *testing.T) {
	ds := mustRead(t, `Diet_type,Recipe_name,Protein(g),Carbs(g),Fat(g)
vegan,a,10,abc,1
vegan,b,,20,2
paleo,c,20,40,
paleo,d,30,n/a,3
`)

	report, err := cleaner.Clean(ds, macros...)
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}

	protein := ds.Record(1).Float("Protein(g)")
	if !protein.Valid || protein.Value != 20 {
		t.Fatalf("expected protein mean 20, got %+v", protein)
	}
	carbs := ds.Record(0).Float("Carbs(g)")
	if !carbs.Valid || carbs.Value != 30 {
		t.Fatalf("expected carbs mean 30 over coerced values, got %+v", carbs)
	}
	fat := ds.Record(2).Float("Fat(g)")
	if !fat.Valid || fat.Value != 2 {
		t.Fatalf("expected fat mean 2, got %+v", fat)
	}

	if len(report.Columns) != 3 {
		t.Fatalf("expected 3 column reports, got %d", len(report.Columns))
	}
	carbStats := report.Columns[1]
	if carbStats.MissingBefore != 2 || carbStats.Unparsable != 2 || carbStats.Filled != 2 {
		t.Fatalf("unexpected carbs stats %+v", carbStats)
	}
	if got := ds.Record(0).Text("Recipe_name"); got != "a" {
		t.Fatalf("non-numeric column changed: %q", got)
	}
}

func TestCleanLeavesNoMissingValues(t *testing.T) {
	ds := mustRead(t, `Diet_type,Protein(g),Carbs(g),Fat(g)
a,1,,x
b,,2,
c,3,4,5
`)
	if _, err := cleaner.Clean(ds, macros...); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	counts, err := cleaner.MissingCounts(ds, macros...)
	if err != nil {
		t.Fatalf("MissingCounts: %v", err)
	}
	for col, n := range counts {
		if n != 0 {
			t.Fatalf("column %s still has %d missing values", col, n)
		}
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	ds := mustRead(t, `Diet_type,Protein(g),Carbs(g),Fat(g)
a,1.5,,x
b,,2,7
`)
	if _, err := cleaner.Clean(ds, macros...); err != nil {
		t.Fatalf("first Clean: %v", err)
	}
	before := [][]string{ds.Row(0), ds.Row(1)}

	report, err := cleaner.Clean(ds, macros...)
	if err != nil {
		t.Fatalf("second Clean: %v", err)
	}
	for _, stats := range report.Columns {
		if stats.Filled != 0 || stats.MissingBefore != 0 {
			t.Fatalf("second pass changed %s: %+v", stats.Column, stats)
		}
	}
	for i, row := range before {
		got := ds.Row(i)
		for c := range row {
			if got[c] != row[c] {
				t.Fatalf("row %d changed: %v -> %v", i, row, got)
			}
		}
	}
}

func TestCleanFillsWhenSumOverflows(t *testing.T) {
	ds := mustRead(t, `Diet_type,Protein(g)
a,1e308
b,1e308
c,
`)
	report, err := cleaner.Clean(ds, "Protein(g)")
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if got := report.Columns[0]; got.Filled != 1 || got.Mean != 1e308 {
		t.Fatalf("unexpected stats %+v", got)
	}
	if got := ds.Record(2).Float("Protein(g)"); !got.Valid || got.Value != 1e308 {
		t.Fatalf("row 2 = %+v, want 1e308", got)
	}
}

func TestCleanAllValuesMissing(t *testing.T) {
	ds := mustRead(t, `Diet_type,Protein(g),Carbs(g),Fat(g)
a,1,,x
b,2,n/a,
`)
	_, err := cleaner.Clean(ds, macros...)
	if !errors.Is(err, cleaner.ErrAllValuesMissingInColumn) {
		t.Fatalf("expected ErrAllValuesMissingInColumn, got %v", err)
	}
	var missing *cleaner.AllValuesMissingError
	if !errors.As(err, &missing) || missing.Column != "Carbs(g)" {
		t.Fatalf("expected error naming Carbs(g), got %v", err)
	}
	col, colErr := ds.Column("Carbs(g)")
	if colErr != nil {
		t.Fatalf("Column: %v", colErr)
	}
	if col.IsNumeric() {
		t.Fatal("failed column must be left unchanged")
	}
}

func TestCleanEmptyDatasetSucceeds(t *testing.T) {
	ds := mustRead(t, "Diet_type,Protein(g),Carbs(g),Fat(g)\n")
	if _, err := cleaner.Clean(ds, macros...); err != nil {
		t.Fatalf("Clean on empty dataset: %v", err)
	}
}

func TestCleanUnknownColumn(t *testing.T) {
	ds := mustRead(t, "Diet_type,Protein(g)\na,1\n")
	if _, err := cleaner.Clean(ds, "Sugar(g)"); !errors.Is(err, dataset.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}
