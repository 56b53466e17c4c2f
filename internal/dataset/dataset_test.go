package dataset_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"dietstat/internal/dataset"
)

const sampleCSV = `Diet_type,Recipe_name,Cuisine_type,Protein(g),Carbs(g),Fat(g),Extraction_day
paleo,"Bone Broth, Slow",american,10.5,2,7.25,2022-10-16
vegan,Tofu Bowl,asian,,30,abc,2022-10-16
keto,Egg Cups,french,20,0,15
`

func TestReadPadsShortRows(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", ds.Len())
	}
	want := []string{"Diet_type", "Recipe_name", "Cuisine_type", "Protein(g)", "Carbs(g)", "Fat(g)", "Extraction_day"}
	if !reflect.DeepEqual(ds.ColumnNames(), want) {
		t.Fatalf("unexpected header %v", ds.ColumnNames())
	}
	if got := ds.Record(0).Text("Recipe_name"); got != "Bone Broth, Slow" {
		t.Fatalf("unexpected quoted field %q", got)
	}
	if got := ds.Record(2).Text("Extraction_day"); got != "" {
		t.Fatalf("expected padded empty cell, got %q", got)
	}
}

func TestReadKeepsBareQuotes(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader("Diet_type,Recipe_name,Cuisine_type,Protein(g),Carbs(g),Fat(g)\nvegan,6\" Veggie Pizza,italian,10,20,5\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := ds.Record(0).Text("Recipe_name"); got != `6" Veggie Pizza` {
		t.Fatalf("unexpected recipe name %q", got)
	}
	if got := ds.Record(0).Text("Cuisine_type"); got != "italian" {
		t.Fatalf("unexpected cuisine %q", got)
	}
}

func TestReadRejectsWideRows(t *testing.T) {
	_, err := dataset.Read(strings.NewReader("a,b\n1,2,3\n"))
	var widthErr *dataset.RowWidthError
	if !errors.As(err, &widthErr) {
		t.Fatalf("expected RowWidthError, got %v", err)
	}
	if widthErr.Line != 2 || widthErr.Fields != 3 {
		t.Fatalf("unexpected width error %+v", widthErr)
	}
}

func TestReadStripsBOMAndReplacesInvalidUTF8(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Diet_type,Recipe_name\nvegan,Caf\xe9\n")...)
	ds, err := dataset.Read(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !ds.HasColumn("Diet_type") {
		t.Fatalf("expected BOM to be stripped from header, got %q", ds.ColumnNames())
	}
	if got := ds.Record(0).Text("Recipe_name"); got != "Caf\uFFFD" {
		t.Fatalf("expected replacement character, got %q", got)
	}
}

func TestReadEmptyInput(t *testing.T) {
	if _, err := dataset.Read(strings.NewReader("")); !errors.Is(err, dataset.ErrEmptyHeader) {
		t.Fatalf("expected ErrEmptyHeader, got %v", err)
	}
}

func TestNewRejectsDuplicateHeader(t *testing.T) {
	if _, err := dataset.New([]string{"a", "a"}, nil); err == nil {
		t.Fatal("expected duplicate header error")
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := dataset.LoadFile(filepath.Join(t.TempDir(), "All_Diets.csv"))
	if !errors.Is(err, dataset.ErrInputNotFound) {
		t.Fatalf("expected ErrInputNotFound, got %v", err)
	}
}

func TestRequire(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := ds.Require("Diet_type", "Protein(g)"); err != nil {
		t.Fatalf("Require: %v", err)
	}
	err = ds.Require("Diet_type", "Sugar(g)", "Sodium(mg)")
	var missing *dataset.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if !reflect.DeepEqual(missing.Columns, []string{"Sugar(g)", "Sodium(mg)"}) {
		t.Fatalf("unexpected missing columns %v", missing.Columns)
	}
}

func TestNumericColumns(t *testing.T) {
	ds, err := dataset.New([]string{"a"}, [][]string{{"1"}, {"x"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ds.SetNumeric("a", []dataset.Float{dataset.Some(1.5), dataset.Missing()}); err != nil {
		t.Fatalf("SetNumeric: %v", err)
	}
	col, err := ds.Column("a")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if !col.IsNumeric() || col.Raw(0) != "1.5" || col.Raw(1) != "" {
		t.Fatalf("unexpected numeric column state: %v %q %q", col.IsNumeric(), col.Raw(0), col.Raw(1))
	}
	if err := ds.SetNumeric("a", []dataset.Float{dataset.Some(1)}); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if err := ds.AddNumeric("a", []dataset.Float{{}, {}}); !errors.Is(err, dataset.ErrColumnExists) {
		t.Fatalf("expected ErrColumnExists, got %v", err)
	}
	if err := ds.AddNumeric("b", []dataset.Float{dataset.Some(2), dataset.Some(3)}); err != nil {
		t.Fatalf("AddNumeric: %v", err)
	}
	if got := ds.Record(1).Float("b"); !got.Valid || got.Value != 3 {
		t.Fatalf("unexpected added value %+v", got)
	}
	if _, err := ds.Column("c"); !errors.Is(err, dataset.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestSomeTreatsNaNAsMissing(t *testing.T) {
	var zero float64
	if !dataset.Some(zero / zero).IsMissing() {
		t.Fatal("expected NaN to be missing")
	}
	if dataset.Some(0).IsMissing() {
		t.Fatal("zero must not be missing")
	}
}

func TestRunningMean(t *testing.T) {
	var empty dataset.RunningMean
	if !empty.Value().IsMissing() {
		t.Fatal("empty mean must be missing")
	}

	var small dataset.RunningMean
	for _, v := range []float64{18, 22, 15} {
		small.Add(v)
	}
	if got := small.Value(); !got.Valid || got.Value != 55.0/3 {
		t.Fatalf("mean = %+v, want %v", got, 55.0/3)
	}

	var large dataset.RunningMean
	large.Add(1e308)
	large.Add(1e308)
	large.Add(1e308)
	if got := large.Value(); !got.Valid || got.Value != 1e308 {
		t.Fatalf("overflowing mean = %+v, want 1e308", got)
	}
	if large.Count() != 3 {
		t.Fatalf("count = %d, want 3", large.Count())
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		10:        "10",
		12.25:     "12.25",
		-0.5:      "-0.5",
		0:         "0",
		1e22:      "1e+22",
		0.0000001: "1e-07",
	}
	for in, want := range cases {
		if got := dataset.FormatFloat(in); got != want {
			t.Errorf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := ds.SetNumeric("Protein(g)", []dataset.Float{dataset.Some(10.5), dataset.Missing(), dataset.Some(20)}); err != nil {
		t.Fatalf("SetNumeric: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "processed.csv")
	if err := dataset.WriteFile(path, ds); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	reloaded, err := dataset.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(reloaded.ColumnNames(), ds.ColumnNames()) {
		t.Fatalf("header mismatch: %v vs %v", reloaded.ColumnNames(), ds.ColumnNames())
	}
	for i := 0; i < ds.Len(); i++ {
		if !reflect.DeepEqual(reloaded.Row(i), ds.Row(i)) {
			t.Fatalf("row %d mismatch: %v vs %v", i, reloaded.Row(i), ds.Row(i))
		}
	}
}

func TestHead(t *testing.T) {
	ds, err := dataset.Read(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := len(ds.Head(2)); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
	if got := len(ds.Head(10)); got != 3 {
		t.Fatalf("expected head clamped to 3 rows, got %d", got)
	}
}
