package aggregate_test

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strconv"
	"testing"

	"dietstat/internal/aggregate"
	"dietstat/internal/cleaner"
	"dietstat/internal/dataset"
)

var header = []string{"Diet_type", "Recipe_name", "Cuisine_type", "Protein(g)", "Carbs(g)", "Fat(g)"}

func cleaned(t testing.TB, rows [][]string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(header, rows)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	if _, err := cleaner.Clean(ds, "Protein(g)", "Carbs(g)", "Fat(g)"); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	return ds
}

func sampleRows() [][]string {
	return [][]string{
		{"vegan", "Lentil Soup", "indian", "18", "40", "4"},
		{"keto", "Steak", "american", "50", "2", "30"},
		{"vegan", "Tofu Bowl", "asian", "22", "35", "10"},
		{"paleo", "Salmon", "nordic", "40", "0", "20"},
		{"keto", "Egg Cups", "french", "20", "4", "15"},
		{"vegan", "Chickpea Curry", "indian", "15", "50", "8"},
		{"", "Unlabelled", "none", "1", "1", "1"},
	}
}

func TestGroupMeansKeysAndValues(t *testing.T) {
	ds := cleaned(t, sampleRows())
	agg, err := aggregate.GroupMeans(ds, "Diet_type", "Protein(g)", "Carbs(g)", "Fat(g)")
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}
	if got, want := agg.Keys(), []string{"keto", "paleo", "vegan"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	cases := []struct {
		group, column string
		want          float64
	}{
		{"keto", "Protein(g)", 35},
		{"paleo", "Carbs(g)", 0},
		{"vegan", "Protein(g)", 55.0 / 3},
		{"vegan", "Fat(g)", 22.0 / 3},
	}
	for _, tc := range cases {
		got, ok := agg.Mean(tc.group, tc.column)
		if !ok || !got.Valid {
			t.Fatalf("mean %s/%s missing", tc.group, tc.column)
		}
		if got.Value != tc.want {
			t.Fatalf("mean %s/%s = %v, want %v", tc.group, tc.column, got.Value, tc.want)
		}
	}
	if _, ok := agg.Mean("unlabelled", "Protein(g)"); ok {
		t.Fatalf("expected no group for unknown label")
	}
}

func TestGroupMeansLargeValues(t *testing.T) {
	ds := cleaned(t, [][]string{
		{"keto", "a", "x", "1e308", "1", "1"},
		{"keto", "b", "x", "1e308", "1", "1"},
	})
	agg, err := aggregate.GroupMeans(ds, "Diet_type", "Protein(g)")
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}
	got, ok := agg.Mean("keto", "Protein(g)")
	if !ok || !got.Valid || got.Value != 1e308 {
		t.Fatalf("mean = %+v, want 1e308", got)
	}
}

func TestGroupMeansRejectsTextColumn(t *testing.T) {
	ds := cleaned(t, sampleRows())
	if _, err := aggregate.GroupMeans(ds, "Diet_type", "Cuisine_type"); !errors.Is(err, aggregate.ErrNotNumeric) {
		t.Fatalf("expected ErrNotNumeric, got %v", err)
	}
	if _, err := aggregate.GroupMeans(ds, "Diet", "Protein(g)"); !errors.Is(err, dataset.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestTopKStrategiesAgree(t *testing.T) {
	rows := [][]string{
		{"vegan", "a", "x", "5", "1", "1"},
		{"vegan", "b", "x", "9", "1", "1"},
		{"vegan", "c", "x", "5", "1", "1"},
		{"vegan", "d", "x", "7", "1", "1"},
		{"vegan", "e", "x", "5", "1", "1"},
		{"vegan", "f", "x", "1", "1", "1"},
		{"vegan", "g", "x", "5", "1", "1"},
		{"keto", "h", "x", "3", "1", "1"},
		{"keto", "i", "x", "4", "1", "1"},
	}
	ds := cleaned(t, rows)
	for _, strategy := range []aggregate.Strategy{aggregate.StableSort, aggregate.Select} {
		t.Run(strategy.String(), func(t *testing.T) {
			sel, err := aggregate.TopK(ds, "Diet_type", "Protein(g)", 5, strategy)
			if err != nil {
				t.Fatalf("TopK: %v", err)
			}
			if got := names(sel.Group("vegan")); !reflect.DeepEqual(got, []string{"b", "d", "a", "c", "e"}) {
				t.Fatalf("vegan top = %v", got)
			}
			if got := names(sel.Group("keto")); !reflect.DeepEqual(got, []string{"i", "h"}) {
				t.Fatalf("keto top = %v", got)
			}
			if len(sel.Groups) != 2 || sel.Groups[0].Group != "keto" {
				t.Fatalf("unexpected group order %+v", sel.Groups)
			}
		})
	}
}

func TestTopKDominance(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	rows := make([][]string, 0, 400)
	diets := []string{"vegan", "keto", "paleo", "dash", "mediterranean"}
	for i := 0; i < 400; i++ {
		rows = append(rows, []string{
			diets[rng.Intn(len(diets))],
			"r" + strconv.Itoa(i),
			"c",
			strconv.Itoa(rng.Intn(30)),
			"1",
			"1",
		})
	}
	ds := cleaned(t, rows)
	const k = 5
	stable, err := aggregate.TopK(ds, "Diet_type", "Protein(g)", k, aggregate.StableSort)
	if err != nil {
		t.Fatalf("TopK stable: %v", err)
	}
	selected, err := aggregate.TopK(ds, "Diet_type", "Protein(g)", k, aggregate.Select)
	if err != nil {
		t.Fatalf("TopK select: %v", err)
	}
	for i, g := range stable.Groups {
		if !reflect.DeepEqual(indexes(g.Records), indexes(selected.Groups[i].Records)) {
			t.Fatalf("strategies disagree for %s", g.Group)
		}
		if len(g.Records) > k {
			t.Fatalf("group %s has %d records", g.Group, len(g.Records))
		}
		chosen := make(map[int]bool)
		minimum := g.Records[len(g.Records)-1].Float("Protein(g)").Value
		for j, rec := range g.Records {
			chosen[rec.Index()] = true
			if j > 0 && rec.Float("Protein(g)").Value > g.Records[j-1].Float("Protein(g)").Value {
				t.Fatalf("group %s not descending", g.Group)
			}
		}
		for r := 0; r < ds.Len(); r++ {
			rec := ds.Record(r)
			if rec.Text("Diet_type") != g.Group || chosen[r] {
				continue
			}
			if rec.Float("Protein(g)").Value > minimum {
				t.Fatalf("group %s dropped row %d larger than selection", g.Group, r)
			}
		}
	}
}

func TestTopKInvalidK(t *testing.T) {
	ds := cleaned(t, sampleRows())
	if _, err := aggregate.TopK(ds, "Diet_type", "Protein(g)", 0, aggregate.Select); !errors.Is(err, aggregate.ErrInvalidK) {
		t.Fatalf("expected ErrInvalidK, got %v", err)
	}
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]aggregate.Strategy{"stable": aggregate.StableSort, "SELECT": aggregate.Select, "": aggregate.StableSort}
	for in, want := range cases {
		got, err := aggregate.ParseStrategy(in)
		if err != nil || got != want {
			t.Fatalf("ParseStrategy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := aggregate.ParseStrategy("heap"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestMostCommon(t *testing.T) {
	rows := [][]string{
		{"vegan", "a", "indian", "1", "1", "1"},
		{"vegan", "b", "asian", "1", "1", "1"},
		{"vegan", "c", "indian", "1", "1", "1"},
		{"keto", "d", "french", "1", "1", "1"},
		{"keto", "e", "american", "1", "1", "1"},
		{"paleo", "f", "", "1", "1", "1"},
		{"paleo", "g", "", "1", "1", "1"},
		{"raw", "h", "  ", "1", "1", "1"},
		{"raw", "i", "thai", "1", "1", "1"},
		{"raw", "j", "  ", "1", "1", "1"},
	}
	ds := cleaned(t, rows)
	got, err := aggregate.MostCommon(ds, "Diet_type", "Cuisine_type")
	if err != nil {
		t.Fatalf("MostCommon: %v", err)
	}
	want := map[string]string{"vegan": "indian", "keto": "american", "paleo": aggregate.NotAvailable, "raw": "  "}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MostCommon = %v, want %v", got, want)
	}
}

func TestMaxByTieKeepsFirstGroup(t *testing.T) {
	rows := [][]string{
		{"vegan", "a", "x", "30", "1", "1"},
		{"keto", "b", "x", "30", "1", "1"},
		{"paleo", "c", "x", "10", "1", "1"},
	}
	ds := cleaned(t, rows)
	agg, err := aggregate.GroupMeans(ds, "Diet_type", "Protein(g)")
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}
	group, value, err := aggregate.MaxBy(agg, "Protein(g)")
	if err != nil {
		t.Fatalf("MaxBy: %v", err)
	}
	if group != "keto" || value != 30 {
		t.Fatalf("MaxBy = %s %v, want keto 30", group, value)
	}
	if _, _, err := aggregate.MaxBy(agg, "Fat(g)"); !errors.Is(err, dataset.ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestMaxByEmpty(t *testing.T) {
	ds, err := dataset.New(header, nil)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	if err := ds.SetNumeric("Protein(g)", nil); err != nil {
		t.Fatalf("SetNumeric: %v", err)
	}
	agg, err := aggregate.GroupMeans(ds, "Diet_type", "Protein(g)")
	if err != nil {
		t.Fatalf("GroupMeans: %v", err)
	}
	if _, _, err := aggregate.MaxBy(agg, "Protein(g)"); !errors.Is(err, aggregate.ErrNoGroups) {
		t.Fatalf("expected ErrNoGroups, got %v", err)
	}
}

func names(records []dataset.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text("Recipe_name")
	}
	return out
}

func indexes(records []dataset.Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Index()
	}
	return out
}

func benchmarkTopK(b *testing.B, strategy aggregate.Strategy) {
	rng := rand.New(rand.NewSource(1))
	rows := make([][]string, 5000)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("diet%d", rng.Intn(6)), "r", "c", strconv.FormatFloat(rng.Float64()*100, 'f', 2, 64), "1", "1"}
	}
	ds := cleaned(b, rows)
	agg, err := aggregate.New(ds, "Diet_type")
	if err != nil {
		b.Fatalf("New: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := agg.TopK("Protein(g)", 5, strategy); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTopKStableSort(b *testing.B) { benchmarkTopK(b, aggregate.StableSort) }

func BenchmarkTopKSelect(b *testing.B) { benchmarkTopK(b, aggregate.Select) }
