package report

import (
	"time"

	"dietstat/internal/aggregate"
	"dietstat/internal/cleaner"
	"dietstat/internal/dataset"
)

// Summary is the serialisable outcome of one analyze run.
type Summary struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt  time.Time `json:"completed_at" yaml:"completed_at"`
	Input        string    `json:"input" yaml:"input"`
	ProcessedCSV string    `json:"processed_csv,omitempty" yaml:"processed_csv,omitempty"`
	Rows         int       `json:"rows" yaml:"rows"`
	Columns      []string  `json:"columns" yaml:"columns"`

	MissingBefore map[string]int        `json:"missing_before" yaml:"missing_before"`
	MissingAfter  map[string]int        `json:"missing_after" yaml:"missing_after"`
	Cleaning      []cleaner.ColumnStats `json:"cleaning" yaml:"cleaning"`

	GroupColumn string       `json:"group_column" yaml:"group_column"`
	GroupMeans  []GroupMeans `json:"group_means" yaml:"group_means"`
	TopK        TopK         `json:"top_k" yaml:"top_k"`

	CategoryColumn string `json:"category_column" yaml:"category_column"`
	MostCommon     []Mode `json:"most_common" yaml:"most_common"`

	Max    Max     `json:"max" yaml:"max"`
	Ratios []Ratio `json:"ratios" yaml:"ratios"`
}

// ColumnValue is one named number; Value is nil when missing.
type ColumnValue struct {
	Column string   `json:"column" yaml:"column"`
	Value  *float64 `json:"value" yaml:"value"`
}

// GroupMeans lists the column means of one group.
type GroupMeans struct {
	Group string        `json:"group" yaml:"group"`
	Count int           `json:"count" yaml:"count"`
	Means []ColumnValue `json:"means" yaml:"means"`
}

// TopK is the per-group top selection.
type TopK struct {
	Column   string      `json:"column" yaml:"column"`
	K        int         `json:"k" yaml:"k"`
	Strategy string      `json:"strategy" yaml:"strategy"`
	Groups   []TopKGroup `json:"groups" yaml:"groups"`
}

// TopKGroup holds the selected records of one group, best first.
type TopKGroup struct {
	Group   string       `json:"group" yaml:"group"`
	Records []TopKRecord `json:"records" yaml:"records"`
}

// TopKRecord identifies a selected row.
type TopKRecord struct {
	Row   int      `json:"row" yaml:"row"`
	Name  string   `json:"name" yaml:"name"`
	Value *float64 `json:"value" yaml:"value"`
}

// Mode is the most common category value of one group.
type Mode struct {
	Group string `json:"group" yaml:"group"`
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Max names the group with the largest mean of Metric.
type Max struct {
	Metric string  `json:"metric" yaml:"metric"`
	Group  string  `json:"group" yaml:"group"`
	Value  float64 `json:"value" yaml:"value"`
}

// Ratio describes a derived column.
type Ratio struct {
	Name        string `json:"name" yaml:"name"`
	Numerator   string `json:"numerator" yaml:"numerator"`
	Denominator string `json:"denominator" yaml:"denominator"`
	Missing     int    `json:"missing" yaml:"missing"`
}

func floatPtr(f dataset.Float) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// NewGroupMeans converts an aggregate into summary rows.
func NewGroupMeans(agg *aggregate.GroupAggregate) []GroupMeans {
	out := make([]GroupMeans, 0, len(agg.Groups))
	for _, g := range agg.Groups {
		means := make([]ColumnValue, len(agg.Columns))
		for i, col := range agg.Columns {
			means[i] = ColumnValue{Column: col, Value: floatPtr(g.Means[i])}
		}
		out = append(out, GroupMeans{Group: g.Group, Count: g.Count, Means: means})
	}
	return out
}

// NewTopK converts a selection into summary form, naming rows by nameColumn.
func NewTopK(sel *aggregate.TopKSelection, nameColumn string, strategy aggregate.Strategy) TopK {
	out := TopK{Column: sel.Column, K: sel.K, Strategy: strategy.String(), Groups: make([]TopKGroup, 0, len(sel.Groups))}
	for _, g := range sel.Groups {
		records := make([]TopKRecord, len(g.Records))
		for i, rec := range g.Records {
			records[i] = TopKRecord{
				Row:   rec.Index(),
				Name:  rec.Text(nameColumn),
				Value: floatPtr(rec.Float(sel.Column)),
			}
		}
		out.Groups = append(out.Groups, TopKGroup{Group: g.Group, Records: records})
	}
	return out
}

// NewModes converts group modes into summary form.
func NewModes(modes []aggregate.GroupMode) []Mode {
	out := make([]Mode, len(modes))
	for i, m := range modes {
		out[i] = Mode{Group: m.Group, Value: m.Value, Count: m.Count}
	}
	return out
}
