package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"dietstat/internal/dataset"
)

var (
	// ErrNoGroups indicates there is no group to select from.
	ErrNoGroups = errors.New("no groups")
	// ErrNotNumeric indicates a numeric operation on a text column.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrInvalidK indicates a non-positive top-K size.
	ErrInvalidK = errors.New("k must be at least 1")
)

// NotAvailable is reported by MostCommon for groups with no category values.
const NotAvailable = "N/A"

// Aggregator partitions a dataset by a grouping column.
type Aggregator struct {
	ds      *dataset.Dataset
	keys    []string
	members map[string][]int
}

// New groups the rows of ds by groupCol.
func New(ds *dataset.Dataset, groupCol string) (*Aggregator, error) {
	col, err := ds.Column(groupCol)
	if err != nil {
		return nil, err
	}
	members := make(map[string][]int)
	for i := 0; i < ds.Len(); i++ {
		label := col.Raw(i)
		if label == "" {
			continue
		}
		members[label] = append(members[label], i)
	}
	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Aggregator{ds: ds, keys: keys, members: members}, nil
}

// Groups returns the group labels in ascending order.
func (a *Aggregator) Groups() []string {
	return append([]string(nil), a.keys...)
}

// Size returns the number of rows in group.
func (a *Aggregator) Size(group string) int {
	return len(a.members[group])
}

func (a *Aggregator) numericColumn(name string) (*dataset.Column, error) {
	col, err := a.ds.Column(name)
	if err != nil {
		return nil, err
	}
	if !col.IsNumeric() {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}
	return col, nil
}

// GroupMeans groups ds by groupCol and averages each of columns.
func GroupMeans(ds *dataset.Dataset, groupCol string, columns ...string) (*GroupAggregate, error) {
	a, err := New(ds, groupCol)
	if err != nil {
		return nil, err
	}
	return a.GroupMeans(columns...)
}

// TopK groups ds by groupCol and selects the k largest rows per group.
func TopK(ds *dataset.Dataset, groupCol, rankCol string, k int, strategy Strategy) (*TopKSelection, error) {
	a, err := New(ds, groupCol)
	if err != nil {
		return nil, err
	}
	return a.TopK(rankCol, k, strategy)
}

// MostCommon groups ds by groupCol and returns the mode of categoryCol keyed
// by group label.
func MostCommon(ds *dataset.Dataset, groupCol, categoryCol string) (map[string]string, error) {
	a, err := New(ds, groupCol)
	if err != nil {
		return nil, err
	}
	modes, err := a.MostCommon(categoryCol)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(modes))
	for _, m := range modes {
		out[m.Group] = m.Value
	}
	return out, nil
}
