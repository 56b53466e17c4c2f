package aggregate

import (
	"fmt"

	"dietstat/internal/dataset"
)

// GroupStats holds the means of one group.
type GroupStats struct {
	Group string
	Count int
	// Means is aligned with GroupAggregate.Columns. A mean is missing only
	// when the group has no valid value in that column.
	Means []dataset.Float
}

// GroupAggregate maps every group to the mean of each numeric column.
type GroupAggregate struct {
	Columns []string
	Groups  []GroupStats
	index   map[string]int
	colIdx  map[string]int
}

// Keys returns the group labels in iteration order.
func (g *GroupAggregate) Keys() []string {
	keys := make([]string, len(g.Groups))
	for i, s := range g.Groups {
		keys[i] = s.Group
	}
	return keys
}

// Mean returns the mean of column for group.
func (g *GroupAggregate) Mean(group, column string) (dataset.Float, bool) {
	gi, ok := g.index[group]
	if !ok {
		return dataset.Float{}, false
	}
	ci, ok := g.colIdx[column]
	if !ok {
		return dataset.Float{}, false
	}
	return g.Groups[gi].Means[ci], true
}

// GroupMeans computes the per-group mean of each column.
func (a *Aggregator) GroupMeans(columns ...string) (*GroupAggregate, error) {
	cols := make([]*dataset.Column, len(columns))
	for i, name := range columns {
		col, err := a.numericColumn(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	agg := &GroupAggregate{
		Columns: append([]string(nil), columns...),
		Groups:  make([]GroupStats, 0, len(a.keys)),
		index:   make(map[string]int, len(a.keys)),
		colIdx:  make(map[string]int, len(columns)),
	}
	for i, name := range columns {
		if _, dup := agg.colIdx[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		agg.colIdx[name] = i
	}

	for _, key := range a.keys {
		rows := a.members[key]
		stats := GroupStats{Group: key, Count: len(rows), Means: make([]dataset.Float, len(cols))}
		for c, col := range cols {
			var mean dataset.RunningMean
			for _, r := range rows {
				if v := col.Float(r); v.Valid {
					mean.Add(v.Value)
				}
			}
			stats.Means[c] = mean.Value()
		}
		agg.index[key] = len(agg.Groups)
		agg.Groups = append(agg.Groups, stats)
	}
	return agg, nil
}

// MaxBy returns the group with the largest mean for metric. Groups whose mean
// is missing are skipped; among equal means the first group in iteration
// order wins.
func MaxBy(agg *GroupAggregate, metric string) (string, float64, error) {
	ci, ok := agg.colIdx[metric]
	if !ok {
		return "", 0, fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, metric)
	}
	best := -1
	for i, g := range agg.Groups {
		v := g.Means[ci]
		if !v.Valid {
			continue
		}
		if best < 0 || v.Value > agg.Groups[best].Means[ci].Value {
			best = i
		}
	}
	if best < 0 {
		return "", 0, ErrNoGroups
	}
	return agg.Groups[best].Group, agg.Groups[best].Means[ci].Value, nil
}
