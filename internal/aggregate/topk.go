package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"dietstat/internal/dataset"
)

// Strategy selects how TopK finds the largest records.
type Strategy int

const (
	// StableSort sorts every row by value with a stable sort, then keeps the
	// first k rows seen for each group.
	StableSort Strategy = iota
	// Select keeps a bounded, ordered selection of at most k rows per group.
	Select
)

func (s Strategy) String() string {
	switch s {
	case StableSort:
		return "stable"
	case Select:
		return "select"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a configuration value to a Strategy.
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "stable", "sort", "":
		return StableSort, nil
	case "select", "nlargest":
		return Select, nil
	default:
		return 0, fmt.Errorf("unknown top-k strategy %q", value)
	}
}

// RankedGroup is the selection for one group, best first.
type RankedGroup struct {
	Group   string
	Records []dataset.Record
}

// TopKSelection holds the top records of every group.
type TopKSelection struct {
	Column string
	K      int
	Groups []RankedGroup
}

// Group returns the records selected for group.
func (s *TopKSelection) Group(group string) []dataset.Record {
	for _, g := range s.Groups {
		if g.Group == group {
			return g.Records
		}
	}
	return nil
}

type ranked struct {
	row   int
	value dataset.Float
}

// ahead reports whether a ranks strictly before b: larger values first,
// missing values last, original order among equals.
func ahead(a, b ranked) bool {
	if a.value.Valid != b.value.Valid {
		return a.value.Valid
	}
	if a.value.Valid && a.value.Value != b.value.Value {
		return a.value.Value > b.value.Value
	}
	return a.row < b.row
}

// TopK returns, per group, the k records with the largest value of column in
// descending order. Groups with fewer than k records return all of them.
func (a *Aggregator) TopK(column string, k int, strategy Strategy) (*TopKSelection, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	col, err := a.numericColumn(column)
	if err != nil {
		return nil, err
	}

	var rows map[string][]int
	switch strategy {
	case StableSort:
		rows = a.topKStable(col, k)
	case Select:
		rows = a.topKSelect(col, k)
	default:
		return nil, fmt.Errorf("unknown top-k strategy %v", strategy)
	}

	sel := &TopKSelection{Column: column, K: k, Groups: make([]RankedGroup, 0, len(a.keys))}
	for _, key := range a.keys {
		idx := rows[key]
		records := make([]dataset.Record, len(idx))
		for i, r := range idx {
			records[i] = a.ds.Record(r)
		}
		sel.Groups = append(sel.Groups, RankedGroup{Group: key, Records: records})
	}
	return sel, nil
}

func (a *Aggregator) topKStable(col *dataset.Column, k int) map[string][]int {
	all := make([]ranked, 0, a.ds.Len())
	labels := make([]string, a.ds.Len())
	for _, key := range a.keys {
		for _, r := range a.members[key] {
			labels[r] = key
		}
	}
	for r := 0; r < a.ds.Len(); r++ {
		if labels[r] == "" {
			continue
		}
		all = append(all, ranked{row: r, value: col.Float(r)})
	}
	// Row order is the tie-break, so the comparator only looks at values.
	sort.SliceStable(all, func(i, j int) bool {
		vi, vj := all[i].value, all[j].value
		if vi.Valid != vj.Valid {
			return vi.Valid
		}
		return vi.Valid && vi.Value > vj.Value
	})

	out := make(map[string][]int, len(a.keys))
	for _, item := range all {
		label := labels[item.row]
		if len(out[label]) < k {
			out[label] = append(out[label], item.row)
		}
	}
	return out
}

func (a *Aggregator) topKSelect(col *dataset.Column, k int) map[string][]int {
	out := make(map[string][]int, len(a.keys))
	for _, key := range a.keys {
		members := a.members[key]
		limit := k
		if len(members) < limit {
			limit = len(members)
		}
		best := make([]ranked, 0, limit)
		for _, r := range members {
			item := ranked{row: r, value: col.Float(r)}
			if len(best) == limit && !ahead(item, best[len(best)-1]) {
				continue
			}
			pos := sort.Search(len(best), func(i int) bool { return ahead(item, best[i]) })
			if len(best) < limit {
				best = append(best, ranked{})
			}
			copy(best[pos+1:], best[pos:len(best)-1])
			best[pos] = item
		}
		idx := make([]int, len(best))
		for i, item := range best {
			idx[i] = item.row
		}
		out[key] = idx
	}
	return out
}
