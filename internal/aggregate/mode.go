package aggregate

// GroupMode is the most common category value of one group.
type GroupMode struct {
	Group string
	Value string
	// Count is the number of occurrences of Value; zero when Value is NotAvailable.
	Count int
}

// MostCommon returns the mode of column for every group. Empty values are
// ignored; whitespace-only values count like any other value. A group without values reports NotAvailable; ties resolve to the
// lexically smallest value.
func (a *Aggregator) MostCommon(column string) ([]GroupMode, error) {
	col, err := a.ds.Column(column)
	if err != nil {
		return nil, err
	}
	out := make([]GroupMode, 0, len(a.keys))
	for _, key := range a.keys {
		counts := make(map[string]int)
		for _, r := range a.members[key] {
			value := col.Raw(r)
			if value == "" {
				continue
			}
			counts[value]++
		}
		value, count := Mode(counts)
		out = append(out, GroupMode{Group: key, Value: value, Count: count})
	}
	return out, nil
}

// Mode picks the most frequent key of counts, preferring the lexically
// smallest key among ties. An empty map yields NotAvailable.
func Mode(counts map[string]int) (string, int) {
	best, bestCount := NotAvailable, 0
	for value, n := range counts {
		if n > bestCount || (n == bestCount && value < best) {
			best, bestCount = value, n
		}
	}
	return best, bestCount
}
