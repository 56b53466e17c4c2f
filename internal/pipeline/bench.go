package pipeline

import (
	"context"
	"errors"
	"time"

	"dietstat/internal/aggregate"
	"dietstat/internal/cleaner"
	"dietstat/internal/dataset"
	"dietstat/internal/logging"
)

// BenchResult compares the two top-K strategies on one dataset.
type BenchResult struct {
	Rows       int           `json:"rows"`
	Groups     int           `json:"groups"`
	Iterations int           `json:"iterations"`
	StableSort time.Duration `json:"stable_sort_ns"`
	Select     time.Duration `json:"select_ns"`
	// Improvement is the time saved by Select as a percentage of StableSort.
	Improvement float64 `json:"improvement_percent"`
	// SpeedFactor is StableSort divided by Select; zero when Select took no time.
	SpeedFactor float64 `json:"speed_factor"`
	// Identical reports whether both strategies chose the same rows.
	Identical bool `json:"identical"`
}

// Bench loads and cleans the input, then times iterations of each top-K
// strategy. The reported durations are per-iteration averages.
func (a *Analyzer) Bench(ctx context.Context, opts Options, iterations int) (*BenchResult, error) {
	if iterations < 1 {
		iterations = 1
	}
	logger := a.stageLogger(ctx, "bench")

	ds, err := dataset.LoadFile(opts.InputCSV)
	if err != nil {
		marker := ErrValidation
		if errors.Is(err, dataset.ErrInputNotFound) {
			marker = ErrNotFound
		}
		return nil, Wrap(marker, "bench", "read csv", "", err)
	}
	if err := ds.Require(opts.GroupColumn, opts.RankColumn); err != nil {
		return nil, Wrap(ErrValidation, "bench", "check columns", "", err)
	}
	if _, err := cleaner.Clean(ds, opts.RankColumn); err != nil {
		return nil, Wrap(ErrValidation, "bench", "clean", "", err)
	}
	agg, err := aggregate.New(ds, opts.GroupColumn)
	if err != nil {
		return nil, Wrap(ErrValidation, "bench", "group", "", err)
	}

	timeStrategy := func(strategy aggregate.Strategy) (time.Duration, *aggregate.TopKSelection, error) {
		var sel *aggregate.TopKSelection
		start := time.Now()
		for i := 0; i < iterations; i++ {
			if err := ctx.Err(); err != nil {
				return 0, nil, err
			}
			next, topErr := agg.TopK(opts.RankColumn, opts.TopK, strategy)
			if topErr != nil {
				return 0, nil, topErr
			}
			sel = next
		}
		return time.Since(start) / time.Duration(iterations), sel, nil
	}

	stableTime, stableSel, err := timeStrategy(aggregate.StableSort)
	if err != nil {
		return nil, Wrap(ErrValidation, "bench", "stable sort", "", err)
	}
	selectTime, selectSel, err := timeStrategy(aggregate.Select)
	if err != nil {
		return nil, Wrap(ErrValidation, "bench", "select", "", err)
	}

	result := &BenchResult{
		Rows:       ds.Len(),
		Groups:     len(agg.Groups()),
		Iterations: iterations,
		StableSort: stableTime,
		Select:     selectTime,
		Identical:  sameSelection(stableSel, selectSel),
	}
	if stableTime > 0 {
		result.Improvement = float64(stableTime-selectTime) / float64(stableTime) * 100
	}
	if selectTime > 0 {
		result.SpeedFactor = float64(stableTime) / float64(selectTime)
	}
	logger.Info("top-k benchmark",
		logging.Duration("stable_sort", stableTime),
		logging.Duration("select", selectTime),
		logging.Float64("improvement_percent", result.Improvement),
		logging.Bool("identical", result.Identical),
	)
	return result, nil
}

func sameSelection(a, b *aggregate.TopKSelection) bool {
	if len(a.Groups) != len(b.Groups) {
		return false
	}
	for i := range a.Groups {
		ra, rb := a.Groups[i].Records, b.Groups[i].Records
		if a.Groups[i].Group != b.Groups[i].Group || len(ra) != len(rb) {
			return false
		}
		for j := range ra {
			if ra[j].Index() != rb[j].Index() {
				return false
			}
		}
	}
	return true
}
