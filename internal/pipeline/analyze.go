package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dietstat/internal/aggregate"
	"dietstat/internal/cleaner"
	"dietstat/internal/config"
	"dietstat/internal/dataset"
	"dietstat/internal/logging"
	"dietstat/internal/metrics"
	"dietstat/internal/report"
)

// Stage names used in logs and error details.
const (
	StageLoad      = "load"
	StageClean     = "clean"
	StageDerive    = "derive"
	StageAggregate = "aggregate"
	StageWrite     = "write"
)

const headPreviewRows = 5

// Options describes one analyze run.
type Options struct {
	InputCSV     string
	ProcessedCSV string
	// SummaryPath is optional; its extension selects JSON or YAML.
	SummaryPath string

	GroupColumn    string
	NameColumn     string
	CategoryColumn string
	RankColumn     string
	MaxMetric      string
	NumericColumns []string
	TopK           int
	Strategy       aggregate.Strategy
	Ratios         []metrics.RatioSpec
}

// OptionsFromConfig maps configuration onto run options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, Wrap(ErrConfiguration, "", "options", "config is required", nil)
	}
	strategy, err := aggregate.ParseStrategy(cfg.Analysis.TopKStrategy)
	if err != nil {
		return Options{}, Wrap(ErrConfiguration, "", "options", "", err)
	}
	ratios := make([]metrics.RatioSpec, len(cfg.Analysis.Ratios))
	for i, r := range cfg.Analysis.Ratios {
		ratios[i] = metrics.RatioSpec{Name: r.Name, Numerator: r.Numerator, Denominator: r.Denominator}
	}
	return Options{
		InputCSV:       cfg.Paths.InputCSV,
		ProcessedCSV:   cfg.ProcessedCSVPath(),
		SummaryPath:    cfg.SummaryPath(),
		GroupColumn:    cfg.Analysis.GroupColumn,
		NameColumn:     cfg.Analysis.NameColumn,
		CategoryColumn: cfg.Analysis.CategoryColumn,
		RankColumn:     cfg.Analysis.RankColumn,
		MaxMetric:      cfg.Analysis.MaxMetric,
		NumericColumns: append([]string(nil), cfg.Analysis.NumericColumns...),
		TopK:           cfg.Analysis.TopK,
		Strategy:       strategy,
		Ratios:         ratios,
	}, nil
}

// RequiredColumns lists the columns the input CSV must carry, without duplicates.
func (o Options) RequiredColumns() []string {
	cols := []string{o.GroupColumn, o.NameColumn, o.CategoryColumn}
	cols = append(cols, o.NumericColumns...)
	seen := make(map[string]bool, len(cols))
	out := cols[:0]
	for _, c := range cols {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Analyzer runs analyze jobs.
type Analyzer struct {
	base   *slog.Logger
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAnalyzer constructs an Analyzer.
func NewAnalyzer(logger *slog.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &Analyzer{base: logger, logger: logging.NewComponentLogger(logger, "analyze"), now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the full job and returns the summary. The processed CSV and
// the summary file are only written once every computation has succeeded.
func (a *Analyzer) Run(ctx context.Context, opts Options) (*report.Summary, error) {
	runID, ok := logging.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	summary := &report.Summary{
		RunID:          runID,
		StartedAt:      a.now(),
		Input:          opts.InputCSV,
		GroupColumn:    opts.GroupColumn,
		CategoryColumn: opts.CategoryColumn,
	}

	ds, err := a.load(ctx, opts, summary)
	if err != nil {
		return nil, err
	}
	if err := a.clean(ctx, ds, opts, summary); err != nil {
		return nil, err
	}
	if err := a.derive(ctx, ds, opts, summary); err != nil {
		return nil, err
	}
	if err := a.aggregate(ctx, ds, opts, summary); err != nil {
		return nil, err
	}
	if err := a.write(ctx, ds, opts, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (a *Analyzer) stageLogger(ctx context.Context, stage string) *slog.Logger {
	return logging.WithContext(logging.WithStage(ctx, stage), a.logger)
}

func (a *Analyzer) load(ctx context.Context, opts Options, summary *report.Summary) (*dataset.Dataset, error) {
	logger := a.stageLogger(ctx, StageLoad)
	logger.Info("loading dataset", logging.String("input", opts.InputCSV), logging.String("options", opts.Describe()))

	ds, err := dataset.LoadFile(opts.InputCSV)
	if err != nil {
		marker := ErrValidation
		if errors.Is(err, dataset.ErrInputNotFound) {
			marker = ErrNotFound
		}
		return nil, Wrap(marker, StageLoad, "read csv", "", err)
	}
	if err := ds.Require(opts.RequiredColumns()...); err != nil {
		return nil, Wrap(ErrValidation, StageLoad, "check columns", "", err)
	}

	summary.Rows = ds.Len()
	summary.Columns = ds.ColumnNames()
	logger.Info("dataset loaded",
		logging.Int("rows", ds.Len()),
		logging.Int("columns", len(summary.Columns)),
	)
	for i, row := range ds.Head(headPreviewRows) {
		logger.Debug("head", logging.Int("row", i), logging.String("values", strings.Join(row, " | ")))
	}
	return ds, nil
}

func (a *Analyzer) clean(ctx context.Context, ds *dataset.Dataset, opts Options, summary *report.Summary) error {
	logger := a.stageLogger(ctx, StageClean)

	before, err := cleaner.MissingCounts(ds, opts.NumericColumns...)
	if err != nil {
		return Wrap(ErrValidation, StageClean, "count missing", "", err)
	}
	summary.MissingBefore = before

	result, err := cleaner.New(logging.WithContext(logging.WithStage(ctx, StageClean), a.base)).Clean(ds, opts.NumericColumns...)
	if err != nil {
		return Wrap(ErrValidation, StageClean, "fill missing", "", err)
	}
	summary.Cleaning = result.Columns

	after, err := cleaner.MissingCounts(ds, opts.NumericColumns...)
	if err != nil {
		return Wrap(ErrValidation, StageClean, "count missing", "", err)
	}
	summary.MissingAfter = after

	filled := 0
	for _, st := range result.Columns {
		filled += st.Filled
	}
	logger.Info("numeric columns cleaned",
		logging.Int("columns", len(result.Columns)),
		logging.Int("filled", filled),
	)
	return nil
}

func (a *Analyzer) derive(ctx context.Context, ds *dataset.Dataset, opts Options, summary *report.Summary) error {
	logger := a.stageLogger(ctx, StageDerive)
	if err := metrics.Derive(ds, opts.Ratios...); err != nil {
		return Wrap(ErrValidation, StageDerive, "ratios", "", err)
	}
	for _, r := range opts.Ratios {
		missing, err := metrics.MissingCount(ds, r.Name)
		if err != nil {
			return Wrap(ErrValidation, StageDerive, "ratios", "", err)
		}
		summary.Ratios = append(summary.Ratios, report.Ratio{
			Name:        r.Name,
			Numerator:   r.Numerator,
			Denominator: r.Denominator,
			Missing:     missing,
		})
		logger.Info("ratio derived", logging.String("column", r.Name), logging.Int("missing", missing))
	}
	return nil
}

func (a *Analyzer) aggregate(ctx context.Context, ds *dataset.Dataset, opts Options, summary *report.Summary) error {
	logger := a.stageLogger(ctx, StageAggregate)

	agg, err := aggregate.New(ds, opts.GroupColumn)
	if err != nil {
		return Wrap(ErrValidation, StageAggregate, "group", "", err)
	}
	means, err := agg.GroupMeans(opts.NumericColumns...)
	if err != nil {
		return Wrap(ErrValidation, StageAggregate, "group means", "", err)
	}
	summary.GroupMeans = report.NewGroupMeans(means)

	start := time.Now()
	top, err := agg.TopK(opts.RankColumn, opts.TopK, opts.Strategy)
	if err != nil {
		return Wrap(ErrValidation, StageAggregate, "top-k", "", err)
	}
	summary.TopK = report.NewTopK(top, opts.NameColumn, opts.Strategy)
	logger.Debug("top-k selected",
		logging.String("strategy", opts.Strategy.String()),
		logging.Duration("elapsed", time.Since(start)),
	)

	modes, err := agg.MostCommon(opts.CategoryColumn)
	if err != nil {
		return Wrap(ErrValidation, StageAggregate, "most common", "", err)
	}
	summary.MostCommon = report.NewModes(modes)

	group, value, err := aggregate.MaxBy(means, opts.MaxMetric)
	if err != nil {
		return Wrap(ErrValidation, StageAggregate, "max", "", err)
	}
	summary.Max = report.Max{Metric: opts.MaxMetric, Group: group, Value: value}
	logger.Info("aggregates computed",
		logging.Int("groups", len(means.Groups)),
		logging.String("max_group", group),
		logging.Float64("max_value", value),
	)
	return nil
}

func (a *Analyzer) write(ctx context.Context, ds *dataset.Dataset, opts Options, summary *report.Summary) error {
	logger := a.stageLogger(ctx, StageWrite)

	if opts.ProcessedCSV != "" {
		if err := os.MkdirAll(filepath.Dir(opts.ProcessedCSV), 0o755); err != nil {
			return Wrap(ErrIO, StageWrite, "processed csv", "", err)
		}
		if err := dataset.WriteFile(opts.ProcessedCSV, ds); err != nil {
			return Wrap(ErrIO, StageWrite, "processed csv", "", err)
		}
		summary.ProcessedCSV = opts.ProcessedCSV
		logger.Info("processed dataset written", logging.String("path", opts.ProcessedCSV))
	}

	summary.CompletedAt = a.now()
	if opts.SummaryPath != "" {
		if err := report.WriteSummary(opts.SummaryPath, summary); err != nil {
			return Wrap(ErrIO, StageWrite, "summary", "", err)
		}
		logger.Info("summary written",
			logging.String("path", opts.SummaryPath),
			logging.String("format", report.FormatForPath(opts.SummaryPath)),
		)
	}
	return nil
}

// Describe returns a short human description of opts for logs.
func (o Options) Describe() string {
	return fmt.Sprintf("group=%s rank=%s top_k=%d strategy=%s", o.GroupColumn, o.RankColumn, o.TopK, o.Strategy)
}
