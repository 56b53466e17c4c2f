package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	if err := c.normalizeBlob(); err != nil {
		return err
	}
	if err := c.normalizeMirror(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("DIETSTAT_INPUT_CSV"); ok && strings.TrimSpace(value) != "" {
		c.Paths.InputCSV = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.InputCSV) == "" {
		c.Paths.InputCSV = defaultInputCSV
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if strings.TrimSpace(c.Paths.ProcessedCSV) == "" {
		c.Paths.ProcessedCSV = defaultProcessedCSV
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	c.Paths.SummaryFile = strings.TrimSpace(c.Paths.SummaryFile)
	c.Paths.ProcessedCSV = strings.TrimSpace(c.Paths.ProcessedCSV)

	var err error
	if c.Paths.InputCSV, err = expandPath(strings.TrimSpace(c.Paths.InputCSV)); err != nil {
		return fmt.Errorf("paths.input_csv: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	a := &c.Analysis
	a.GroupColumn = defaultIfBlank(a.GroupColumn, defaultGroupColumn)
	a.NameColumn = defaultIfBlank(a.NameColumn, defaultNameColumn)
	a.CategoryColumn = defaultIfBlank(a.CategoryColumn, defaultCategoryCol)
	a.RankColumn = defaultIfBlank(a.RankColumn, defaultProteinColumn)
	a.MaxMetric = defaultIfBlank(a.MaxMetric, a.RankColumn)
	a.TopKStrategy = strings.ToLower(defaultIfBlank(a.TopKStrategy, defaultTopKStrategy))
	if a.TopK == 0 {
		a.TopK = defaultTopK
	}

	cols := make([]string, 0, len(a.NumericColumns))
	seen := make(map[string]struct{}, len(a.NumericColumns))
	for _, col := range a.NumericColumns {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if _, exists := seen[col]; exists {
			continue
		}
		seen[col] = struct{}{}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		cols = []string{defaultProteinColumn, defaultCarbsColumn, defaultFatColumn}
	}
	a.NumericColumns = cols

	if len(a.Ratios) == 0 {
		a.Ratios = DefaultRatios()
	}
	for i := range a.Ratios {
		a.Ratios[i].Name = strings.TrimSpace(a.Ratios[i].Name)
		a.Ratios[i].Numerator = strings.TrimSpace(a.Ratios[i].Numerator)
		a.Ratios[i].Denominator = strings.TrimSpace(a.Ratios[i].Denominator)
	}
}

func (c *Config) normalizeBlob() error {
	c.Blob.Backend = strings.ToLower(defaultIfBlank(c.Blob.Backend, defaultBlobBackend))
	if value, ok := os.LookupEnv("DIETSTAT_BLOB_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Blob.Path = strings.TrimSpace(value)
	}
	c.Blob.Path = defaultIfBlank(c.Blob.Path, defaultBlobPath)
	var err error
	if c.Blob.Path, err = expandPath(c.Blob.Path); err != nil {
		return fmt.Errorf("blob.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeMirror() error {
	m := &c.Mirror
	m.SourceCSV = defaultIfBlank(m.SourceCSV, defaultInputCSV)
	m.Container = defaultIfBlank(m.Container, defaultContainer)
	m.BlobName = defaultIfBlank(m.BlobName, defaultBlobName)
	m.JSONSink = defaultIfBlank(m.JSONSink, defaultJSONSink)
	if m.Preview < 0 {
		m.Preview = 0
	}
	var err error
	if m.SourceCSV, err = expandPath(m.SourceCSV); err != nil {
		return fmt.Errorf("mirror.source_csv: %w", err)
	}
	if m.JSONSink, err = expandPath(m.JSONSink); err != nil {
		return fmt.Errorf("mirror.json_sink: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(defaultIfBlank(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(defaultIfBlank(c.Logging.Level, defaultLogLevel))
}

func defaultIfBlank(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}
