package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateBlob(); err != nil {
		return err
	}
	if err := c.validateMirror(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if a.TopK < 1 {
		return errors.New("analysis.top_k must be at least 1")
	}
	switch a.TopKStrategy {
	case StrategyStable, StrategySelect:
	default:
		return fmt.Errorf("analysis.top_k_strategy: unsupported value %q (expected %q or %q)", a.TopKStrategy, StrategyStable, StrategySelect)
	}
	if !containsString(a.NumericColumns, a.RankColumn) {
		return fmt.Errorf("analysis.rank_column %q must be listed in analysis.numeric_columns", a.RankColumn)
	}
	if !containsString(a.NumericColumns, a.MaxMetric) {
		return fmt.Errorf("analysis.max_metric %q must be listed in analysis.numeric_columns", a.MaxMetric)
	}
	if containsString(a.NumericColumns, a.GroupColumn) {
		return fmt.Errorf("analysis.group_column %q cannot also be a numeric column", a.GroupColumn)
	}
	names := make(map[string]struct{}, len(a.Ratios))
	for i, ratio := range a.Ratios {
		if ratio.Name == "" || ratio.Numerator == "" || ratio.Denominator == "" {
			return fmt.Errorf("analysis.ratios[%d]: name, numerator, and denominator must be set", i)
		}
		if _, dup := names[ratio.Name]; dup {
			return fmt.Errorf("analysis.ratios[%d]: duplicate ratio name %q", i, ratio.Name)
		}
		names[ratio.Name] = struct{}{}
		if !containsString(a.NumericColumns, ratio.Numerator) || !containsString(a.NumericColumns, ratio.Denominator) {
			return fmt.Errorf("analysis.ratios[%d]: %q and %q must be numeric columns", i, ratio.Numerator, ratio.Denominator)
		}
	}
	return nil
}

func (c *Config) validateBlob() error {
	switch c.Blob.Backend {
	case BackendSQLite, BackendFilesystem, BackendMemory:
		return nil
	default:
		return fmt.Errorf("blob.backend: unsupported value %q (expected %q, %q or %q)", c.Blob.Backend, BackendSQLite, BackendFilesystem, BackendMemory)
	}
}

func (c *Config) validateMirror() error {
	if strings.ContainsAny(c.Mirror.Container, `/\`) {
		return fmt.Errorf("mirror.container %q must not contain path separators", c.Mirror.Container)
	}
	if strings.ContainsAny(c.Mirror.BlobName, `\`) || strings.Contains(c.Mirror.BlobName, "..") {
		return fmt.Errorf("mirror.blob_name %q is not a valid blob name", c.Mirror.BlobName)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
