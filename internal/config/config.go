package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input and output locations for the analyze job.
type Paths struct {
	InputCSV     string `toml:"input_csv"`
	OutputDir    string `toml:"output_dir"`
	ProcessedCSV string `toml:"processed_csv"`
	SummaryFile  string `toml:"summary_file"`
	LogDir       string `toml:"log_dir"`
}

// Ratio describes one derived ratio column.
type Ratio struct {
	Name        string `toml:"name"`
	Numerator   string `toml:"numerator"`
	Denominator string `toml:"denominator"`
}

// Analysis contains the column layout and aggregation settings.
type Analysis struct {
	GroupColumn    string   `toml:"group_column"`
	NameColumn     string   `toml:"name_column"`
	CategoryColumn string   `toml:"category_column"`
	RankColumn     string   `toml:"rank_column"`
	MaxMetric      string   `toml:"max_metric"`
	NumericColumns []string `toml:"numeric_columns"`
	TopK           int      `toml:"top_k"`
	// TopKStrategy is "stable" (full stable sort, then truncate per group) or
	// "select" (bounded per-group selection). Both yield the same records.
	TopKStrategy string  `toml:"top_k_strategy"`
	Ratios       []Ratio `toml:"ratios"`
}

// Blob contains blob store connection settings.
type Blob struct {
	// Backend is "sqlite", "filesystem" or "memory". The memory backend
	// discards blobs when the process exits.
	Backend string `toml:"backend"`
	// Path is the SQLite database file or the filesystem root directory.
	Path string `toml:"path"`
}

// Mirror contains settings for the blob mirror job.
type Mirror struct {
	SourceCSV string `toml:"source_csv"`
	Container string `toml:"container"`
	BlobName  string `toml:"blob_name"`
	JSONSink  string `toml:"json_sink"`
	Preview   int    `toml:"preview"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File enables writing a copy of the log to <log_dir>/dietstat.log.
	File bool `toml:"file"`
}

// Config encapsulates all configuration values for dietstat.
//
// Configuration sections by subsystem:
//   - Paths: input dataset and artifact locations
//   - Analysis: grouping, ranking, numeric columns, derived ratios
//   - Blob: blob store backend used by the mirror job
//   - Mirror: source CSV, blob address, and accumulating JSON sink
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Analysis Analysis `toml:"analysis"`
	Blob     Blob     `toml:"blob"`
	Mirror   Mirror   `toml:"mirror"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir}
	if c.Logging.File {
		dirs = append(dirs, c.Paths.LogDir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ProcessedCSVPath returns the absolute location of the processed dataset.
func (c *Config) ProcessedCSVPath() string {
	return resolveUnder(c.Paths.OutputDir, c.Paths.ProcessedCSV)
}

// SummaryPath returns the absolute location of the report summary, or "" when disabled.
func (c *Config) SummaryPath() string {
	if strings.TrimSpace(c.Paths.SummaryFile) == "" {
		return ""
	}
	return resolveUnder(c.Paths.OutputDir, c.Paths.SummaryFile)
}

// LogFilePath returns the log file location when file logging is enabled.
func (c *Config) LogFilePath() string {
	if !c.Logging.File || c.Paths.LogDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "dietstat.log")
}

func resolveUnder(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Save encodes cfg as TOML at path.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
