package testsupport

import (
	"path/filepath"
	"testing"

	"dietstat/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths all live in a per-test temp
// directory. The blob store defaults to the in-memory backend.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputCSV = filepath.Join(base, "All_Diets.csv")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Blob.Backend = config.BackendMemory
	cfgVal.Blob.Path = filepath.Join(base, "blobs")
	cfgVal.Mirror.SourceCSV = cfgVal.Paths.InputCSV
	cfgVal.Mirror.JSONSink = filepath.Join(base, "diet_analysis_nosql.json")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithDietsCSV writes DietsCSV to the configured input path.
func WithDietsCSV() ConfigOption {
	return func(b *configBuilder) {
		WriteCSV(b.t, b.cfg.Paths.InputCSV, DietsCSV)
	}
}

// WithBlobBackend switches the blob backend, keeping the path inside the temp dir.
func WithBlobBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Blob.Backend = backend
		if backend == config.BackendSQLite {
			b.cfg.Blob.Path = filepath.Join(b.baseDir, "blobs.db")
		}
	}
}

// WithSummaryFile sets the summary file name relative to the output directory.
func WithSummaryFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.SummaryFile = name
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
