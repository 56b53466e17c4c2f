package config

const (
	defaultConfigPath    = "~/.config/dietstat/config.toml"
	projectConfigName    = "dietstat.toml"
	defaultInputCSV      = "All_Diets.csv"
	defaultOutputDir     = "output"
	defaultProcessedCSV  = "processed_diets.csv"
	defaultSummaryFile   = "diet_summary.json"
	defaultLogDir        = "~/.local/share/dietstat/logs"
	defaultGroupColumn   = "Diet_type"
	defaultNameColumn    = "Recipe_name"
	defaultCategoryCol   = "Cuisine_type"
	defaultProteinColumn = "Protein(g)"
	defaultCarbsColumn   = "Carbs(g)"
	defaultFatColumn     = "Fat(g)"
	defaultTopK          = 5
	defaultTopKStrategy  = StrategyStable
	defaultBlobBackend   = BackendSQLite
	defaultBlobPath      = "~/.local/share/dietstat/blobs.db"
	defaultContainer     = "datasets"
	defaultBlobName      = "All_Diets.csv"
	defaultJSONSink      = "diet_analysis_nosql.json"
	defaultPreview       = 5
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Top-K strategies.
const (
	StrategyStable = "stable"
	StrategySelect = "select"
)

// Blob store backends.
const (
	BackendSQLite     = "sqlite"
	BackendFilesystem = "filesystem"
	BackendMemory     = "memory"
)

// DefaultRatios returns the protein/carbs and carbs/fat ratio columns.
func DefaultRatios() []Ratio {
	return []Ratio{
		{Name: "Protein_to_Carbs_ratio", Numerator: defaultProteinColumn, Denominator: defaultCarbsColumn},
		{Name: "Carbs_to_Fat_ratio", Numerator: defaultCarbsColumn, Denominator: defaultFatColumn},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputCSV:     defaultInputCSV,
			OutputDir:    defaultOutputDir,
			ProcessedCSV: defaultProcessedCSV,
			SummaryFile:  defaultSummaryFile,
			LogDir:       defaultLogDir,
		},
		Analysis: Analysis{
			GroupColumn:    defaultGroupColumn,
			NameColumn:     defaultNameColumn,
			CategoryColumn: defaultCategoryCol,
			RankColumn:     defaultProteinColumn,
			MaxMetric:      defaultProteinColumn,
			NumericColumns: []string{defaultProteinColumn, defaultCarbsColumn, defaultFatColumn},
			TopK:           defaultTopK,
			TopKStrategy:   defaultTopKStrategy,
			Ratios:         DefaultRatios(),
		},
		Blob: Blob{
			Backend: defaultBlobBackend,
			Path:    defaultBlobPath,
		},
		Mirror: Mirror{
			SourceCSV: defaultInputCSV,
			Container: defaultContainer,
			BlobName:  defaultBlobName,
			JSONSink:  defaultJSONSink,
			Preview:   defaultPreview,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
