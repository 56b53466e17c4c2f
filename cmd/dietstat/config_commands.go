package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dietstat/internal/config"
	"dietstat/internal/dataset"
	"dietstat/internal/fileutil"
	"dietstat/internal/pipeline"
	"dietstat/internal/report"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitTarget(targetPath)
			if err != nil {
				return err
			}
			exists, err := fileutil.Exists(target)
			if err != nil {
				return fmt.Errorf("check config path: %w", err)
			}
			if exists && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			// Reload so the reported settings are the ones the file resolves to.
			cfg, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("reload sample config: %w", err)
			}
			console := report.NewConsole(cmd.OutOrStdout())
			console.Field("Wrote sample configuration", target)
			console.Field("Input CSV", cfg.Paths.InputCSV)
			console.Field("Group column", cfg.Analysis.GroupColumn)
			console.Field("Blob backend", cfg.Blob.Backend)
			return console.Err()
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func resolveInitTarget(flagValue string) (string, error) {
	if target := strings.TrimSpace(flagValue); target != "" {
		expanded, err := config.ExpandPath(target)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return expanded, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return target, nil
}

// newConfigValidateCommand reports the effective analysis settings and, when
// the input CSV is present, checks its header against the configured columns.
func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and the input CSV header",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts, err := pipeline.OptionsFromConfig(cfg)
			if err != nil {
				return err
			}

			console := report.NewConsole(cmd.OutOrStdout())
			console.Section("Configuration")
			source := ctx.configPath
			if !ctx.configSeen {
				source += " (not found, defaults used)"
			}
			console.Field("Config", source)
			console.Field("Group column", opts.GroupColumn)
			console.Field("Numeric columns", strings.Join(opts.NumericColumns, ", "))
			console.Field("Top-K", fmt.Sprintf("%d by %s (%s)", opts.TopK, opts.RankColumn, opts.Strategy))
			console.Field("Blob store", cfg.Blob.Backend+" "+cfg.Blob.Path)

			rows := make([][]string, len(opts.Ratios))
			for i, r := range opts.Ratios {
				rows[i] = []string{r.Name, r.Numerator, r.Denominator}
			}
			console.Table(report.Table{
				Title:   "Derived ratios",
				Headers: []string{"Column", "Numerator", "Denominator"},
				Rows:    rows,
			})

			inputRows, err := checkInputHeader(opts)
			if err != nil {
				return err
			}
			if inputRows < 0 {
				console.Field("Input CSV", opts.InputCSV+" (missing)")
			} else {
				console.Field("Input CSV", fmt.Sprintf("%s (%s rows, header ok)", opts.InputCSV, console.Count(inputRows)))
			}
			console.Field("Status", "Configuration valid")
			return console.Err()
		},
	}
}

// checkInputHeader loads the input CSV and verifies the analysis columns are
// present. It returns -1 when the file does not exist yet.
func checkInputHeader(opts pipeline.Options) (int, error) {
	exists, err := fileutil.Exists(opts.InputCSV)
	if err != nil {
		return 0, pipeline.Wrap(pipeline.ErrConfiguration, "", "validate", "paths.input_csv", err)
	}
	if !exists {
		return -1, nil
	}
	ds, err := dataset.LoadFile(opts.InputCSV)
	if err != nil {
		return 0, pipeline.Wrap(pipeline.ErrValidation, "", "validate", "read input csv", err)
	}
	if err := ds.Require(opts.RequiredColumns()...); err != nil {
		return 0, pipeline.Wrap(pipeline.ErrValidation, "", "validate", "input csv header", err)
	}
	for _, r := range opts.Ratios {
		if err := ds.Require(r.Numerator, r.Denominator); err != nil {
			return 0, pipeline.Wrap(pipeline.ErrValidation, "", "validate", "ratio "+strconv.Quote(r.Name), err)
		}
	}
	return ds.Len(), nil
}
