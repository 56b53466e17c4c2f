package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dietstat/internal/pipeline"
	"dietstat/internal/report"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var (
		inputFlag     string
		outputDirFlag string
		topKFlag      int
		strategyFlag  string
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Clean the dataset, compute group statistics and write the processed CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *loaded

			if inputFlag != "" {
				if cfg.Paths.InputCSV, err = expandFlag(inputFlag); err != nil {
					return fmt.Errorf("resolve --input: %w", err)
				}
			}
			if outputDirFlag != "" {
				if cfg.Paths.OutputDir, err = expandFlag(outputDirFlag); err != nil {
					return fmt.Errorf("resolve --output-dir: %w", err)
				}
			}
			if cmd.Flags().Changed("top-k") {
				if topKFlag < 1 {
					return fmt.Errorf("--top-k must be at least 1")
				}
				cfg.Analysis.TopK = topKFlag
			}
			if strategyFlag != "" {
				cfg.Analysis.TopKStrategy = strategyFlag
			}

			opts, err := pipeline.OptionsFromConfig(&cfg)
			if err != nil {
				return err
			}
			runCtx, logger, err := ctx.runLogger(cmd, &cfg)
			if err != nil {
				return err
			}

			summary, err := pipeline.NewAnalyzer(logger).Run(runCtx, opts)
			if err != nil {
				return logFailure(runCtx, logger, "analyze_failed", err)
			}
			if jsonOutput {
				return writeJSON(cmd, summary)
			}
			return report.NewConsole(cmd.OutOrStdout()).Summary(summary)
		},
	}

	cmd.Flags().StringVar(&inputFlag, "input", "", "Input CSV (overrides paths.input_csv)")
	cmd.Flags().StringVar(&outputDirFlag, "output-dir", "", "Directory for the processed CSV and summary")
	cmd.Flags().IntVar(&topKFlag, "top-k", 0, "Records kept per group in the top-K report")
	cmd.Flags().StringVar(&strategyFlag, "strategy", "", "Top-K strategy: stable or select")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")
	return cmd
}
