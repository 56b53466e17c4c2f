package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dietstat/internal/pipeline"
	"dietstat/internal/report"
)

func newBenchCommand(ctx *commandContext) *cobra.Command {
	var (
		inputFlag  string
		iterations int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare the stable-sort and selection top-K strategies",
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
			if iterations < 1 {
				return fmt.Errorf("--iterations must be at least 1")
			}

			opts, err := pipeline.OptionsFromConfig(&cfg)
			if err != nil {
				return err
			}
			runCtx, logger, err := ctx.runLogger(cmd, &cfg)
			if err != nil {
				return err
			}
			result, err := pipeline.NewAnalyzer(logger).Bench(runCtx, opts, iterations)
			if err != nil {
				return logFailure(runCtx, logger, "bench_failed", err)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}

			console := report.NewConsole(cmd.OutOrStdout())
			console.Section(fmt.Sprintf("Top-%d Strategy Benchmark", opts.TopK))
			console.Field("Rows", console.Count(result.Rows))
			console.Field("Groups", console.Count(result.Groups))
			console.Field("Iterations", strconv.Itoa(result.Iterations))
			console.Table(report.Table{
				Headers: []string{"Strategy", "Time per run"},
				Rows: [][]string{
					{"stable sort", result.StableSort.String()},
					{"select", result.Select.String()},
				},
				Aligns: []report.Alignment{report.AlignLeft, report.AlignRight},
			})
			console.Field("Improvement", fmt.Sprintf("%.2f%%", result.Improvement))
			console.Field("Speed factor", fmt.Sprintf("%.2fx", result.SpeedFactor))
			console.Field("Same records", yesNo(result.Identical))
			return console.Err()
		},
	}

	cmd.Flags().StringVar(&inputFlag, "input", "", "Input CSV (overrides paths.input_csv)")
	cmd.Flags().IntVar(&iterations, "iterations", 10, "Runs per strategy")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
