package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"dietstat/internal/blobstore"
	"dietstat/internal/mirror"
	"dietstat/internal/report"
)

func newMirrorCommand(ctx *commandContext) *cobra.Command {
	var (
		sourceFlag    string
		containerFlag string
		blobFlag      string
		sinkFlag      string
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Upload the CSV to the blob store and append its rows to the JSON sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			opts := mirror.Options{
				SourceCSV: cfg.Mirror.SourceCSV,
				Container: cfg.Mirror.Container,
				BlobName:  cfg.Mirror.BlobName,
				SinkPath:  cfg.Mirror.JSONSink,
				Preview:   cfg.Mirror.Preview,
			}
			if sourceFlag != "" {
				if opts.SourceCSV, err = expandFlag(sourceFlag); err != nil {
					return fmt.Errorf("resolve --source: %w", err)
				}
			}
			if sinkFlag != "" {
				if opts.SinkPath, err = expandFlag(sinkFlag); err != nil {
					return fmt.Errorf("resolve --sink: %w", err)
				}
			}
			if containerFlag != "" {
				opts.Container = containerFlag
			}
			if blobFlag != "" {
				opts.BlobName = blobFlag
			}

			runCtx, logger, err := ctx.runLogger(cmd, cfg)
			if err != nil {
				return err
			}
			store, err := blobstore.Open(cfg.Blob)
			if err != nil {
				return fmt.Errorf("open blob store: %w", err)
			}
			defer store.Close()

			result, err := mirror.NewService(store, logger).Run(runCtx, opts)
			if err != nil {
				return logFailure(runCtx, logger, "mirror_failed", err)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printMirrorResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceFlag, "source", "", "CSV file to mirror (overrides mirror.source_csv)")
	cmd.Flags().StringVar(&containerFlag, "container", "", "Blob container name")
	cmd.Flags().StringVar(&blobFlag, "blob", "", "Blob name")
	cmd.Flags().StringVar(&sinkFlag, "sink", "", "JSON sink file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func printMirrorResult(cmd *cobra.Command, result *mirror.Result) {
	console := report.NewConsole(cmd.OutOrStdout())

	console.Section("Blob Upload")
	state := "already exists"
	if result.ContainerCreated {
		state = "created"
	}
	console.Field("Container", fmt.Sprintf("%s (%s)", result.Container, state))
	console.Field("Uploaded", fmt.Sprintf("%s (%s)", result.BlobName, humanize.Bytes(uint64(result.UploadedBytes))))

	rows := make([][]string, 0, len(result.Blobs))
	for _, b := range result.Blobs {
		rows = append(rows, []string{b.Name, humanize.Bytes(uint64(b.Size)), b.UpdatedAt.Local().Format(time.DateTime)})
	}
	console.Table(report.Table{
		Headers: []string{"Blob", "Size", "Updated"},
		Rows:    rows,
		Aligns:  []report.Alignment{report.AlignLeft, report.AlignRight, report.AlignLeft},
	})

	console.Section("JSON Sink")
	console.Field("Sink", result.SinkPath)
	console.Field("Appended", console.Count(result.Records))
	console.Field("Total entries", console.Count(result.Total))
	if result.DroppedFields > 0 {
		console.Field("Dropped fields", console.Count(result.DroppedFields))
	}

	if len(result.Preview) > 0 {
		console.Section(fmt.Sprintf("First %d Entries", len(result.Preview)))
		out := cmd.OutOrStdout()
		for _, entry := range result.Preview {
			var compact bytes.Buffer
			if err := json.Compact(&compact, entry); err != nil {
				compact.Reset()
				compact.Write(entry)
			}
			fmt.Fprintf(out, "  %s\n", compact.String())
		}
	}
	console.Field("Completed", result.CompletedAt.Format(time.DateTime))
}
