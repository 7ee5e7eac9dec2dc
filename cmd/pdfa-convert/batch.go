// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfa-convert/internal/convert"
)

var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Convert many PDF files to PDF/A",
	Long: `Batch converts the given files, or every .pdf file in --input-dir, into
--output-dir. Files whose output already exists are skipped unless --force
is given; with history enabled, an existing output is reconverted when the
input or the options changed since it was written.

Individual failures do not stop the batch. The command exits non-zero when
any file failed.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("input-dir", "", "convert every .pdf file in this directory")
	batchCmd.Flags().String("output-dir", "pdfa", "directory receiving the converted files")
	batchCmd.Flags().Bool("force", false, "reconvert files whose output already exists")
	batchCmd.Flags().String("summary", "", "write a YAML summary of the run to this file")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputDir, _ := cmd.Flags().GetString("input-dir")
	if inputDir == "" && len(args) == 0 {
		return fmt.Errorf("provide PDF files or --input-dir")
	}
	if inputDir != "" && len(args) > 0 {
		return fmt.Errorf("use either PDF file arguments or --input-dir, not both")
	}

	b, closeLedger, err := newBatch()
	if err != nil {
		return err
	}
	defer closeLedger()
	b.OutputDir, _ = cmd.Flags().GetString("output-dir")
	b.Force, _ = cmd.Flags().GetBool("force")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	var result convert.BatchResult
	if inputDir != "" {
		result, err = convert.ConvertDir(ctx, b, inputDir, out)
		if err != nil {
			return err
		}
	} else {
		result = convert.ConvertBatch(ctx, b, args, out)
	}

	if path, _ := cmd.Flags().GetString("summary"); path != "" {
		if err := convert.WriteSummary(path, result); err != nil {
			return err
		}
		fmt.Fprintf(out, "Summary written to %s\n", path)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}
