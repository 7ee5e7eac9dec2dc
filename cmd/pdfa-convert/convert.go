// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfa-convert/internal/convert"
	"github.com/pdiddy/pdfa-convert/internal/pdfa"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.pdf> [output.pdf]",
	Short: "Convert one PDF file to PDF/A",
	Long: `Convert writes a PDF/A version of the input file. Without an output
path the result is written next to the input as <name>-pdfa.pdf.

The flavour and PDF version come from --part, --conformance and
--pdf-version (default PDF/A-1A, PDF 1.4). With --validate the result is
checked with veraPDF afterwards.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().Bool("validate", false, "validate the output with veraPDF (needs docker or podman)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := convert.OutputPath(input, filepath.Dir(input))
	if len(args) == 2 {
		output = args[1]
	}

	b, closeLedger, err := newBatch()
	if err != nil {
		return err
	}
	defer closeLedger()
	b.Force = true

	out := cmd.OutOrStdout()
	item := convert.ConvertTo(context.Background(), b, input, output, out)
	if item.Error != "" {
		return fmt.Errorf("converting %s: %s", input, item.Error)
	}

	if doValidate, _ := cmd.Flags().GetBool("validate"); doValidate {
		v, err := newValidator()
		if err != nil {
			return err
		}
		opts, err := pdfa.NormalizeOptions(cfg.Conversion.Options)
		if err != nil {
			return err
		}
		report, err := v.Validate(output, opts.Flavour())
		if err != nil {
			return err
		}
		return printValidation(out, report)
	}
	return nil
}
