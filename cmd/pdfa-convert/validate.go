// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNotCompliant = errors.New("file is not PDF/A compliant")

var validateCmd = &cobra.Command{
	Use:   "validate <file.pdf>",
	Short: "Check a file for PDF/A conformance with veraPDF",
	Long: `Validate runs the veraPDF CLI image through docker or podman against
the file. Without --flavour, veraPDF checks the flavour the file declares.
The image is set with validator.image (default verapdf/cli:latest).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newValidator()
		if err != nil {
			return err
		}
		flavour, _ := cmd.Flags().GetString("flavour")
		report, err := v.Validate(args[0], flavour)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		done, err := writeFormatted(cmd.OutOrStdout(), format, report)
		if err != nil {
			return err
		}
		if done {
			if !report.Passed {
				return errNotCompliant
			}
			return nil
		}
		return printValidation(cmd.OutOrStdout(), report)
	},
}

func init() {
	validateCmd.Flags().String("flavour", "", "PDF/A flavour to check, e.g. 1b or 2u (default: as declared)")
	validateCmd.Flags().String("format", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(validateCmd)
}
