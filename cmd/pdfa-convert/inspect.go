// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfa-convert/internal/inspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf>",
	Short: "Show the PDF/A identification, metadata and output intents of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := inspect.InspectFile(args[0])
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		done, err := writeFormatted(cmd.OutOrStdout(), format, report)
		if done || err != nil {
			return err
		}
		inspect.WriteText(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	inspectCmd.Flags().String("format", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(inspectCmd)
}
