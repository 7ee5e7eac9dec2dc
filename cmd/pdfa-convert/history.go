// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfa-convert/internal/ledger"
	"github.com/pdiddy/pdfa-convert/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversions",
	Long: `History lists the conversions recorded in the local ledger, newest
first, with the input hash, options and outcome of each.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of records")
	historyCmd.Flags().String("format", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	done, err := writeFormatted(cmd.OutOrStdout(), format, records)
	if done || err != nil {
		return err
	}
	writeHistory(cmd.OutOrStdout(), records)
	return nil
}

func writeHistory(w io.Writer, records []types.ConversionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintf(w, "%-19s  %-9s  %-10s  %-12s  %s\n", "Time", "Status", "Flavour", "Hash", "Input")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, r := range records {
		hash := r.InputHash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(w, "%-19s  %-9s  %-10s  %-12s  %s\n",
			r.ConvertedAt.Local().Format(time.DateTime), r.Status,
			"PDF/A-"+r.Options.Part+r.Options.Conformance, hash, r.InputPath)
		if r.Error != "" {
			fmt.Fprintf(w, "%-19s  %s\n", "", r.Error)
		}
	}
	fmt.Fprintf(w, "\n%d records\n", len(records))
}
