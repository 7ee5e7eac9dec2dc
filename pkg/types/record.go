// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of converting one input file.
type ConversionStatus string

const (
	ConversionDone    ConversionStatus = "converted"
	ConversionSkipped ConversionStatus = "skipped"
	ConversionFailed  ConversionStatus = "failed"
)

// ConversionRecord is one row of the conversion ledger.
type ConversionRecord struct {
	// ID uniquely identifies the record (a UUID).
	ID string `json:"id" yaml:"id"`

	// RunID groups the records written by one CLI invocation or batch.
	RunID string `json:"run_id" yaml:"run_id"`

	// InputPath is the path of the source PDF as given by the user.
	InputPath string `json:"input_path" yaml:"input_path"`

	// InputHash is the hex BLAKE3 digest of the source PDF bytes.
	InputHash string `json:"input_hash" yaml:"input_hash"`

	// OutputPath is where the converted PDF/A file was written.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Options are the conversion options used.
	Options Options `json:"options" yaml:"options"`

	// Status is the conversion outcome.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Error holds the failure message for failed conversions.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// ConvertedAt is when the conversion finished.
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}
