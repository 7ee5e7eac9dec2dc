// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfa-convert/internal/container"
	"github.com/pdiddy/pdfa-convert/internal/convert"
	"github.com/pdiddy/pdfa-convert/internal/ledger"
	"github.com/pdiddy/pdfa-convert/internal/pdfa"
	"github.com/pdiddy/pdfa-convert/internal/validate"
)

// newBatch builds the converter and, unless history is disabled, opens the
// ledger. The returned close function releases the ledger.
func newBatch() (convert.Batch, func(), error) {
	conv, err := pdfa.New(cfg.Conversion, logger)
	if err != nil {
		return convert.Batch{}, nil, err
	}
	b := convert.Batch{
		Converter: conv,
		Options:   cfg.Conversion.Options,
		RunID:     ledger.NewRunID(),
		Log:       logger,
	}
	if cfg.Ledger.Disabled {
		return b, func() {}, nil
	}

	store, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return convert.Batch{}, nil, err
	}
	b.Recorder = store
	return b, func() { store.Close() }, nil
}

func newValidator() (*validate.Validator, error) {
	rt, err := container.DetectRuntime()
	if err != nil {
		return nil, err
	}
	return validate.New(rt, cfg.Validator.Image)
}

// printValidation writes a validation report and returns an error when the
// file is not compliant.
func printValidation(w io.Writer, r *validate.Report) error {
	if r.Passed {
		fmt.Fprintf(w, "PASS %s (%s)\n", r.File, r.Profile)
		return nil
	}
	fmt.Fprintf(w, "FAIL %s (%s)\n", r.File, r.Profile)
	for _, rule := range r.FailedRules {
		fmt.Fprintf(w, "  %s-%s: %s (%d check(s))\n", rule.Clause, rule.TestNumber, rule.Description, rule.Failed)
	}
	return fmt.Errorf("%s is not PDF/A-%s compliant: %d rule(s) failed", r.File, r.Flavour, len(r.FailedRules))
}

// writeFormatted encodes v as JSON or YAML. It reports false for other
// formats so the caller can fall back to text.
func writeFormatted(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case "text", "":
		return false, nil
	default:
		return true, fmt.Errorf("unsupported format %q: use text, json or yaml", format)
	}
}
