// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert drives PDF/A conversion over many files. It decides which
// inputs need converting, prints one status line per file and records every
// outcome in the conversion ledger.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfa-convert/internal/ledger"
	"github.com/pdiddy/pdfa-convert/pkg/types"
)

// outputSuffix marks converted files written next to their input.
const outputSuffix = "-pdfa"

// FileConverter converts one PDF file into a PDF/A file. *pdfa.Converter
// implements it.
type FileConverter interface {
	ConvertFile(inputPath, outputPath string, opts types.Options) error
}

// Recorder stores conversion outcomes and answers whether an input was
// already converted. *ledger.Store implements it.
type Recorder interface {
	Record(ctx context.Context, rec *types.ConversionRecord) error
	Lookup(ctx context.Context, hash string, opts types.Options) (*types.ConversionRecord, error)
}

// Batch holds the settings shared by every file of a run.
type Batch struct {
	Converter FileConverter
	// Recorder is optional. Without it, an existing output file is the only
	// reason to skip.
	Recorder  Recorder
	Options   types.Options
	OutputDir string
	Force     bool
	RunID     string
	Log       *slog.Logger
}

// Item is the outcome for one input file.
type Item struct {
	Input  string                 `json:"input" yaml:"input"`
	Output string                 `json:"output" yaml:"output"`
	Status types.ConversionStatus `json:"status" yaml:"status"`
	Error  string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	RunID     string `json:"run_id" yaml:"run_id"`
	Converted int    `json:"converted" yaml:"converted"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
	Failed    int    `json:"failed" yaml:"failed"`
	Items     []Item `json:"items" yaml:"items"`
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// OutputPath returns where inputPath is written in outDir: <base>.pdf, or
// <base>-pdfa.pdf when outDir is the input's own directory.
func OutputPath(inputPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	if samePath(filepath.Dir(inputPath), outDir) {
		base += outputSuffix
	}
	return filepath.Join(outDir, base+".pdf")
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// ConvertOne converts a single file into b.OutputDir and returns its
// outcome. See ConvertTo for the skip rules.
func ConvertOne(ctx context.Context, b Batch, inputPath string, w io.Writer) Item {
	return ConvertTo(ctx, b, inputPath, OutputPath(inputPath, b.OutputDir), w)
}

// ConvertTo converts inputPath to outPath and returns the outcome. An
// existing output is skipped unless b.Force is set. With a Recorder, an
// existing output is only skipped when the ledger shows it was produced from
// the same input bytes and options; otherwise it is reconverted.
func ConvertTo(ctx context.Context, b Batch, inputPath, outPath string, w io.Writer) Item {
	log := b.logger()
	opts := b.Options.WithDefaults()
	item := Item{Input: inputPath, Output: outPath}
	name := filepath.Base(inputPath)

	fail := func(hash string, err error) Item {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		item.Status = types.ConversionFailed
		item.Error = err.Error()
		b.record(ctx, log, hash, item, opts)
		return item
	}

	// An unreadable input is left to the converter, which reports it with
	// its own error kind. Nothing is skipped or recorded without a hash.
	hash, err := ledger.HashFile(inputPath)
	if err != nil {
		log.Debug("hashing input failed", "input", inputPath, "error", err)
		hash = ""
	}

	if !b.Force && hash != "" {
		if _, err := os.Stat(outPath); err == nil {
			if reason, ok := b.skipReason(ctx, log, hash, opts, outPath); ok {
				fmt.Fprintf(w, "skipped: %s (%s)\n", name, reason)
				item.Status = types.ConversionSkipped
				return item
			}
			log.Debug("output is stale, reconverting", "input", inputPath, "output", outPath)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fail(hash, err)
	}

	if err := b.Converter.ConvertFile(inputPath, outPath, opts); err != nil {
		return fail(hash, err)
	}

	fmt.Fprintf(w, "converted: %s -> %s\n", name, outPath)
	item.Status = types.ConversionDone
	b.record(ctx, log, hash, item, opts)
	return item
}

func (b Batch) skipReason(ctx context.Context, log *slog.Logger, hash string, opts types.Options, outPath string) (string, bool) {
	if b.Recorder == nil {
		return "already exists", true
	}
	rec, err := b.Recorder.Lookup(ctx, hash, opts)
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			log.Warn("ledger lookup failed", "hash", hash, "error", err)
			return "already exists", true
		}
		return "", false
	}
	if !samePath(rec.OutputPath, outPath) {
		return "", false
	}
	return "unchanged since " + rec.ConvertedAt.Local().Format(time.DateTime), true
}

func (b Batch) record(ctx context.Context, log *slog.Logger, hash string, item Item, opts types.Options) {
	if b.Recorder == nil || hash == "" {
		return
	}
	rec := &types.ConversionRecord{
		RunID:      b.RunID,
		InputPath:  item.Input,
		InputHash:  hash,
		OutputPath: item.Output,
		Options:    opts,
		Status:     item.Status,
		Error:      item.Error,
	}
	if err := b.Recorder.Record(ctx, rec); err != nil {
		log.Warn("recording conversion failed", "input", item.Input, "error", err)
	}
}

func (b Batch) logger() *slog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ConvertBatch converts every path, printing per-file status to w, and
// returns a summary. Individual failures do not stop the batch; a
// cancelled context does.
func ConvertBatch(ctx context.Context, b Batch, paths []string, w io.Writer) BatchResult {
	result := BatchResult{RunID: b.RunID}
	for _, p := range paths {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "cancelled: %d file(s) not processed\n", len(paths)-result.Total())
			break
		}
		item := ConvertOne(ctx, b, p, w)
		result.Items = append(result.Items, item)
		switch item.Status {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionSkipped:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertDir converts every .pdf file directly inside dir. When the output
// directory is dir itself, earlier outputs (*-pdfa.pdf) are not picked up
// as inputs.
func ConvertDir(ctx context.Context, b Batch, dir string, w io.Writer) (BatchResult, error) {
	paths, err := ListPDFs(dir)
	if err != nil {
		return BatchResult{}, err
	}
	if samePath(dir, b.OutputDir) {
		kept := paths[:0]
		for _, p := range paths {
			if !strings.HasSuffix(strings.TrimSuffix(p, filepath.Ext(p)), outputSuffix) {
				kept = append(kept, p)
			}
		}
		paths = kept
	}
	return ConvertBatch(ctx, b, paths, w), nil
}

// ListPDFs returns the sorted paths of the .pdf files directly inside dir.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// WriteSummary writes r as YAML to path.
func WriteSummary(path string, r BatchResult) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary %s: %w", path, err)
	}
	return nil
}
