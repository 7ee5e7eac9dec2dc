// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for pdfa-convert: conversion
// options, stage configuration, conversion records and statuses.
package types

import (
	"fmt"
	"strconv"
)

// Default conversion settings. A converter called without explicit options
// produces PDF/A-1A at PDF version 1.4.
const (
	DefaultPDFVersion  = 1.4
	DefaultPart        = "1"
	DefaultConformance = "A"
)

// Options selects the PDF/A flavour and the PDF version written by a
// conversion.
type Options struct {
	// PDFVersion is the PDF version of the output file (e.g. 1.4, 1.7, 2.0).
	PDFVersion float64 `json:"pdf_version" yaml:"pdf_version" mapstructure:"pdf_version"`

	// Part is the PDF/A part identifier written to pdfaid:part ("1" to "4").
	Part string `json:"part" yaml:"part" mapstructure:"part"`

	// Conformance is the PDF/A conformance level written to
	// pdfaid:conformance ("A", "B", "U", ...).
	Conformance string `json:"conformance" yaml:"conformance" mapstructure:"conformance"`
}

// DefaultOptions returns the options for PDF/A-1A at PDF 1.4.
func DefaultOptions() Options {
	return Options{
		PDFVersion:  DefaultPDFVersion,
		Part:        DefaultPart,
		Conformance: DefaultConformance,
	}
}

// WithDefaults returns a copy of o with every unset field replaced by its
// default value.
func (o Options) WithDefaults() Options {
	if o.PDFVersion == 0 {
		o.PDFVersion = DefaultPDFVersion
	}
	if o.Part == "" {
		o.Part = DefaultPart
	}
	if o.Conformance == "" {
		o.Conformance = DefaultConformance
	}
	return o
}

// VersionString formats PDFVersion the way it appears in a PDF header,
// with exactly one decimal ("1.4", "2.0").
func (o Options) VersionString() string {
	return strconv.FormatFloat(o.PDFVersion, 'f', 1, 64)
}

// Flavour returns the veraPDF flavour identifier for the options, e.g. "1a"
// or "3u".
func (o Options) Flavour() string {
	c := o.Conformance
	if len(c) > 0 && c[0] >= 'A' && c[0] <= 'Z' {
		c = string(c[0]+'a'-'A') + c[1:]
	}
	return o.Part + c
}

// String returns a short human-readable label such as "PDF/A-1A (PDF 1.4)".
func (o Options) String() string {
	return fmt.Sprintf("PDF/A-%s%s (PDF %s)", o.Part, o.Conformance, o.VersionString())
}

// Result summarizes a successful conversion.
type Result struct {
	// Size is the length of the converted document in bytes.
	Size int `json:"size" yaml:"size"`

	// Options are the effective options used for the conversion.
	Options Options `json:"options" yaml:"options"`

	// OutputIntentAdded reports whether an sRGB output intent was attached.
	// It is false when the document already carried an output intent.
	OutputIntentAdded bool `json:"output_intent_added" yaml:"output_intent_added"`
}
