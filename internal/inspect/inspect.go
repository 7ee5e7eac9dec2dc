// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspect reports the PDF/A-relevant properties of a PDF file: its
// version, document information, PDF/A identification from the XMP packet,
// and output intents.
package inspect

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/pdfa-convert/internal/pdfdoc"
)

// Report describes one PDF file.
type Report struct {
	Version         string                `json:"version" yaml:"version"`
	Info            pdfdoc.Info           `json:"info" yaml:"info"`
	HasXMP          bool                  `json:"has_xmp" yaml:"has_xmp"`
	PDFAPart        string                `json:"pdfa_part,omitempty" yaml:"pdfa_part,omitempty"`
	PDFAConformance string                `json:"pdfa_conformance,omitempty" yaml:"pdfa_conformance,omitempty"`
	OutputIntents   []pdfdoc.OutputIntent `json:"output_intents" yaml:"output_intents"`
}

// IsPDFA reports whether the file declares a PDF/A part and conformance
// level and carries at least one output intent.
func (r *Report) IsPDFA() bool {
	return r.PDFAPart != "" && r.PDFAConformance != "" && len(r.OutputIntents) > 0
}

// Flavour returns the declared PDF/A flavour, e.g. "PDF/A-1A", or "" when
// the file carries no identification.
func (r *Report) Flavour() string {
	if r.PDFAPart == "" {
		return ""
	}
	return "PDF/A-" + r.PDFAPart + r.PDFAConformance
}

// InspectFile reads and inspects the PDF at path.
func InspectFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Inspect(data)
}

// Inspect parses data as a PDF file and reports on it.
func Inspect(data []byte) (*Report, error) {
	doc, err := pdfdoc.Open(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	r := &Report{
		Version: doc.Version(),
		Info:    doc.Info(),
	}

	packet, err := doc.Metadata()
	if err != nil {
		return nil, err
	}
	if len(packet) > 0 {
		r.HasXMP = true
		r.PDFAPart, r.PDFAConformance, err = Identification(packet)
		if err != nil {
			return nil, err
		}
	}

	r.OutputIntents, err = doc.OutputIntents()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Identification extracts pdfaid:part and pdfaid:conformance from an XMP
// packet. Both the element form and the attribute form of the properties
// are recognized. Missing properties are returned as empty strings.
func Identification(packet []byte) (part, conformance string, err error) {
	root, err := xmlquery.Parse(bytes.NewReader(packet))
	if err != nil {
		return "", "", fmt.Errorf("parsing XMP packet: %w", err)
	}
	return lookup(root, "part"), lookup(root, "conformance"), nil
}

// lookup finds a pdfaid property by local name, matching on the namespace
// prefix used by the PDF/A identification schema.
func lookup(root *xmlquery.Node, name string) string {
	if n := xmlquery.FindOne(root, "//*[local-name()='"+name+"' and namespace-uri()='"+pdfaidNS+"']"); n != nil {
		return strings.TrimSpace(n.InnerText())
	}
	if n := xmlquery.FindOne(root, "//@*[local-name()='"+name+"' and namespace-uri()='"+pdfaidNS+"']"); n != nil {
		return strings.TrimSpace(n.InnerText())
	}
	return ""
}

const pdfaidNS = "http://www.aiim.org/pdfa/ns/id/"

// WriteText prints a human-readable summary of r to w.
func WriteText(w io.Writer, r *Report) {
	fmt.Fprintf(w, "PDF version:     %s\n", r.Version)
	flavour := r.Flavour()
	if flavour == "" {
		flavour = "(none)"
	}
	fmt.Fprintf(w, "PDF/A flavour:   %s\n", flavour)
	for _, f := range []struct{ label, value string }{
		{"Title", r.Info.Title},
		{"Author", r.Info.Author},
		{"Subject", r.Info.Subject},
		{"Keywords", r.Info.Keywords},
		{"Producer", r.Info.Producer},
	} {
		if f.value != "" {
			fmt.Fprintf(w, "%-16s %s\n", f.label+":", f.value)
		}
	}
	fmt.Fprintf(w, "Output intents:  %d\n", len(r.OutputIntents))
	for i, oi := range r.OutputIntents {
		fmt.Fprintf(w, "  [%d] %s %q registry=%q components=%d\n",
			i+1, oi.S, oi.OutputConditionIdentifier, oi.RegistryName, oi.Components)
	}
}
