// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest builds small, valid PDF files for tests. The files are
// written object by object with a correct cross-reference table, so they
// do not depend on the PDF library under test.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// Fixture describes the document to build.
type Fixture struct {
	// Version is the header version, e.g. "1.4". Empty means "1.4".
	Version string

	// Info entries, keyed by dictionary key (Title, Author, Creator, ...).
	// Values are written as literal strings. Nil omits the Info dictionary.
	Info map[string]string

	// XMP, when non-empty, is attached as the catalog /Metadata stream.
	XMP string

	// OutputIntents is the number of output intents to attach to the
	// catalog. Each carries a dummy destination profile.
	OutputIntents int

	// DanglingOutputIntents adds /OutputIntents entries that refer to
	// objects missing from the file.
	DanglingOutputIntents int
}

// Build returns the bytes of a one-page PDF described by s.
func Build(s Fixture) []byte {
	version := s.Version
	if version == "" {
		version = "1.4"
	}

	var objs []string
	add := func(body string) int {
		objs = append(objs, body)
		return len(objs)
	}

	catalog := add("") // filled in below
	pages := add("")
	page := add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] >>", pages))
	objs[pages-1] = fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", page)

	catalogDict := fmt.Sprintf("/Type /Catalog /Pages %d 0 R", pages)

	if s.XMP != "" {
		md := add(fmt.Sprintf("<< /Type /Metadata /Subtype /XML /Length %d >>\nstream\n%s\nendstream",
			len(s.XMP), s.XMP))
		catalogDict += fmt.Sprintf(" /Metadata %d 0 R", md)
	}

	if s.OutputIntents > 0 || s.DanglingOutputIntents > 0 {
		var refs bytes.Buffer
		for i := 0; i < s.OutputIntents; i++ {
			profile := "dummy-profile"
			prof := add(fmt.Sprintf("<< /N 3 /Length %d >>\nstream\n%s\nendstream", len(profile), profile))
			oi := add(fmt.Sprintf("<< /Type /OutputIntent /S /GTS_PDFA1 /OutputConditionIdentifier (Existing %d) "+
				"/RegistryName (http://example.com) /DestOutputProfile %d 0 R >>", i+1, prof))
			fmt.Fprintf(&refs, " %d 0 R", oi)
		}
		for i := 0; i < s.DanglingOutputIntents; i++ {
			fmt.Fprintf(&refs, " %d 0 R", 900+i)
		}
		catalogDict += " /OutputIntents [" + refs.String() + " ]"
	}
	objs[catalog-1] = "<< " + catalogDict + " >>"

	info := 0
	if s.Info != nil {
		keys := make([]string, 0, len(s.Info))
		for k := range s.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b bytes.Buffer
		b.WriteString("<<")
		for _, k := range keys {
			fmt.Fprintf(&b, " /%s (%s)", k, escape(s.Info[k]))
		}
		b.WriteString(" >>")
		info = add(b.String())
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", version)
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objs)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %d 0 R", len(objs)+1, catalog)
	if info != 0 {
		fmt.Fprintf(&out, " /Info %d 0 R", info)
	}
	fmt.Fprintf(&out, " >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return out.Bytes()
}

// WriteFile builds the PDF described by s and writes it to dir/name,
// returning the full path.
func WriteFile(t *testing.T, dir, name string, s Fixture) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(s), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Minimal returns a one-page PDF with Author "Alice" and Title "Doc".
func Minimal() []byte {
	return Build(Fixture{Info: map[string]string{"Author": "Alice", "Title": "Doc"}})
}

func escape(s string) string {
	var b bytes.Buffer
	for _, c := range []byte(s) {
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
