// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc wraps a PDF document read with seehuhn.de/go/pdf and
// exposes the catalog-level operations pdfa-convert needs: document
// information, XMP metadata, output intents and the file version.
//
// Edits are kept on a working copy of the catalog. Bytes writes a new file
// that carries every object reachable from the edited catalog; objects that
// are no longer referenced (a replaced metadata stream, a dropped Info
// dictionary) are left behind.
//
// A Document is owned by a single caller. It must be closed after use.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pdfcopy"
)

// ErrClosed is returned by operations on a closed Document.
var ErrClosed = errors.New("document is closed")

// ErrEncrypted is returned by Open for encrypted files, which PDF/A does
// not allow.
var ErrEncrypted = errors.New("encrypted PDF files are not supported")

// Document is a parsed PDF held in memory.
type Document struct {
	r   *pdf.Reader
	src []byte

	version pdf.Version
	catalog pdf.Catalog
	info    *pdf.Info

	// packet replaces the catalog /Metadata stream when hasPacket is set.
	packet    []byte
	hasPacket bool

	added  []pendingIntent
	closed bool
}

type pendingIntent struct {
	intent     OutputIntent
	profile    []byte
	components int
}

// Open parses a complete PDF file from data. The slice is not modified.
func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, errors.New("empty PDF data")
	}
	src := bytes.Clone(data)
	r, err := pdf.NewReader(bytes.NewReader(src), nil)
	if err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}
	meta := r.GetMeta()
	if _, ok := meta.Trailer["Encrypt"]; ok {
		r.Close()
		return nil, ErrEncrypted
	}

	d := &Document{
		r:       r,
		src:     src,
		version: meta.Version,
		catalog: *meta.Catalog,
	}
	if meta.Info != nil {
		info := *meta.Info
		d.info = &info
	}
	return d, nil
}

// Close releases the resources held by the document. Calling Close more
// than once is allowed; only the first call has an effect.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.src = nil
	d.packet = nil
	d.added = nil
	return d.r.Close()
}

// Version returns the PDF version of the document, e.g. "1.7".
func (d *Document) Version() string {
	return d.version.String()
}

// SetVersion sets the PDF version used when the document is written. The
// catalog /Version entry is cleared so that the header version is
// authoritative.
func (d *Document) SetVersion(version string) error {
	if d.closed {
		return ErrClosed
	}
	v, err := pdf.ParseVersion(version)
	if err != nil {
		return fmt.Errorf("unsupported PDF version %q: %w", version, err)
	}
	d.version = v
	d.catalog.Version = 0
	return nil
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}
	var buf bytes.Buffer
	if err := d.write(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTo serializes the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	out, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(out)
	return int64(n), err
}

func (d *Document) write(out io.Writer) error {
	w, err := pdf.NewWriter(out, d.version, &pdf.WriterOptions{ID: d.fileID()})
	if err != nil {
		return err
	}
	copier := pdfcopy.NewCopier(w, d.r)

	cat := d.catalog
	cat.Metadata = 0
	cat.OutputIntents = nil
	copied, err := copier.CopyDict(pdf.AsDict(&cat))
	if err != nil {
		return fmt.Errorf("copying document catalog: %w", err)
	}
	wcat := w.GetMeta().Catalog
	if err := pdf.DecodeDict(w, wcat, copied); err != nil {
		return fmt.Errorf("rebuilding document catalog: %w", err)
	}

	if wcat.Metadata, err = d.writeMetadata(w, copier); err != nil {
		return err
	}
	if wcat.OutputIntents, err = d.writeOutputIntents(w, copier); err != nil {
		return err
	}

	if d.info != nil {
		*w.GetMeta().Info = *d.info
	}
	return w.Close()
}

// fileID keeps the source file identifier. PDF 2.0 requires one, so a file
// without it gets an identifier derived from its bytes, which keeps the
// output reproducible.
func (d *Document) fileID() [][]byte {
	if d.version == pdf.V1_0 {
		return nil
	}
	id := d.r.GetMeta().ID
	if len(id) == 2 && (d.version < pdf.V2_0 || len(id[0]) >= 16 && len(id[1]) >= 16) {
		return id
	}
	if d.version < pdf.V2_0 {
		return nil
	}
	sum := blake3.Sum256(d.src)
	return [][]byte{sum[:16], sum[:16]}
}
