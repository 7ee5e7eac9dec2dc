// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"bytes"
	"fmt"
	"io"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pdfcopy"
)

// Metadata returns the document-level XMP packet, or nil if the document has
// no metadata stream.
func (d *Document) Metadata() ([]byte, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.hasPacket {
		return bytes.Clone(d.packet), nil
	}
	ref := d.catalog.Metadata
	if ref == 0 {
		return nil, nil
	}
	stm, err := pdf.GetStream(d.r, ref)
	if err != nil {
		return nil, fmt.Errorf("opening metadata stream: %w", err)
	}
	if stm == nil {
		return nil, nil
	}
	body, err := pdf.DecodeStream(d.r, stm, 0)
	if err != nil {
		return nil, fmt.Errorf("decoding metadata stream: %w", err)
	}
	defer body.Close()

	packet, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading metadata stream: %w", err)
	}
	return packet, nil
}

// SetMetadata replaces the document-level XMP metadata by packet. The
// previous metadata stream is not carried into the written file.
func (d *Document) SetMetadata(packet []byte) error {
	if d.closed {
		return ErrClosed
	}
	d.packet = bytes.Clone(packet)
	d.hasPacket = true
	return nil
}

// writeMetadata writes the metadata stream to w and returns its reference.
// A replacement packet is stored unfiltered, as PDF/A requires for the
// document metadata.
func (d *Document) writeMetadata(w *pdf.Writer, copier *pdfcopy.Copier) (pdf.Reference, error) {
	if !d.hasPacket {
		if d.catalog.Metadata == 0 {
			return 0, nil
		}
		ref, err := copier.CopyReference(d.catalog.Metadata)
		if err != nil {
			return 0, fmt.Errorf("copying metadata stream: %w", err)
		}
		return ref, nil
	}

	ref := w.Alloc()
	dict := pdf.Dict{
		"Type":    pdf.Name("Metadata"),
		"Subtype": pdf.Name("XML"),
	}
	stm, err := w.OpenStream(ref, dict)
	if err != nil {
		return 0, fmt.Errorf("creating metadata stream: %w", err)
	}
	if _, err := stm.Write(d.packet); err != nil {
		stm.Close()
		return 0, fmt.Errorf("writing metadata stream: %w", err)
	}
	if err := stm.Close(); err != nil {
		return 0, fmt.Errorf("closing metadata stream: %w", err)
	}
	return ref, nil
}
