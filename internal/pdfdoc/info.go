// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import "seehuhn.de/go/pdf"

// Info holds the legacy document information fields kept by a PDF/A
// conversion. An empty field means the entry is absent.
type Info struct {
	Producer string `json:"producer,omitempty" yaml:"producer,omitempty"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Keywords string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// IsZero reports whether all fields are empty.
func (i Info) IsZero() bool {
	return i == Info{}
}

// Info returns the kept fields of the document information dictionary.
func (d *Document) Info() Info {
	info := d.info
	if info == nil {
		return Info{}
	}
	return Info{
		Producer: string(info.Producer),
		Author:   string(info.Author),
		Title:    string(info.Title),
		Subject:  string(info.Subject),
		Keywords: string(info.Keywords),
	}
}

// HasExtraInfo reports whether the information dictionary contains entries
// other than the five kept fields (creator, dates, trapping, custom keys).
func (d *Document) HasExtraInfo() bool {
	info := d.info
	if info == nil {
		return false
	}
	return info.Creator != "" ||
		!info.CreationDate.IsZero() ||
		!info.ModDate.IsZero() ||
		info.Trapped != "" ||
		len(info.Custom) > 0
}

// NormalizeInfo replaces the document information dictionary by a fresh
// one that carries only producer, author, title, subject and keywords,
// copied from the current dictionary. Absent fields stay absent. It returns
// the fields that were kept.
func (d *Document) NormalizeInfo() (Info, error) {
	if d.closed {
		return Info{}, ErrClosed
	}
	old := d.info
	if old == nil {
		return Info{}, nil
	}
	d.info = &pdf.Info{
		Producer: old.Producer,
		Author:   old.Author,
		Title:    old.Title,
		Subject:  old.Subject,
		Keywords: old.Keywords,
	}
	return d.Info(), nil
}
