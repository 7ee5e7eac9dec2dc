// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfa converts PDF documents into PDF/A documents. A conversion
// normalizes the document information dictionary, replaces the XMP metadata
// with a PDF/A identification packet, attaches an sRGB output intent when
// none is present, and rewrites the file at the requested PDF version.
//
// The conversion does not repair content (fonts, transparency, actions);
// validate the result with veraPDF when strict conformance matters.
package pdfa

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/google/renameio/v2"

	"github.com/pdiddy/pdfa-convert/internal/pdfdoc"
	"github.com/pdiddy/pdfa-convert/pkg/types"
)

// Converter performs PDF/A conversions. It holds only read-only resources
// and may be used from several goroutines at once.
type Converter struct {
	template *Template
	profile  *Profile
	syncInfo bool
	log      *slog.Logger

	open func([]byte) (document, error)
}

// document is the part of *pdfdoc.Document a conversion edits.
type document interface {
	NormalizeInfo() (pdfdoc.Info, error)
	SetMetadata(packet []byte) error
	OutputIntentCount() (int, error)
	AddOutputIntent(oi pdfdoc.OutputIntent, profile []byte, n int) error
	SetVersion(version string) error
	Bytes() ([]byte, error)
	Close() error
}

func openDocument(data []byte) (document, error) {
	doc, err := pdfdoc.Open(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// New creates a Converter from cfg. Empty TemplatePath and ICCProfilePath
// select the built-in XMP template and sRGB profile. A nil logger discards
// log output.
func New(cfg types.ConversionConfig, logger *slog.Logger) (*Converter, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tmpl := DefaultTemplate()
	if cfg.TemplatePath != "" {
		var err error
		tmpl, err = LoadTemplate(cfg.TemplatePath)
		if err != nil {
			return nil, err
		}
	}

	var (
		profile *Profile
		err     error
	)
	if cfg.ICCProfilePath != "" {
		profile, err = LoadProfile(cfg.ICCProfilePath)
	} else {
		profile, err = DefaultProfile()
	}
	if err != nil {
		return nil, newError(KindOutputIntentFailure, err, "cannot load the color profile")
	}

	return &Converter{
		template: tmpl,
		profile:  profile,
		syncInfo: cfg.SyncInfo,
		log:      logger,
		open:     openDocument,
	}, nil
}

// ConvertDefault converts input to PDF/A-1A at PDF version 1.4.
func (c *Converter) ConvertDefault(input []byte) ([]byte, error) {
	return c.Convert(input, types.DefaultOptions())
}

// Convert converts the PDF in input and returns the PDF/A document. The
// input slice is not modified. Unset option fields take their defaults.
func (c *Converter) Convert(input []byte, opts types.Options) ([]byte, error) {
	out, _, err := c.ConvertWithResult(input, opts)
	return out, err
}

// ConvertWithResult is like Convert and also reports what the conversion
// did.
func (c *Converter) ConvertWithResult(input []byte, opts types.Options) ([]byte, types.Result, error) {
	var res types.Result
	if len(input) == 0 {
		return nil, res, newError(KindInvalidInput, nil, "input file/content does not exist")
	}
	opts, err := NormalizeOptions(opts)
	if err != nil {
		return nil, res, err
	}
	res.Options = opts

	doc, err := c.open(input)
	if err != nil {
		return nil, res, newError(KindParseFailure, err, "cannot load the input file content")
	}
	defer doc.Close()

	info, err := doc.NormalizeInfo()
	if err != nil {
		return nil, res, newError(KindSerializeFailure, err, "cannot set the document information")
	}
	c.log.Debug("document information normalized",
		"title", info.Title, "author", info.Author, "producer", info.Producer)

	packet, err := c.template.Render(opts.Part, opts.Conformance)
	if err != nil {
		return nil, res, err
	}
	if c.syncInfo {
		packet, err = SyncInfo(packet, info)
		if err != nil {
			return nil, res, newError(KindTemplateMissing, err, "cannot merge document information into XMP")
		}
	}
	if err := doc.SetMetadata(packet); err != nil {
		return nil, res, newError(KindSerializeFailure, err, "cannot set XMP metadata")
	}
	c.log.Debug("XMP metadata replaced", "template", c.template.Source(), "bytes", len(packet))

	added, err := ensureOutputIntent(doc, c.profile)
	if err != nil {
		return nil, res, newError(KindOutputIntentFailure, err, "cannot add output intent")
	}
	res.OutputIntentAdded = added
	c.log.Debug("output intent checked", "added", added, "profile", c.profile.Source())

	if err := doc.SetVersion(opts.VersionString()); err != nil {
		return nil, res, newError(KindInvalidOption, err, "cannot set PDF version")
	}

	out, err := doc.Bytes()
	if err != nil {
		return nil, res, newError(KindSerializeFailure, err, "cannot save the output content")
	}
	if len(out) == 0 {
		return nil, res, newError(KindSerializeFailure, nil, "fail to create output content")
	}
	res.Size = len(out)

	c.log.Info("converted document", "flavour", opts.String(), "bytes", len(out))
	return out, res, nil
}

// ConvertFileDefault converts inputPath to PDF/A-1A at PDF version 1.4 and
// writes the result to outputPath.
func (c *Converter) ConvertFileDefault(inputPath, outputPath string) error {
	return c.ConvertFile(inputPath, outputPath, types.DefaultOptions())
}

// ConvertFile converts the PDF at inputPath and writes the result to
// outputPath. The output is written to a temporary file next to outputPath
// and renamed into place, so a failed write never leaves a partial file
// behind.
func (c *Converter) ConvertFile(inputPath, outputPath string, opts types.Options) error {
	fi, err := os.Stat(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return newError(KindInvalidInput, err, "input file %s does not exist", inputPath)
		}
		return newError(KindInvalidInput, err, "cannot access input file %s", inputPath)
	}
	if fi.IsDir() {
		return newError(KindInvalidInput, nil, "input %s is a directory", inputPath)
	}

	input, err := os.ReadFile(inputPath)
	if err != nil {
		return newError(KindInvalidInput, err, "cannot read the input file content")
	}

	output, err := c.Convert(input, opts)
	if err != nil {
		return err
	}

	if err := renameio.WriteFile(outputPath, output, 0o644); err != nil {
		return newError(KindOutputWriteFailure, err, "cannot write to the output file %s", outputPath)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return newError(KindOutputNotCreated, err, "fail to create output file %s", outputPath)
	}
	return nil
}
