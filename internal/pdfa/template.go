// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfa

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/text/language"
	"seehuhn.de/go/xmp"

	"github.com/pdiddy/pdfa-convert/internal/pdfdoc"
	"github.com/pdiddy/pdfa-convert/pkg/types"
)

// Placeholder tokens substituted into the XMP template.
const (
	TokenPart        = "@#pdfaid:part#@"
	TokenConformance = "@#pdfaid:conformance#@"
)

//go:embed xmp_template.xml
var defaultTemplate []byte

var (
	validParts        = map[string]bool{"1": true, "2": true, "3": true, "4": true}
	validConformances = map[string]bool{"A": true, "B": true, "U": true, "E": true, "F": true}
	validVersions     = map[string]bool{
		"1.0": true, "1.1": true, "1.2": true, "1.3": true, "1.4": true,
		"1.5": true, "1.6": true, "1.7": true, "2.0": true,
	}
)

// Template is an XMP packet with PDF/A identification placeholders.
type Template struct {
	raw    []byte
	source string
}

// DefaultTemplate returns the built-in template.
func DefaultTemplate() *Template {
	return &Template{raw: defaultTemplate, source: "built-in"}
}

// LoadTemplate reads a template from path. A missing or empty file, or one
// that lacks either placeholder, yields a TemplateMissing error.
func LoadTemplate(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(KindTemplateMissing, err, "cannot load the XMP template %s", path)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, newError(KindTemplateMissing, nil, "XMP template %s is empty", path)
	}
	for _, tok := range []string{TokenPart, TokenConformance} {
		if !bytes.Contains(raw, []byte(tok)) {
			return nil, newError(KindTemplateMissing, nil, "XMP template %s has no %s placeholder", path, tok)
		}
	}
	return &Template{raw: raw, source: path}, nil
}

// Source names where the template came from ("built-in" or a file path).
func (t *Template) Source() string {
	return t.source
}

// Render substitutes part and conformance into the template. Both values
// are checked against the PDF/A identifiers first, so the substitution can
// never inject markup. The result must be well-formed XML.
func (t *Template) Render(part, conformance string) ([]byte, error) {
	if t == nil || len(t.raw) == 0 {
		return nil, newError(KindTemplateMissing, nil, "cannot load the XMP template")
	}
	part, conformance, err := checkIdentification(part, conformance)
	if err != nil {
		return nil, err
	}

	content := string(t.raw)
	content = strings.ReplaceAll(content, TokenPart, part)
	content = strings.ReplaceAll(content, TokenConformance, conformance)
	out := []byte(content)

	if _, err := xmlquery.Parse(bytes.NewReader(out)); err != nil {
		return nil, newError(KindTemplateMissing, err, "XMP template %s is not well-formed", t.source)
	}
	return out, nil
}

// NormalizeOptions fills in defaults and validates opts. The conformance
// level is upper-cased.
func NormalizeOptions(opts types.Options) (types.Options, error) {
	opts = opts.WithDefaults()
	part, conformance, err := checkIdentification(opts.Part, opts.Conformance)
	if err != nil {
		return opts, err
	}
	opts.Part = part
	opts.Conformance = conformance
	if err := checkVersion(opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// checkVersion accepts the PDF versions 1.0 to 1.7 and 2.0, written with a
// single decimal.
func checkVersion(opts types.Options) error {
	v := opts.PDFVersion
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 1.0 || v > 2.0 {
		return newError(KindInvalidOption, nil, "PDF version %v out of range", v)
	}
	s := opts.VersionString()
	if f, err := strconv.ParseFloat(s, 64); err != nil || f != v {
		return newError(KindInvalidOption, nil, "PDF version %v has more than one decimal", v)
	}
	if !validVersions[s] {
		return newError(KindInvalidOption, nil, "PDF version %s does not exist", s)
	}
	return nil
}

func checkIdentification(part, conformance string) (string, string, error) {
	part = strings.TrimSpace(part)
	conformance = strings.ToUpper(strings.TrimSpace(conformance))
	if !validParts[part] {
		return "", "", newError(KindInvalidOption, nil, "PDF/A part %q is not one of 1, 2, 3, 4", part)
	}
	if !validConformances[conformance] {
		return "", "", newError(KindInvalidOption, nil, "PDF/A conformance %q is not one of A, B, U, E, F", conformance)
	}
	return part, conformance, nil
}

// pdfNamespace is the Adobe PDF XMP schema.
type pdfNamespace struct {
	_        xmp.Namespace `xmp:"http://ns.adobe.com/pdf/1.3/"`
	_        xmp.Prefix    `xmp:"pdf"`
	Keywords xmp.Text
	Producer xmp.AgentName
}

// SyncInfo adds the document information fields to a rendered packet:
// title, author and subject as Dublin Core, keywords and producer in the
// pdf: schema. Empty fields are left out.
func SyncInfo(packet []byte, info pdfdoc.Info) ([]byte, error) {
	if info.IsZero() {
		return packet, nil
	}
	p, err := xmp.Read(bytes.NewReader(packet))
	if err != nil {
		return nil, fmt.Errorf("parsing XMP packet: %w", err)
	}

	xDefault := language.MustParse("x-default")
	dc := &xmp.DublinCore{}
	if info.Title != "" {
		dc.Title.Set(xDefault, info.Title)
	}
	if info.Author != "" {
		dc.Creator.Append(xmp.NewProperName(info.Author))
	}
	if info.Subject != "" {
		dc.Description.Set(xDefault, info.Subject)
	}
	pdfInfo := &pdfNamespace{}
	if info.Keywords != "" {
		pdfInfo.Keywords = xmp.NewText(info.Keywords)
	}
	if info.Producer != "" {
		pdfInfo.Producer = xmp.NewAgentName(info.Producer)
	}
	if err := p.Set(dc, pdfInfo); err != nil {
		return nil, fmt.Errorf("setting XMP properties: %w", err)
	}

	var buf bytes.Buffer
	if err := p.Write(&buf, &xmp.PacketOptions{Pretty: true}); err != nil {
		return nil, fmt.Errorf("writing XMP packet: %w", err)
	}
	return buf.Bytes(), nil
}
