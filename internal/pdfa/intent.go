// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfa

import (
	"fmt"
	"os"

	"seehuhn.de/go/icc"

	"github.com/pdiddy/pdfa-convert/internal/pdfdoc"
)

// Output intent labels for the sRGB profile.
const (
	SRGBProfileName = "sRGB IEC61966-2.1"
	ColorRegistry   = "http://www.color.org"
	intentSubtype   = "GTS_PDFA1"
)

// Profile is an ICC color profile used as the destination profile of the
// PDF/A output intent.
type Profile struct {
	data       []byte
	components int
	source     string
}

// DefaultProfile returns the sRGB IEC61966-2.1 ICC v2 profile.
func DefaultProfile() (*Profile, error) {
	return newProfile(icc.SRGBv2Profile, "built-in sRGB")
}

// LoadProfile reads an ICC profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ICC profile %s: %w", path, err)
	}
	return newProfile(data, path)
}

func newProfile(data []byte, source string) (*Profile, error) {
	p, err := icc.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding ICC profile %s: %w", source, err)
	}
	n := p.ColorSpace.NumComponents()
	if n != 1 && n != 3 && n != 4 {
		return nil, fmt.Errorf("ICC profile %s has %d components, want 1, 3 or 4", source, n)
	}
	return &Profile{data: data, components: n, source: source}, nil
}

// Components returns the number of color components of the profile.
func (p *Profile) Components() int { return p.components }

// Source names where the profile came from.
func (p *Profile) Source() string { return p.source }

// sRGBIntent is the output intent attached to converted documents.
func sRGBIntent() pdfdoc.OutputIntent {
	return pdfdoc.OutputIntent{
		S:                         intentSubtype,
		OutputCondition:           SRGBProfileName,
		OutputConditionIdentifier: SRGBProfileName,
		RegistryName:              ColorRegistry,
		Info:                      SRGBProfileName,
	}
}

// ensureOutputIntent attaches the sRGB output intent unless the document
// already has an /OutputIntents entry, even one that does not resolve. It
// reports whether an intent was added.
func ensureOutputIntent(doc document, profile *Profile) (bool, error) {
	n, err := doc.OutputIntentCount()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := doc.AddOutputIntent(sRGBIntent(), profile.data, profile.components); err != nil {
		return false, err
	}
	return true, nil
}
