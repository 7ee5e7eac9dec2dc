// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pdfcopy"
)

// OutputIntent describes one entry of the catalog /OutputIntents array.
type OutputIntent struct {
	// S is the output intent subtype, e.g. "GTS_PDFA1".
	S string `json:"s" yaml:"s"`

	OutputCondition           string `json:"output_condition,omitempty" yaml:"output_condition,omitempty"`
	OutputConditionIdentifier string `json:"output_condition_identifier" yaml:"output_condition_identifier"`
	RegistryName              string `json:"registry_name,omitempty" yaml:"registry_name,omitempty"`
	Info                      string `json:"info,omitempty" yaml:"info,omitempty"`

	// Components is the /N value of the destination profile stream, or 0
	// when the intent carries no profile.
	Components int `json:"components,omitempty" yaml:"components,omitempty"`
}

// OutputIntentCount returns the number of entries in the catalog
// /OutputIntents array, including entries that do not resolve to an output
// intent dictionary.
func (d *Document) OutputIntentCount() (int, error) {
	if d.closed {
		return 0, ErrClosed
	}
	arr, err := pdf.GetArray(d.r, d.catalog.OutputIntents)
	if err != nil {
		return 0, fmt.Errorf("reading /OutputIntents: %w", err)
	}
	return len(arr) + len(d.added), nil
}

// OutputIntents lists the output intents attached to the catalog. Array
// entries that are not dictionaries are skipped.
func (d *Document) OutputIntents() ([]OutputIntent, error) {
	if d.closed {
		return nil, ErrClosed
	}
	arr, err := pdf.GetArray(d.r, d.catalog.OutputIntents)
	if err != nil {
		return nil, fmt.Errorf("reading /OutputIntents: %w", err)
	}

	res := make([]OutputIntent, 0, len(arr)+len(d.added))
	for i, obj := range arr {
		dict, err := pdf.GetDict(d.r, obj)
		if err != nil {
			return nil, fmt.Errorf("reading output intent %d: %w", i, err)
		}
		if dict == nil {
			continue
		}
		oi := OutputIntent{
			OutputCondition:           d.getText(dict["OutputCondition"]),
			OutputConditionIdentifier: d.getText(dict["OutputConditionIdentifier"]),
			RegistryName:              d.getText(dict["RegistryName"]),
			Info:                      d.getText(dict["Info"]),
		}
		if s, err := pdf.GetName(d.r, dict["S"]); err == nil {
			oi.S = string(s)
		}
		if stm, err := pdf.GetStream(d.r, dict["DestOutputProfile"]); err == nil && stm != nil {
			if n, err := pdf.GetInteger(d.r, stm.Dict["N"]); err == nil {
				oi.Components = int(n)
			}
		}
		res = append(res, oi)
	}
	for _, p := range d.added {
		oi := p.intent
		oi.Components = p.components
		res = append(res, oi)
	}
	return res, nil
}

// AddOutputIntent appends an output intent whose destination profile is the
// given ICC profile with n color components.
func (d *Document) AddOutputIntent(oi OutputIntent, profile []byte, n int) error {
	if d.closed {
		return ErrClosed
	}
	if len(profile) == 0 {
		return errors.New("missing ICC profile data")
	}
	d.added = append(d.added, pendingIntent{
		intent:     oi,
		profile:    bytes.Clone(profile),
		components: n,
	})
	return nil
}

// writeOutputIntents copies the existing output intents to w, appends the
// added ones and returns the new /OutputIntents array, or nil when there
// are none.
func (d *Document) writeOutputIntents(w *pdf.Writer, copier *pdfcopy.Copier) (pdf.Object, error) {
	existing, err := pdf.GetArray(d.r, d.catalog.OutputIntents)
	if err != nil {
		return nil, fmt.Errorf("reading /OutputIntents: %w", err)
	}
	if len(existing) == 0 && len(d.added) == 0 {
		return nil, nil
	}

	intents, err := copier.CopyArray(existing)
	if err != nil {
		return nil, fmt.Errorf("copying output intents: %w", err)
	}
	for _, p := range d.added {
		ref, err := writeOutputIntent(w, p)
		if err != nil {
			return nil, err
		}
		intents = append(intents, ref)
	}
	return intents, nil
}

func writeOutputIntent(w *pdf.Writer, p pendingIntent) (pdf.Reference, error) {
	profileRef := w.Alloc()
	stm, err := w.OpenStream(profileRef, pdf.Dict{"N": pdf.Integer(p.components)}, pdf.FilterFlate{})
	if err != nil {
		return 0, fmt.Errorf("creating ICC profile stream: %w", err)
	}
	if _, err := stm.Write(p.profile); err != nil {
		stm.Close()
		return 0, fmt.Errorf("writing ICC profile stream: %w", err)
	}
	if err := stm.Close(); err != nil {
		return 0, fmt.Errorf("closing ICC profile stream: %w", err)
	}

	oi := p.intent
	dict := pdf.Dict{
		"Type":                      pdf.Name("OutputIntent"),
		"S":                         pdf.Name(oi.S),
		"OutputConditionIdentifier": pdf.String(oi.OutputConditionIdentifier),
		"DestOutputProfile":         profileRef,
	}
	if oi.OutputCondition != "" {
		dict["OutputCondition"] = pdf.String(oi.OutputCondition)
	}
	if oi.RegistryName != "" {
		dict["RegistryName"] = pdf.String(oi.RegistryName)
	}
	if oi.Info != "" {
		dict["Info"] = pdf.String(oi.Info)
	}
	ref := w.Alloc()
	if err := w.Put(ref, dict); err != nil {
		return 0, fmt.Errorf("writing output intent: %w", err)
	}
	return ref, nil
}

func (d *Document) getText(obj pdf.Object) string {
	s, err := pdf.GetTextString(d.r, obj)
	if err != nil {
		return ""
	}
	return string(s)
}
