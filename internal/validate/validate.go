// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks PDF/A conformance by running veraPDF in a
// container and parsing its machine-readable report.
package validate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/pdfa-convert/internal/container"
)

// DefaultImage is the veraPDF CLI image used when none is configured.
const DefaultImage = "verapdf/cli:latest"

const mountPoint = "/data"

// Rule is one failed veraPDF rule.
type Rule struct {
	Clause      string `json:"clause" yaml:"clause"`
	TestNumber  string `json:"test_number" yaml:"test_number"`
	Description string `json:"description" yaml:"description"`
	Failed      int    `json:"failed_checks" yaml:"failed_checks"`
}

// Report is the outcome of validating one file.
type Report struct {
	File        string `json:"file" yaml:"file"`
	Flavour     string `json:"flavour" yaml:"flavour"`
	Profile     string `json:"profile" yaml:"profile"`
	Passed      bool   `json:"passed" yaml:"passed"`
	FailedRules []Rule `json:"failed_rules,omitempty" yaml:"failed_rules,omitempty"`
}

// Validator runs veraPDF through a container runtime.
type Validator struct {
	runtime container.Runtime
	image   string
}

// New creates a Validator that runs image (DefaultImage when empty) with rt.
// It verifies that the image exists locally before returning.
func New(rt container.Runtime, image string) (*Validator, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("veraPDF image not available in %s (try `%s pull %s`): %w",
			rt.Name(), rt.Name(), image, err)
	}
	return &Validator{runtime: rt, image: image}, nil
}

// Validate checks the PDF at path against flavour ("1a", "2b", ...). An
// empty flavour lets veraPDF pick the flavour declared in the file.
func (v *Validator) Validate(path, flavour string) (*Report, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	flavour = strings.ToLower(flavour)
	if flavour == "" {
		flavour = "0"
	}

	mounts := []container.Mount{{Source: filepath.Dir(abs), Target: mountPoint, ReadOnly: true}}
	args := []string{"--format", "mrr", "--flavour", flavour, mountPoint + "/" + filepath.Base(abs)}

	var out bytes.Buffer
	runErr := v.runtime.Run(v.image, mounts, args, &out)

	// veraPDF exits non-zero for non-compliant files but still prints a
	// report, so the report wins over the exit status.
	report, parseErr := ParseReport(out.Bytes())
	if parseErr != nil {
		if runErr != nil {
			return nil, fmt.Errorf("running veraPDF on %s: %w", path, runErr)
		}
		return nil, fmt.Errorf("reading veraPDF report for %s: %w", path, parseErr)
	}
	report.File = path
	if flavour != "0" {
		report.Flavour = flavour
	}
	return report, nil
}

// ParseReport reads a veraPDF machine-readable (mrr) XML report.
func ParseReport(data []byte) (*Report, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}

	vr := xmlquery.FindOne(doc, "//validationReport")
	if vr == nil {
		if ex := xmlquery.FindOne(doc, "//taskException/exceptionMessage"); ex != nil {
			return nil, fmt.Errorf("veraPDF: %s", strings.TrimSpace(ex.InnerText()))
		}
		return nil, fmt.Errorf("no validationReport element")
	}

	r := &Report{
		Profile: vr.SelectAttr("profileName"),
		Passed:  vr.SelectAttr("isCompliant") == "true",
	}
	if name := r.Profile; name != "" {
		r.Flavour = flavourFromProfile(name)
	}

	for _, n := range xmlquery.Find(vr, ".//rule[@status='failed']") {
		rule := Rule{
			Clause:     n.SelectAttr("clause"),
			TestNumber: n.SelectAttr("testNumber"),
		}
		if d := xmlquery.FindOne(n, "description"); d != nil {
			rule.Description = strings.TrimSpace(d.InnerText())
		}
		rule.Failed, _ = strconv.Atoi(n.SelectAttr("failedChecks"))
		r.FailedRules = append(r.FailedRules, rule)
	}
	return r, nil
}

// flavourFromProfile turns "PDF/A-2B validation profile" into "2b".
func flavourFromProfile(profile string) string {
	i := strings.Index(profile, "PDF/A-")
	if i < 0 {
		return ""
	}
	rest := profile[i+len("PDF/A-"):]
	if len(rest) < 2 {
		return ""
	}
	return strings.ToLower(rest[:2])
}
