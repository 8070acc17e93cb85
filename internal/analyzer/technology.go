package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

// DetectedTechnology is one technology identified on a scanned page.
type DetectedTechnology struct {
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	Version        string `json:"version,omitempty"`
	CurrentVersion string `json:"current_version,omitempty"`
}

// Outdated reports whether the detected version differs from the latest
// release known to the reference table. Both versions must be present.
func (t DetectedTechnology) Outdated() bool {
	return t.Version != "" && t.CurrentVersion != "" && t.Version != t.CurrentVersion
}

// Detector evaluates a signature table against a page. Signatures and the
// compiled version patterns are fixed at construction, so a single Detector
// is safe for reuse across scans.
type Detector struct {
	signatures      []Signature
	versionPatterns map[string][]*regexp.Regexp
	genericPatterns map[string]*regexp.Regexp
	latestVersions  map[string]string
}

// NewDetector builds a Detector over the built-in signature table.
func NewDetector() *Detector {
	return NewDetectorWithSignatures(DefaultSignatures, currentVersions)
}

// NewDetectorWithSignatures builds a Detector over a custom signature table
// and current-version reference. Intended for tests and rule experiments.
func NewDetectorWithSignatures(signatures []Signature, latest map[string]string) *Detector {
	d := &Detector{
		signatures:      signatures,
		versionPatterns: make(map[string][]*regexp.Regexp, len(signatures)),
		genericPatterns: make(map[string]*regexp.Regexp, len(signatures)),
		latestVersions:  latest,
	}
	for _, sig := range signatures {
		for _, pat := range sig.VersionPatterns {
			d.versionPatterns[sig.Name] = append(d.versionPatterns[sig.Name], regexp.MustCompile(pat))
		}
		// Fallback pattern per the generic {techname}[-_@\s]*v?X.Y(.Z) form,
		// matched against the lowercased HTML.
		generic := regexp.QuoteMeta(strings.ToLower(sig.Name)) + `[-_@\s]*v?(\d+\.\d+(?:\.\d+)?)`
		d.genericPatterns[sig.Name] = regexp.MustCompile(generic)
	}
	return d
}

// Detect evaluates every signature against the page and returns the matched
// technologies, deduplicated by name and sorted alphabetically. Running it
// twice on the same page yields identical output.
func (d *Detector) Detect(page *Page) []DetectedTechnology {
	if page == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(d.signatures))
	detected := make([]DetectedTechnology, 0, 8)

	for _, sig := range d.signatures {
		if _, dup := seen[sig.Name]; dup {
			continue
		}
		if !d.matches(sig, page) {
			continue
		}
		seen[sig.Name] = struct{}{}

		tech := DetectedTechnology{
			Name:     sig.Name,
			Category: sig.Category,
			Version:  d.extractVersion(sig.Name, page),
		}
		if latest, ok := d.latestVersions[sig.Name]; ok {
			tech.CurrentVersion = latest
		}
		detected = append(detected, tech)
	}

	sort.Slice(detected, func(i, j int) bool { return detected[i].Name < detected[j].Name })
	return detected
}

func (d *Detector) matches(sig Signature, page *Page) bool {
	for _, needle := range sig.HTMLContains {
		if strings.Contains(page.LowerHTML, needle) {
			return true
		}
	}
	for _, needle := range sig.ScriptSrcContains {
		if page.anyScriptSrcContains(needle) {
			return true
		}
	}
	for _, needle := range sig.LinkHrefContains {
		if page.anyLinkHrefContains(needle) {
			return true
		}
	}
	if sig.Selector != "" && page.Doc().Find(sig.Selector).Length() > 0 {
		return true
	}
	return false
}

// extractVersion tries the technology-specific patterns in order against the
// raw HTML; the first capturable numeric version wins. Technologies without
// specific patterns use the generic fallback over the lowercased HTML. No
// match leaves the version empty, never an error.
func (d *Detector) extractVersion(name string, page *Page) string {
	specific := d.versionPatterns[name]
	for _, re := range specific {
		if m := re.FindStringSubmatch(page.HTML); len(m) > 1 && m[1] != "" {
			return m[1]
		}
	}
	if len(specific) == 0 {
		if re, ok := d.genericPatterns[name]; ok {
			if m := re.FindStringSubmatch(page.LowerHTML); len(m) > 1 && m[1] != "" {
				return m[1]
			}
		}
	}
	return ""
}
