package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

// maxReportedLines caps how many representative line numbers one code-pattern
// finding carries; the remainder is reported as a count.
const maxReportedLines = 3

// Finding is one vulnerability identified on a scanned page, either from a
// technology/version match or from a code-pattern match. LineNumbers are
// 1-based positions in the source HTML and only present for pattern matches.
type Finding struct {
	Name             string   `json:"name"`
	Version          string   `json:"version,omitempty"`
	Vulnerability    string   `json:"vulnerability"`
	Severity         Severity `json:"severity"`
	CVE              string   `json:"cve,omitempty"`
	LineNumbers      []int    `json:"line_numbers,omitempty"`
	AdditionalLines  int      `json:"additional_lines,omitempty"`
	Recommendation   string   `json:"recommendation,omitempty"`
}

// Matcher cross-references detected technologies and raw HTML against the
// vulnerability rule tables. Rules are compiled once at construction; Go
// regexps carry no cursor state, so a Matcher is safe for reuse and repeat
// invocations cannot contaminate each other.
type Matcher struct {
	techRules    map[string][]TechRule
	patternRules []compiledPattern
}

type compiledPattern struct {
	rule PatternRule
	re   *regexp.Regexp
}

// NewMatcher builds a Matcher over the built-in rule tables.
func NewMatcher() *Matcher {
	return NewMatcherWithRules(DefaultTechRules, DefaultPatternRules)
}

// NewMatcherWithRules builds a Matcher over custom rule tables, primarily
// for tests.
func NewMatcherWithRules(techRules []TechRule, patternRules []PatternRule) *Matcher {
	m := &Matcher{techRules: make(map[string][]TechRule, len(techRules))}
	for _, rule := range techRules {
		m.techRules[rule.Tech] = append(m.techRules[rule.Tech], rule)
	}
	for _, rule := range patternRules {
		m.patternRules = append(m.patternRules, compiledPattern{rule: rule, re: regexp.MustCompile(rule.Pattern)})
	}
	return m
}

// Match emits findings for vulnerable technology versions and risky code
// patterns. Findings are additive: one per matched rule, no deduplication
// across the two sources. Output is ordered by severity (critical first)
// then name for deterministic results.
func (m *Matcher) Match(technologies []DetectedTechnology, html string) []Finding {
	findings := m.matchTechnologies(technologies)
	findings = append(findings, m.matchPatterns(html)...)

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity > findings[j].Severity
		}
		return findings[i].Name < findings[j].Name
	})
	return findings
}

func (m *Matcher) matchTechnologies(technologies []DetectedTechnology) []Finding {
	var findings []Finding
	for _, tech := range technologies {
		if tech.Version == "" {
			continue
		}
		for _, rule := range m.techRules[tech.Name] {
			if !versionHasPrefix(tech.Version, rule.VulnerablePrefixes) {
				continue
			}
			findings = append(findings, Finding{
				Name:           tech.Name,
				Version:        tech.Version,
				Vulnerability:  rule.Description,
				Severity:       rule.Severity,
				CVE:            rule.CVE,
				Recommendation: rule.Recommendation,
			})
		}
	}
	return findings
}

// matchPatterns scans the HTML line by line so findings can report 1-based
// line numbers. Each rule emits at most one finding carrying up to
// maxReportedLines representative lines plus a remainder count.
func (m *Matcher) matchPatterns(html string) []Finding {
	if html == "" {
		return nil
	}
	lines := strings.Split(html, "\n")

	var findings []Finding
	for _, cp := range m.patternRules {
		var matched []int
		for i, line := range lines {
			if cp.re.MatchString(line) {
				matched = append(matched, i+1)
			}
		}
		if len(matched) == 0 {
			continue
		}

		finding := Finding{
			Name:           cp.rule.Name,
			Vulnerability:  cp.rule.Description,
			Severity:       cp.rule.Severity,
			Recommendation: cp.rule.Recommendation,
		}
		if len(matched) > maxReportedLines {
			finding.LineNumbers = matched[:maxReportedLines]
			finding.AdditionalLines = len(matched) - maxReportedLines
		} else {
			finding.LineNumbers = matched
		}
		findings = append(findings, finding)
	}
	return findings
}

func versionHasPrefix(version string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(version, prefix) {
			return true
		}
	}
	return false
}

// CountBySeverity tallies findings per severity level.
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int, 4)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
