// Package scoring combines header posture, vulnerability findings, and site
// context into the final 0-100 security score, letter grade, and risk level.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nmvu/pagerisk/internal/analyzer"
	sharederrors "github.com/nmvu/pagerisk/internal/shared/errors"
)

// Header weights. A present header contributes weight x quality; a missing
// header subtracts weight x contextual modifier.
var headerWeights = map[string]float64{
	analyzer.HeaderCSP:                 8,
	analyzer.HeaderHSTS:                6,
	analyzer.HeaderXFrameOptions:       4,
	analyzer.HeaderXContentTypeOptions: 3,
	analyzer.HeaderReferrerPolicy:      2,
	analyzer.HeaderPermissionsPolicy:   2,
	analyzer.HeaderXSSProtection:       1,
}

// Vulnerability penalty weights and per-severity caps. The combined penalty
// magnitude never exceeds maxVulnPenalty.
var severityWeights = map[analyzer.Severity]float64{
	analyzer.SeverityCritical: 25,
	analyzer.SeverityHigh:     12,
	analyzer.SeverityMedium:   5,
	analyzer.SeverityLow:      2,
}

var severityCaps = map[analyzer.Severity]int{
	analyzer.SeverityCritical: 3,
	analyzer.SeverityHigh:     5,
	analyzer.SeverityMedium:   8,
	analyzer.SeverityLow:      10,
}

const maxVulnPenalty = 30.0

// HeaderScore breaks down the header component of a score.
type HeaderScore struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
	Score   float64  `json:"score"`
}

// VulnerabilityScore breaks down the vulnerability component of a score.
type VulnerabilityScore struct {
	Critical int     `json:"critical"`
	High     int     `json:"high"`
	Medium   int     `json:"medium"`
	Low      int     `json:"low"`
	Score    float64 `json:"score"`
}

// ScoreDetails carries every component that produced the overall score.
type ScoreDetails struct {
	Baseline        int                `json:"baseline"`
	Headers         HeaderScore        `json:"headers"`
	Vulnerabilities VulnerabilityScore `json:"vulnerabilities"`
	Bonus           int                `json:"bonus"`
	Total           int                `json:"total"`
}

// SecurityScore is the terminal artifact of one scan's scoring pass.
// Immutable once produced.
type SecurityScore struct {
	Overall   int          `json:"overall"`
	Grade     string       `json:"grade"`
	RiskLevel string       `json:"risk_level"`
	SiteType  string       `json:"site_type"`
	Details   ScoreDetails `json:"details"`
}

// Scorer computes contextual security scores against an injected baseline
// table. A single Scorer is safe for reuse across scans.
type Scorer struct {
	baselines map[string]Baseline
}

// NewScorer builds a Scorer over the built-in baseline table.
func NewScorer() *Scorer {
	return NewScorerWithBaselines(DefaultBaselines)
}

// NewScorerWithBaselines builds a Scorer over a custom baseline table,
// primarily for tests.
func NewScorerWithBaselines(baselines map[string]Baseline) *Scorer {
	return &Scorer{baselines: baselines}
}

// ValidateSiteType checks a site type against the baseline table without
// computing a score.
func (s *Scorer) ValidateSiteType(siteType string) error {
	if _, ok := s.baselines[siteType]; !ok {
		return fmt.Errorf("%w: %q (known types: %s)", sharederrors.ErrUnknownSiteType, siteType, strings.Join(sortedSiteTypes(s.baselines), ", "))
	}
	return nil
}

// Score computes the security score for a site type using the strict lookup
// path: an unrecognized type returns ErrUnknownSiteType rather than silently
// defaulting.
func (s *Scorer) Score(report *analyzer.HeaderReport, findings []analyzer.Finding, siteType string, ctx *analyzer.SiteContext) (*SecurityScore, error) {
	baseline, ok := s.baselines[siteType]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known types: %s)", sharederrors.ErrUnknownSiteType, siteType, strings.Join(sortedSiteTypes(s.baselines), ", "))
	}
	return s.compute(baseline, siteType, report, findings, ctx), nil
}

// ScoreWithFallback computes the security score, falling back to the default
// baseline for unrecognized site types. The permissive path exists for
// callers that accept free-form type labels.
func (s *Scorer) ScoreWithFallback(report *analyzer.HeaderReport, findings []analyzer.Finding, siteType string, ctx *analyzer.SiteContext) *SecurityScore {
	baseline, ok := s.baselines[siteType]
	if !ok {
		baseline = s.baselines[DefaultSiteType]
		siteType = DefaultSiteType
	}
	return s.compute(baseline, siteType, report, findings, ctx)
}

// compute applies the scoring algorithm in its fixed order: baseline, header
// component, vulnerability penalty, bonus, clamp.
func (s *Scorer) compute(baseline Baseline, siteType string, report *analyzer.HeaderReport, findings []analyzer.Finding, ctx *analyzer.SiteContext) *SecurityScore {
	headers := headerComponent(report, ctx)
	vulns := vulnerabilityComponent(findings)
	bonus := bonusComponent(report, findings, ctx)

	total := float64(baseline.BaseScore) + headers.Score + vulns.Score + float64(bonus)
	clamped := clampScore(total)

	return &SecurityScore{
		Overall:   clamped,
		Grade:     gradeFor(clamped),
		RiskLevel: riskLevelFor(clamped, vulns.Critical, vulns.High),
		SiteType:  siteType,
		Details: ScoreDetails{
			Baseline:        baseline.BaseScore,
			Headers:         headers,
			Vulnerabilities: vulns,
			Bonus:           bonus,
			Total:           clamped,
		},
	}
}

// headerComponent walks the tracked headers in canonical order. Present
// headers add weight x quality; missing headers subtract weight scaled by
// the contextual penalty modifier.
func headerComponent(report *analyzer.HeaderReport, ctx *analyzer.SiteContext) HeaderScore {
	hs := HeaderScore{Present: []string{}, Missing: []string{}}

	presentPoints := 0.0
	missingPoints := 0.0
	for _, name := range analyzer.TrackedHeaders {
		status := report.Status(name)
		weight := headerWeights[name]
		if status.Present {
			hs.Present = append(hs.Present, name)
			presentPoints += weight * headerQuality(name, status)
		} else {
			hs.Missing = append(hs.Missing, name)
			missingPoints -= weight * missingPenaltyModifier(name, ctx)
		}
	}

	hs.Score = presentPoints + missingPoints
	return hs
}

// headerQuality grades a present header in [0,1]. CSP and HSTS are graded by
// directive composition; the rest map validity to 1.0 and a malformed value
// to 0.5 (presence still signals intent).
func headerQuality(name string, status analyzer.HeaderStatus) float64 {
	lower := strings.ToLower(status.Content)
	switch name {
	case analyzer.HeaderCSP:
		q := 0.0
		if strings.Contains(lower, "default-src") {
			q += 0.35
		}
		if strings.Contains(lower, "script-src") {
			q += 0.25
		}
		if strings.Contains(lower, "style-src") {
			q += 0.15
		}
		if !strings.Contains(lower, "unsafe-inline") {
			q += 0.25
		}
		if strings.Contains(lower, "nonce-") || strings.Contains(lower, "sha256-") {
			q += 0.2
		}
		if q > 1 {
			q = 1
		}
		return q
	case analyzer.HeaderHSTS:
		q := 0.0
		if strings.Contains(lower, "max-age") {
			q += 0.3
		}
		if status.Valid { // max-age at or above one year
			q += 0.3
		}
		if strings.Contains(lower, "includesubdomains") {
			q += 0.25
		}
		if strings.Contains(lower, "preload") {
			q += 0.15
		}
		if q > 1 {
			q = 1
		}
		return q
	default:
		if status.Valid {
			return 1.0
		}
		return 0.5
	}
}

// missingPenaltyModifier scales the penalty for an absent header by site
// context. The multipliers are hand-tuned calibration constants preserved
// for score compatibility; they are not derived from a model.
func missingPenaltyModifier(header string, ctx *analyzer.SiteContext) float64 {
	if ctx == nil {
		return 1.0
	}

	if ctx.Type == "api-service" {
		switch header {
		case analyzer.HeaderCSP:
			return 0.0 // machine consumers render nothing, CSP is moot
		case analyzer.HeaderXFrameOptions:
			return 0.3
		case analyzer.HeaderXSSProtection:
			return 0.2
		case analyzer.HeaderPermissionsPolicy:
			return 0.5
		}
	}

	simpleContent := (ctx.Type == "blog" || ctx.Type == "portfolio") && !ctx.HasUserGeneratedContent
	if simpleContent {
		switch header {
		case analyzer.HeaderCSP:
			return 0.4
		case analyzer.HeaderXFrameOptions:
			return 0.7
		case analyzer.HeaderPermissionsPolicy:
			return 0.5
		case analyzer.HeaderXSSProtection:
			return 0.3
		}
	}

	if !ctx.HasLoginSystem && !ctx.HandlesFinancialData {
		switch header {
		case analyzer.HeaderHSTS:
			return 0.7
		case analyzer.HeaderReferrerPolicy:
			return 0.8
		}
	}

	return 1.0
}

// vulnerabilityComponent sums severity-weighted counts, capping the count
// per severity and clamping the combined magnitude to maxVulnPenalty.
func vulnerabilityComponent(findings []analyzer.Finding) VulnerabilityScore {
	counts := analyzer.CountBySeverity(findings)
	vs := VulnerabilityScore{
		Critical: counts[analyzer.SeverityCritical],
		High:     counts[analyzer.SeverityHigh],
		Medium:   counts[analyzer.SeverityMedium],
		Low:      counts[analyzer.SeverityLow],
	}

	penalty := 0.0
	for severity, weight := range severityWeights {
		count := counts[severity]
		if limit := severityCaps[severity]; count > limit {
			count = limit
		}
		penalty += weight * float64(count)
	}
	if penalty > maxVulnPenalty {
		penalty = maxVulnPenalty
	}

	vs.Score = -penalty
	return vs
}

// bonusComponent rewards strong transport policy, clean scans, and low-risk
// contexts.
func bonusComponent(report *analyzer.HeaderReport, findings []analyzer.Finding, ctx *analyzer.SiteContext) int {
	bonus := 0

	hsts := report.Status(analyzer.HeaderHSTS)
	if hsts.Present && strings.Contains(strings.ToLower(hsts.Content), "max-age") {
		bonus += 5
	}

	switch {
	case len(findings) == 0:
		bonus += 3
	case len(findings) <= 2:
		bonus++
	}

	if ctx != nil {
		if !ctx.HasLoginSystem && !ctx.HandlesFinancialData && !ctx.AllowsFileUploads {
			bonus += 2
		}
		if (ctx.Type == "blog" || ctx.Type == "portfolio") && !ctx.HasUserGeneratedContent {
			bonus += 3
		}
	}

	return bonus
}

func clampScore(total float64) int {
	switch {
	case total < 0:
		return 0
	case total > 100:
		return 100
	}
	return int(total + 0.5)
}

// gradeFor maps a clamped score to its letter grade via a fixed monotone
// step function in 5-point increments.
func gradeFor(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 85:
		return "A-"
	case score >= 80:
		return "B+"
	case score >= 75:
		return "B"
	case score >= 70:
		return "B-"
	case score >= 65:
		return "C+"
	case score >= 60:
		return "C"
	case score >= 55:
		return "C-"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// riskLevelFor evaluates the risk branches in priority order; the first
// matching branch wins.
func riskLevelFor(score, critical, high int) string {
	switch {
	case score >= 85 && critical == 0 && high <= 1:
		return "Low"
	case score >= 70 && critical == 0:
		return "Medium"
	case score >= 50 || high > 2:
		return "High"
	default:
		return "Critical"
	}
}

func sortedSiteTypes(baselines map[string]Baseline) []string {
	types := make([]string, 0, len(baselines))
	for k := range baselines {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
